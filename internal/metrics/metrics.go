package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillswap_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skillswap_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Бизнес-метрики
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skillswap_users_registered_total",
			Help: "Total users registered",
		},
	)

	SwapRequestsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skillswap_swap_requests_created_total",
			Help: "Total swap requests created",
		},
	)

	SwapRequestTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillswap_swap_request_transitions_total",
			Help: "Swap request status transitions by target status",
		},
		[]string{"status"},
	)

	ChatRoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skillswap_chat_rooms_created_total",
			Help: "Total chat rooms created",
		},
	)

	MessagesPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skillswap_messages_posted_total",
			Help: "Total chat messages posted",
		},
	)

	SearchQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skillswap_search_queries_total",
			Help: "Total directory search queries",
		},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillswap_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)
)
