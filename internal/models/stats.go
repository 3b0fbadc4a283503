package models

// UserStats содержит агрегаты по пользователям
type UserStats struct {
	Total         int `json:"total"`
	Active        int `json:"active"`
	Banned        int `json:"banned"`
	Admins        int `json:"admins"`
	RecentSignups int `json:"recent_signups"`
}

// RequestStats содержит агрегаты по предложениям обмена
type RequestStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Recent   int `json:"recent"`
}

// PlatformStats — статистика платформы для администратора
type PlatformStats struct {
	Users       UserStats    `json:"users"`
	Requests    RequestStats `json:"requests"`
	SuccessRate float64      `json:"success_rate"`
}
