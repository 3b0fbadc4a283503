package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New создаёт логгер: читаемый вывод в разработке и JSON в production
func New(development bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if development {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// Nop возвращает логгер, который ничего не пишет. Используется в тестах.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
