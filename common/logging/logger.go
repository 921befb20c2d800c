package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Level zerolog.Level

const (
	DebugLevel = Level(zerolog.DebugLevel)
	InfoLevel  = Level(zerolog.InfoLevel)
)

func (l Level) toZerolog() zerolog.Level {
	return zerolog.Level(l)
}

func (l Level) String() string {
	return l.toZerolog().String()
}

// Setup replaces the global logger. Debug and trace levels get a human
// readable console writer, everything else is JSON on stdout.
func Setup(level Level) {
	log.Logger = New(level, os.Stdout)
}

func New(level Level, out io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(level.toZerolog())
	var writer io.Writer
	switch level.toZerolog() {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		writer = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = out
			w.TimeFormat = time.RFC3339
		})
	default:
		writer = out
	}
	return zerolog.
		New(writer).
		With().
		Timestamp().
		Caller().
		Str("service", "rainbow-table").
		Logger()
}

func ParseLevel(lvl string) Level {
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(lvl)))
	if err != nil || parsedLevel == zerolog.NoLevel {
		return InfoLevel
	}
	return Level(parsedLevel)
}
