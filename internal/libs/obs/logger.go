// Package obs provides logging and metrics shared by every promptlib binary.
package obs

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger sets the global level and output. LOG_LEVEL values that do not
// parse fall back to info. ENV=dev, which is also the default when ENV is
// unset, switches to the human readable console writer.
func InitLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	log.Logger = zerolog.New(writerFor(os.Getenv("ENV"), os.Stderr)).
		With().
		Timestamp().
		Str("service", "promptlib").
		Logger()
}

// writerFor picks the log output for the given ENV value.
func writerFor(env string, out io.Writer) io.Writer {
	switch strings.ToLower(env) {
	case "", "dev", "development":
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: true}
	}
	return out
}

// Logger returns a new logger with the given component name
func Logger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
