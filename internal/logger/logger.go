package logger

import (
	"os"
	"time"

	"github.com/rollbar/rollbar-go"
	"github.com/rs/zerolog"
)

// New builds the service logger: human-readable console output in
// development, JSON lines in production.
func New(environment string) zerolog.Logger {
	level := zerolog.DebugLevel
	if environment == "production" {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if environment == "production" {
		log = zerolog.New(os.Stdout)
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return log.Level(level).With().Timestamp().Str("service", "trash-service").Logger()
}

// Reporter sends a failure and its cause to an error tracker.
type Reporter interface {
	Report(err error, msg string, extras map[string]interface{})
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(err error, msg string, extras map[string]interface{})

func (f ReporterFunc) Report(err error, msg string, extras map[string]interface{}) {
	f(err, msg, extras)
}

type nopReporter struct{}

func (nopReporter) Report(error, string, map[string]interface{}) {}

// NewReporter configures Rollbar and returns a reporter backed by it. An
// empty token yields a reporter that drops everything.
func NewReporter(token, environment, host string) Reporter {
	if token == "" {
		return nopReporter{}
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(environment)
	rollbar.SetServerHost(host)
	return ReporterFunc(reportToRollbar)
}

// Flush waits for queued Rollbar items to be sent.
func Flush() {
	rollbar.Wait()
}

func reportToRollbar(err error, msg string, extras map[string]interface{}) {
	rollbar.Error(msg, err, rollbarExtras(msg, extras))
}

// rollbarExtras copies extras and records msg under "message" so it
// survives alongside the error.
func rollbarExtras(msg string, extras map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(extras)+1)
	for k, v := range extras {
		out[k] = v
	}
	out["message"] = msg
	return out
}
