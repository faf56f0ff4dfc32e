package config

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Logger holds CLI flags for logging configuration
type Logger struct {
	level     string
	format    string
	output    string
	sentryDSN string
	sentryEnv string
}

// Flags returns CLI flags for logging configuration
func (l *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Category:    "Logging",
			Sources:     cli.EnvVars("OBLIGO_LOG_LEVEL"),
			Destination: &l.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console or json)",
			Value:       "console",
			Category:    "Logging",
			Sources:     cli.EnvVars("OBLIGO_LOG_FORMAT"),
			Destination: &l.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output destination (-, stdout, stderr, or file path)",
			Value:       "-",
			Category:    "Logging",
			Sources:     cli.EnvVars("OBLIGO_LOG_OUTPUT"),
			Destination: &l.output,
		},
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting",
			Category:    "Logging",
			Sources:     cli.EnvVars("OBLIGO_SENTRY_DSN"),
			Destination: &l.sentryDSN,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Category:    "Logging",
			Sources:     cli.EnvVars("OBLIGO_SENTRY_ENV"),
			Destination: &l.sentryEnv,
		},
	}
}

// Configure builds the process-wide logger and initializes Sentry when a
// DSN is set. The returned closer flushes pending events and must be called
// on shutdown.
func (l *Logger) Configure() (func(), error) {
	var level slog.Level
	switch l.level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, goerr.New("invalid log level", goerr.V("level", l.level))
	}

	var format logging.Format
	switch l.format {
	case "console":
		format = logging.FormatConsole
	case "json":
		format = logging.FormatJSON
	default:
		return nil, goerr.New("invalid log format", goerr.V("format", l.format))
	}

	var w io.Writer
	var file *os.File
	switch l.output {
	case "-", "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(l.output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", l.output))
		}
		w = f
		file = f
	}

	if l.sentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         l.sentryDSN,
			Environment: l.sentryEnv,
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sentry")
		}
	}

	logging.SetDefault(logging.New(w, level, format))

	closer := func() {
		if l.sentryDSN != "" {
			sentry.Flush(2 * time.Second)
		}
		if file != nil {
			_ = file.Close()
		}
	}
	return closer, nil
}

// LogValue keeps the DSN out of startup logs
func (l Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", l.level),
		slog.String("format", l.format),
		slog.String("output", l.output),
		slog.Bool("sentry", l.sentryDSN != ""),
	)
}
