package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the service logger.
type Options struct {
	// Env selects the output format. "development" and "dev" get a
	// colored console handler, anything else JSON.
	Env string

	// File enables a rotated log file next to stdout in production.
	File string

	// WebhookURL forwards records at Error and above to a Discord webhook.
	WebhookURL string

	// Level is a slog level name such as "debug" or "warn". Empty means info.
	Level string

	// Output replaces stdout (production) or stderr (development).
	Output io.Writer

	// Sender replaces the Discord session used by the webhook sink.
	Sender WebhookSender
}

// New builds the logger for a service. The returned func flushes the
// webhook queue and closes the log file.
func New(opts Options) (*slog.Logger, func() error, error) {
	var level slog.Level
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("failed to parse log level %q: %w", opts.Level, err)
		}
	}

	var (
		closers []func() error
		base    slog.Handler
	)

	if isDevelopment(opts.Env) {
		out := opts.Output
		if out == nil {
			out = os.Stderr
		}
		base = charmlog.NewWithOptions(out, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Level:           charmLevel(level),
		})
	} else {
		var out io.Writer = os.Stdout
		if opts.Output != nil {
			out = opts.Output
		}
		if opts.File != "" {
			file := &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    10,
				MaxBackups: 5,
				MaxAge:     30,
				Compress:   true,
			}
			closers = append(closers, file.Close)
			out = io.MultiWriter(out, file)
		}
		base = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	}

	handler := base
	if opts.WebhookURL != "" {
		id, token, err := ParseWebhookURL(opts.WebhookURL)
		if err != nil {
			return nil, nil, err
		}
		sink := newWebhookSink(opts.Sender, id, token, slog.New(base))
		closers = append(closers, sink.Close)
		handler = slogmulti.Fanout(base, newWebhookHandler(sink, slog.LevelError))
	}

	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	return slog.New(handler), closeAll, nil
}

func isDevelopment(env string) bool {
	env = strings.ToLower(env)
	return env == "development" || env == "dev"
}

func charmLevel(l slog.Level) charmlog.Level {
	switch {
	case l <= slog.LevelDebug:
		return charmlog.DebugLevel
	case l <= slog.LevelInfo:
		return charmlog.InfoLevel
	case l <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}
