package telemetry

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/kayz/scout/internal/config"
	"github.com/kayz/scout/internal/logger"
)

// Sink emits structured pipeline events. A failed initialization disables
// the sink for the remainder of the process; Emit never returns an error
// and never panics, so event emission can never abort retrieval or
// synthesis.
type Sink struct {
	enabled bool
	log     *slog.Logger
	closer  io.Closer
}

// Init builds a sink from config. Any failure is reported once through the
// logger and produces a disabled sink.
func Init(cfg config.TelemetryConfig) *Sink {
	if !cfg.Enabled {
		return &Sink{}
	}

	var w io.Writer = os.Stderr
	var closer io.Closer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			logger.Warn("telemetry disabled: %v", err)
			return &Sink{}
		}
		w = f
		closer = f
	}

	l := slog.New(slog.NewJSONHandler(w, nil)).With(
		slog.String("project", cfg.Project),
		slog.String("run_id", uuid.NewString()),
	)
	return &Sink{enabled: true, log: l, closer: closer}
}

// Disabled returns a sink that drops everything.
func Disabled() *Sink {
	return &Sink{}
}

// Emit records one event with key/value fields.
func (s *Sink) Emit(event string, fields ...any) {
	if s == nil || !s.enabled {
		return
	}
	defer func() {
		// A broken field list must not take the pipeline down with it.
		_ = recover()
	}()
	s.log.Info(event, fields...)
}

// Close releases the event file, if any.
func (s *Sink) Close() {
	if s == nil || s.closer == nil {
		return
	}
	_ = s.closer.Close()
}
