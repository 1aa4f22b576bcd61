package dispatch

import (
	"log/slog"
	"time"
)

// step starts a timer and returns a func that logs the elapsed time under label.
func step(log *slog.Logger, label string, attrs ...any) func(extra ...any) {
	start := time.Now()
	return func(extra ...any) {
		args := append([]any{"step", label, "took", time.Since(start)}, attrs...)
		log.Debug("trace", append(args, extra...)...)
	}
}
