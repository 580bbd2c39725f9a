package observability

import (
	"log/slog"
	"time"

	"github.com/aretw0/formtree/pkg/form"
)

// LogHooks returns zone hooks that log the validation pipeline.
// Recomputes are logged at debug level, async runs at info.
func LogHooks(logger *slog.Logger) form.Hooks {
	return form.Hooks{
		OnRecompute: func(c form.Control, s form.Status) {
			logger.Debug("control recomputed", "path", c.Path(), "kind", Kind(c), "status", s)
		},
		OnAsyncStart: func(c form.Control) {
			logger.Info("async validation started", "path", c.Path())
		},
		OnAsyncApplied: func(c form.Control, errs form.ValidationErrors, elapsed time.Duration) {
			logger.Info("async validation applied",
				"path", c.Path(),
				"errors", len(errs),
				"elapsed", elapsed,
			)
		},
		OnAsyncAbandoned: func(c form.Control) {
			logger.Debug("async validation abandoned", "path", c.Path())
		},
	}
}
