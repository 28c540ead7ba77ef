package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/nodecalc/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one record per event.
// Display changes are logged at Info, everything else at Debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommand: func(ctx context.Context, e *domain.CommandEvent) {
			if e.Err != nil {
				logger.DebugContext(ctx, "command", "command", e.Command, "subject", e.Subject, "revision", e.Revision, "error", e.Err)
				return
			}
			logger.DebugContext(ctx, "command", "command", e.Command, "subject", e.Subject, "revision", e.Revision)
		},
		OnPropagate: func(ctx context.Context, e *domain.PropagationEvent) {
			logger.DebugContext(ctx, "propagate",
				"revision", e.Revision,
				"visited", e.Visited,
				"suspended", e.Suspended,
				"duration", e.Duration)
		},
		OnDisplay: func(ctx context.Context, e *domain.DisplayEvent) {
			if !e.Changed {
				return
			}
			logger.InfoContext(ctx, "display", "revision", e.Revision, "state", e.Display.State, "text", e.Display.Text)
		},
	}
}
