package runtime

import (
	"context"
	"time"

	"github.com/aretw0/nodecalc/pkg/domain"
)

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, Revision: e.revision}
}

func (e *Engine) emitCommand(ctx context.Context, cmd, subject string, err error) {
	if e.hooks.OnCommand == nil {
		return
	}
	e.hooks.OnCommand(ctx, &domain.CommandEvent{
		EventBase: e.base(domain.EventCommand),
		Command:   cmd,
		Subject:   subject,
		Err:       err,
	})
}

func (e *Engine) emitPropagate(ctx context.Context, visited int, suspended bool, d time.Duration) {
	if e.hooks.OnPropagate == nil {
		return
	}
	e.hooks.OnPropagate(ctx, &domain.PropagationEvent{
		EventBase: e.base(domain.EventPropagate),
		Visited:   visited,
		Suspended: suspended,
		Duration:  d,
	})
}

func (e *Engine) emitVerdict(ctx context.Context, changed bool) {
	if e.hooks.OnVerdict == nil {
		return
	}
	e.hooks.OnVerdict(ctx, &domain.VerdictEvent{
		EventBase: e.base(domain.EventVerdict),
		Verdict:   e.verdict,
		Changed:   changed,
	})
}

func (e *Engine) emitDisplay(ctx context.Context, changed bool) {
	if e.hooks.OnDisplay == nil {
		return
	}
	e.hooks.OnDisplay(ctx, &domain.DisplayEvent{
		EventBase: e.base(domain.EventDisplay),
		Display:   e.display,
		Changed:   changed,
	})
}
