package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventCommand   EventType = "command"
	EventPropagate EventType = "propagate"
	EventVerdict   EventType = "verdict"
	EventDisplay   EventType = "display"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Revision  uint64    `json:"revision"`
}

// CommandEvent reports an edit command, accepted or rejected.
type CommandEvent struct {
	EventBase
	Command string `json:"command"`
	Subject string `json:"subject,omitempty"`
	Err     error  `json:"-"`
}

// PropagationEvent reports a completed pass.
type PropagationEvent struct {
	EventBase
	Visited   int           `json:"visited"`
	Suspended bool          `json:"suspended"` // loops forced every value absent
	Duration  time.Duration `json:"duration"`
}

// VerdictEvent carries the verdict of a pass.
type VerdictEvent struct {
	EventBase
	Verdict Verdict `json:"verdict"`
	Changed bool    `json:"changed"`
}

// DisplayEvent carries the sink projection of a pass.
type DisplayEvent struct {
	EventBase
	Display Display `json:"display"`
	Changed bool    `json:"changed"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnCommand   func(context.Context, *CommandEvent)
	OnPropagate func(context.Context, *PropagationEvent)
	OnVerdict   func(context.Context, *VerdictEvent)
	OnDisplay   func(context.Context, *DisplayEvent)
}

// ChainHooks returns hooks that call each set in order.
func ChainHooks(sets ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCommand: func(ctx context.Context, e *CommandEvent) {
			for _, h := range sets {
				if h.OnCommand != nil {
					h.OnCommand(ctx, e)
				}
			}
		},
		OnPropagate: func(ctx context.Context, e *PropagationEvent) {
			for _, h := range sets {
				if h.OnPropagate != nil {
					h.OnPropagate(ctx, e)
				}
			}
		},
		OnVerdict: func(ctx context.Context, e *VerdictEvent) {
			for _, h := range sets {
				if h.OnVerdict != nil {
					h.OnVerdict(ctx, e)
				}
			}
		},
		OnDisplay: func(ctx context.Context, e *DisplayEvent) {
			for _, h := range sets {
				if h.OnDisplay != nil {
					h.OnDisplay(ctx, e)
				}
			}
		},
	}
}
