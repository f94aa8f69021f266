package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition EventType = "transition"
	EventSubmit     EventType = "submit"
	EventDenied     EventType = "denied"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	UserID    UserID    `json:"user_id"`
}

// Result labels used by TransitionEvent.
const (
	ResultAdvance = "advance"
	ResultReject  = "reject"
	ResultIgnore  = "ignore"
	ResultCleared = "cleared"
	ResultSubmit  = "submit"
)

// TransitionEvent describes a single handled action.
type TransitionEvent struct {
	EventBase
	From   StepID     `json:"from"`
	To     StepID     `json:"to"`
	Action ActionKind `json:"action"`
	Result string     `json:"result"`
}

// SubmitEvent describes a submission attempt.
type SubmitEvent struct {
	EventBase
	Username string        `json:"username"`
	Duration time.Duration `json:"duration"`
	// Outcome is "ok", "api_error" or "transport_error".
	Outcome string `json:"outcome"`
	Code    string `json:"code,omitempty"`
}

// LifecycleHooks defines callbacks for observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnSubmit     func(context.Context, *SubmitEvent)
	OnDenied     func(context.Context, *EventBase)
}
