package models

import "time"

// SessionEventType names a lifecycle transition.
type SessionEventType string

// Lifecycle event types.
const (
	EventSessionReserved  SessionEventType = "session.reserved"
	EventSessionCharging  SessionEventType = "session.charging"
	EventSessionCompleted SessionEventType = "session.completed"
)

// Completion reasons carried by EventSessionCompleted.
const (
	CompletionStopped = "stopped"
	CompletionAuto    = "auto"
)

// SessionEvent is emitted after every successful transition.
type SessionEvent struct {
	Type    SessionEventType `json:"type"`
	Reason  string           `json:"reason,omitempty"`
	Session ChargingSession  `json:"session"`
	At      time.Time        `json:"at"`
}
