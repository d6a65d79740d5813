// Package audit captures key account actions as an append-only trail. Events
// are write-only from the flows' perspective, like the extension token grant
// list they sit alongside.
package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores can fan out.
type Event struct {
	Timestamp time.Time
	UserID    string
	Action    string
	// Email is recorded when available for traceability.
	Email string
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string
	// Reason carries failure detail for rejected credentials.
	Reason string
}

// AuditEvent enumerates the recorded actions.
type AuditEvent string

const (
	EventUserCreated      AuditEvent = "user_created"
	EventSignIn           AuditEvent = "sign_in"
	EventAuthFailed       AuditEvent = "auth_failed"
	EventPairingInitiated AuditEvent = "pairing_initiated"
	EventPairingCompleted AuditEvent = "pairing_completed"
	EventProfileUpdated   AuditEvent = "profile_updated"
	EventUserDeleted      AuditEvent = "user_deleted"
)
