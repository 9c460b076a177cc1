package events

import (
	"time"

	"github.com/spec-kit/portal-session-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionCreated    EventType = "session_created"
	EventSessionDestroyed  EventType = "session_destroyed"
	EventSessionExpired    EventType = "session_expired"
	EventOTPIssued         EventType = "otp_issued"
	EventSuspensionChanged EventType = "suspension_changed"
)

// Event represents a lifecycle event emitted by the session core.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Role      domain.Role `json:"role,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SessionCreatedPayload payload.
type SessionCreatedPayload struct {
	SessionKey string `json:"session_key"`
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
}

// SessionDestroyedPayload payload.
type SessionDestroyedPayload struct {
	SessionKey string `json:"session_key"`
}

// SessionExpiredPayload payload. Reason is "countdown" or "hard_deadline".
type SessionExpiredPayload struct {
	SessionKey string `json:"session_key"`
	Reason     string `json:"reason"`
}

// OTPIssuedPayload payload. The code is delivered out of band; the
// notification stub is the only consumer that sees it.
type OTPIssuedPayload struct {
	ChallengeID string `json:"challenge_id"`
	Email       string `json:"email"`
	Code        string `json:"code"`
	Resend      bool   `json:"resend"`
}

// SuspensionChangedPayload payload.
type SuspensionChangedPayload struct {
	Suspended bool `json:"suspended"`
}
