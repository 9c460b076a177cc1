package dto

// SessionStatusResponse reports the inactivity phase of the session.
// RemainingSeconds is meaningful only in the warning phase.
type SessionStatusResponse struct {
	Phase            string `json:"phase"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

// SuspensionStatusResponse reports a role's suspension flag.
type SuspensionStatusResponse struct {
	Role      string `json:"role"`
	Suspended bool   `json:"suspended"`
}

// SuspensionUpdateRequest toggles a role's suspension flag.
type SuspensionUpdateRequest struct {
	Suspended bool `json:"suspended"`
}
