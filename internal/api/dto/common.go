package dto

// SessionStatus is the body of the session probe.
type SessionStatus struct {
	Authenticated bool `json:"authenticated"`
}
