package session

import "time"

// Session is the per-request identity capability. Handlers receive it
// explicitly; workflow code never reads identity from ambient state.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	ExpiresAt time.Time `json:"expires_at"` // UTC
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
