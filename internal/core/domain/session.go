package domain

import "time"

// ClearPolicy decides what happens to the cart after a successful save.
type ClearPolicy int

const (
	// KeepCart leaves the cart untouched after a save.
	KeepCart ClearPolicy = iota
	// ClearCartOnSave empties the cart after a save.
	ClearCartOnSave
)

// Session is the explicit working state of one user session. It is owned by
// the request handler and passed to every service call.
type Session struct {
	ID        string
	UserID    string
	Cart      *Cart
	Result    *SimilarityResult
	CreatedAt time.Time
	TouchedAt time.Time
}

// NewSession returns a session with an empty cart.
func NewSession(id, userID string, now time.Time) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		Cart:      NewCart(),
		CreatedAt: now,
		TouchedAt: now,
	}
}
