package session

import "time"

// Claim is the identity fact carried inside a sealed session. It points at
// an account by username and never snapshots account data.
type Claim struct {
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Equal reports whether both claims name the same account with the same
// validity window.
func (c Claim) Equal(o Claim) bool {
	return c.Username == o.Username &&
		c.IssuedAt.Equal(o.IssuedAt) &&
		c.ExpiresAt.Equal(o.ExpiresAt)
}
