package models

import "time"

// Session binds an opaque token to a user. A user has at most one session.
type Session struct {
	UserID    int64
	Token     string
	CreatedAt time.Time
}
