package models

import (
	"encoding/json"
	"time"
)

// User is an account. Password holds a bcrypt hash for accounts created by
// this server or a plaintext value for rows imported from the legacy store;
// it is never serialized.
type User struct {
	ID        int64
	UserName  string
	Password  string
	CreatedAt time.Time
}

type userJSON struct {
	ID        int64  `json:"id"`
	UserName  string `json:"username"`
	CreatedAt int64  `json:"created_at"`
}

// MarshalJSON renders CreatedAt as epoch milliseconds and drops Password.
func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userJSON{
		ID:        u.ID,
		UserName:  u.UserName,
		CreatedAt: u.CreatedAt.UnixMilli(),
	})
}
