package models

import (
	"encoding/json"
	"time"
)

type Comment struct {
	ID        int64
	FeedID    string
	UserName  string
	Content   string
	CreatedAt time.Time
}

type commentJSON struct {
	ID        int64  `json:"id"`
	FeedID    string `json:"feed_id"`
	UserName  string `json:"username"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// MarshalJSON renders CreatedAt as epoch milliseconds, like feeds.
func (c Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(commentJSON{
		ID:        c.ID,
		FeedID:    c.FeedID,
		UserName:  c.UserName,
		Content:   c.Content,
		CreatedAt: c.CreatedAt.UnixMilli(),
	})
}
