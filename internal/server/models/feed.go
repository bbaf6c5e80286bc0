// Package models defines server-side data models persisted in the database.
package models

import (
	"encoding/json"
	"time"
)

// Feed is an immutable post: a caption and ImageCount images at positions
// [0, ImageCount).
type Feed struct {
	ID         string
	UserID     int64
	Caption    string
	ImageCount int
	CreatedAt  time.Time
}

type feedJSON struct {
	ID         string `json:"id"`
	UserID     int64  `json:"user_id"`
	Caption    string `json:"caption"`
	ImageCount int    `json:"image_count"`
	CreatedAt  int64  `json:"created_at"`
}

// MarshalJSON renders CreatedAt as epoch milliseconds.
func (f Feed) MarshalJSON() ([]byte, error) {
	return json.Marshal(feedJSON{
		ID:         f.ID,
		UserID:     f.UserID,
		Caption:    f.Caption,
		ImageCount: f.ImageCount,
		CreatedAt:  f.CreatedAt.UnixMilli(),
	})
}

// FeedWithUser is the listing projection of a feed joined with its author.
type FeedWithUser struct {
	ID         string
	UserName   string
	Caption    string
	ImageCount int
	CreatedAt  time.Time
}

type feedWithUserJSON struct {
	ID         string `json:"id"`
	UserName   string `json:"username"`
	Caption    string `json:"caption"`
	ImageCount int    `json:"image_count"`
	CreatedAt  int64  `json:"created_at"`
}

// MarshalJSON renders CreatedAt as epoch milliseconds.
func (f FeedWithUser) MarshalJSON() ([]byte, error) {
	return json.Marshal(feedWithUserJSON{
		ID:         f.ID,
		UserName:   f.UserName,
		Caption:    f.Caption,
		ImageCount: f.ImageCount,
		CreatedAt:  f.CreatedAt.UnixMilli(),
	})
}
