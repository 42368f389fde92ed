package model

import "time"

type User struct {
	TelegramID  int64     `json:"telegram_id"`
	Username    string    `json:"username,omitempty"`
	FirstSeenAt time.Time `json:"first_seen_at,omitempty"`
}
