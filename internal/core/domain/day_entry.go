package domain

import "time"

// DayEntry is the planner payload a user saved for one date key.
// There is at most one entry per (UserID, DateKey); later saves overwrite Payload.
type DayEntry struct {
	ID        int64     `json:"-"`
	UserID    int64     `json:"-"`
	DateKey   string    `json:"date_key"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
