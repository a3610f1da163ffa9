package models

import "time"

// RateLimit is one fixed-window counter row. Key combines the action name
// with the caller id; correctness rests on the store's atomic upsert
// increment.
type RateLimit struct {
	Key         string    `db:"key" json:"key"`
	WindowStart time.Time `db:"window_start" json:"window_start"`
	Count       int       `db:"count" json:"count"`
}
