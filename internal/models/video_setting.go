package models

import "time"

// VideoSetting is the platform-wide upload policy. At most one row
// exists.
type VideoSetting struct {
	ID             string    `db:"id" json:"id"`
	PricePerVideo  float64   `db:"price_per_video" json:"price_per_video"`
	MaxVideoLength int       `db:"max_video_length" json:"max_video_length"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
