package models

import "time"

// WatchedVideo records that a user finished a course video. One row per
// user and video.
type WatchedVideo struct {
	ID        string    `db:"id" json:"id"`
	VideoID   string    `db:"video_id" json:"video_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	WatchedAt time.Time `db:"watched_at" json:"watched_at"`
}

// VideoWatcher is a viewer of a given video, joined from users.
type VideoWatcher struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	WatchedAt time.Time `db:"watched_at" json:"watched_at"`
}

// WatchedVideoEntry is a video in a user's watch history, joined from
// videos.
type WatchedVideoEntry struct {
	VideoID     string    `db:"video_id" json:"video_id"`
	CourseName  string    `db:"course_name" json:"course_name"`
	Description string    `db:"description" json:"description"`
	WatchedAt   time.Time `db:"watched_at" json:"watched_at"`
}
