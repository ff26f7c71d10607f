package model

import "time"

// UploadEvent records a notable moment in one file's upload pipeline:
// a stage failure or a classifier fallback. Events are published to the
// broker and persisted asynchronously.
type UploadEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Filename  string    `gorm:"size:256;not null" json:"filename"`
	Stage     string    `gorm:"size:32;not null;index" json:"stage"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
