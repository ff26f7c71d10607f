package model

import (
	"encoding/json"
	"time"
)

// WardrobeItem links a stored clothing image to its owner and classification.
// Color, Style and Occasion are serialized JSON arrays; they are always valid
// JSON on write. Occasion is nullable because rows created before the column
// was added carry NULL.
type WardrobeItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Filename  string    `gorm:"size:256;not null" json:"filename"`
	FilePath  string    `gorm:"size:512;not null" json:"file_path"`
	Category  string    `gorm:"size:64;not null;index" json:"category"`
	Color     string    `gorm:"size:512" json:"color"`
	Style     string    `gorm:"size:512" json:"style"`
	Occasion  *string   `gorm:"size:512" json:"occasion"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (w *WardrobeItem) TableName() string {
	return "wardrobe"
}

// Colors returns the parsed color list; empty on NULL or parse error.
func (w *WardrobeItem) Colors() []string {
	return parseTagList(w.Color)
}

// Styles returns the parsed style tag list.
func (w *WardrobeItem) Styles() []string {
	return parseTagList(w.Style)
}

// Occasions returns the parsed occasion tag list, tolerating legacy NULL rows.
func (w *WardrobeItem) Occasions() []string {
	if w.Occasion == nil {
		return nil
	}
	return parseTagList(*w.Occasion)
}

// SetColors stores the color list as JSON.
func (w *WardrobeItem) SetColors(colors []string) {
	w.Color = marshalTagList(colors)
}

// SetStyles stores the style tag list as JSON.
func (w *WardrobeItem) SetStyles(styles []string) {
	w.Style = marshalTagList(styles)
}

// SetOccasions stores the occasion tag list as JSON.
func (w *WardrobeItem) SetOccasions(occasions []string) {
	s := marshalTagList(occasions)
	w.Occasion = &s
}

func parseTagList(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	_ = json.Unmarshal([]byte(raw), &tags)
	return tags
}

func marshalTagList(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(tags)
	return string(b)
}
