package model

import "time"

// ReadingRecord is written once when a rental closes with a rating.
type ReadingRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	BookID      string    `json:"book_id"`
	Rating      int       `json:"rating"`
	CompletedAt time.Time `json:"completed_at"`
}

type ReadEntry struct {
	BookID    string `json:"book_id"`
	ISBN      string `json:"isbn,omitempty"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Rating    int    `json:"rating"`
}
