package model

import "time"

type Reservation struct {
	ID       string    `json:"id"`
	BookID   string    `json:"book_id"`
	UserID   string    `json:"user_id"`
	QueuedAt time.Time `json:"queued_at"`
	Seq      int64     `json:"-"`
}
