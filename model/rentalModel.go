package model

import "time"

type Rental struct {
	ID         string     `json:"id"`
	BookID     string     `json:"book_id"`
	UserID     string     `json:"user_id"`
	StartedAt  time.Time  `json:"started_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Cost       int        `json:"cost"`
	LateDays   int        `json:"late_days"`
	Penalty    int        `json:"penalty"`
}

func (r Rental) Open() bool { return r.ReturnedAt == nil }

// ReturnedRental pairs a closed rental with its book.
type ReturnedRental struct {
	Rental Rental `json:"rental"`
	Book   Book   `json:"book"`
}

// OverdueRental is an open rental past its due date.
type OverdueRental struct {
	Rental   Rental `json:"rental"`
	LateDays int    `json:"late_days"`
	Penalty  int    `json:"penalty"`
}
