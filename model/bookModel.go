package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type StateKind string

const (
	StateAvailable StateKind = "available"
	StateRented    StateKind = "rented"
	StateReserved  StateKind = "reserved"
)

// BookState is closed: only Available, Rented and Reserved implement it.
type BookState interface {
	Kind() StateKind
	isBookState()
}

type Available struct{}

type Rented struct {
	Holder string
	DueAt  time.Time
}

// Reserved is a hold granted to the head of the queue.
type Reserved struct {
	Holder    string
	HoldUntil time.Time
}

func (Available) Kind() StateKind { return StateAvailable }
func (Rented) Kind() StateKind    { return StateRented }
func (Reserved) Kind() StateKind  { return StateReserved }

func (Available) isBookState() {}
func (Rented) isBookState()    {}
func (Reserved) isBookState()  {}

// HolderOf returns the user holding the book, or "" when it is available.
func HolderOf(s BookState) string {
	switch st := s.(type) {
	case Rented:
		return st.Holder
	case Reserved:
		return st.Holder
	default:
		return ""
	}
}

// StateRow is the flat form of a BookState as stored in a table row.
type StateRow struct {
	Kind      StateKind
	Holder    *string
	DueAt     *time.Time
	HoldUntil *time.Time
}

func FlattenState(s BookState) StateRow {
	switch st := s.(type) {
	case Rented:
		return StateRow{Kind: StateRented, Holder: &st.Holder, DueAt: &st.DueAt}
	case Reserved:
		return StateRow{Kind: StateReserved, Holder: &st.Holder, HoldUntil: &st.HoldUntil}
	default:
		return StateRow{Kind: StateAvailable}
	}
}

// State rebuilds the variant, rejecting rows that break the state invariants.
func (r StateRow) State() (BookState, error) {
	switch r.Kind {
	case StateAvailable:
		return Available{}, nil
	case StateRented:
		if r.Holder == nil || *r.Holder == "" || r.DueAt == nil {
			return nil, fmt.Errorf("rented state without holder or due date")
		}
		return Rented{Holder: *r.Holder, DueAt: r.DueAt.UTC()}, nil
	case StateReserved:
		if r.Holder == nil || *r.Holder == "" || r.HoldUntil == nil {
			return nil, fmt.Errorf("reserved state without holder or hold deadline")
		}
		return Reserved{Holder: *r.Holder, HoldUntil: r.HoldUntil.UTC()}, nil
	default:
		return nil, fmt.Errorf("unknown book state %q", r.Kind)
	}
}

type Book struct {
	ID          string
	Title       string
	Author      string
	Category    string
	ISBN        string
	Synopsis    string
	Cover       string
	Year        int
	Pages       int
	DepositorID string
	Status      BookState
	Seq         int64
	CreatedAt   time.Time
}

// NewBook is what a depositor supplies.
type NewBook struct {
	Title    string
	Author   string
	Category string
	ISBN     string
	Synopsis string
	Cover    string
	Year     int
	Pages    int
}

type bookJSON struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Category    string     `json:"category,omitempty"`
	ISBN        string     `json:"isbn,omitempty"`
	Synopsis    string     `json:"synopsis,omitempty"`
	Cover       string     `json:"cover,omitempty"`
	Year        int        `json:"year,omitempty"`
	Pages       int        `json:"pages,omitempty"`
	DepositorID string     `json:"depositor_id"`
	State       StateKind  `json:"state"`
	HolderID    string     `json:"holder_id,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	HoldUntil   *time.Time `json:"hold_until,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (b Book) MarshalJSON() ([]byte, error) {
	st := b.Status
	if st == nil {
		st = Available{}
	}
	row := FlattenState(st)
	return json.Marshal(bookJSON{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Category:    b.Category,
		ISBN:        b.ISBN,
		Synopsis:    b.Synopsis,
		Cover:       b.Cover,
		Year:        b.Year,
		Pages:       b.Pages,
		DepositorID: b.DepositorID,
		State:       row.Kind,
		HolderID:    HolderOf(st),
		DueAt:       row.DueAt,
		HoldUntil:   row.HoldUntil,
		CreatedAt:   b.CreatedAt,
	})
}

// Authors splits the author field; catalogs store several names separated by ';' or ','.
func (b Book) Authors() []string { return SplitValues(b.Author) }

func (b Book) Categories() []string { return SplitValues(b.Category) }

func SplitValues(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
