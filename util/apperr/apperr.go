package apperr

import (
	"errors"
	"fmt"
)

// ErrCode is the error kind surfaced to callers. Controllers map it to a status.
type ErrCode string

const (
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrIllegalTransition ErrCode = "ILLEGAL_TRANSITION"
	ErrNotHolder         ErrCode = "NOT_HOLDER"
	ErrNoOpenRental      ErrCode = "NO_OPEN_RENTAL"
	ErrUnauthenticated   ErrCode = "UNAUTHENTICATED"
	ErrBadInput          ErrCode = "BAD_INPUT"
	ErrConflict          ErrCode = "CONFLICT"
)

type codedError struct {
	code   ErrCode
	detail string
}

func (e codedError) Error() string {
	if e.detail == "" {
		return string(e.code)
	}
	return string(e.code) + ": " + e.detail
}

func (e codedError) Code() ErrCode  { return e.code }
func (e codedError) Detail() string { return e.detail }

// New builds a coded error with a human-readable detail.
func New(c ErrCode, detail string) error { return codedError{code: c, detail: detail} }

// Newf is New with a formatted detail.
func Newf(c ErrCode, format string, args ...any) error {
	return codedError{code: c, detail: fmt.Sprintf(format, args...)}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Detail returns the human-readable part of a coded error, or "" for other errors.
func Detail(err error) string {
	var ce interface{ Detail() string }
	if errors.As(err, &ce) {
		return ce.Detail()
	}
	return ""
}

// Is reports whether err carries code c.
func Is(err error, c ErrCode) bool { return Code(err) == c }
