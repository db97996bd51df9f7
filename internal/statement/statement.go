// Package statement parses Shift-JIS credit card statement CSV exports into
// normalized transaction records. Exports carry a leading date column, a
// store name, a charged price, and a payment count, with an optional
// trailing note. Card number marker rows interleaved with the data assign
// the card for every following row.
package statement

import (
	"errors"
	"time"
)

// ErrDecode reports statement bytes that are not valid Shift-JIS.
var ErrDecode = errors.New("input is not valid Shift-JIS")

// Record is one parsed statement row ready for persistence.
type Record struct {
	UsedAt     time.Time
	Store      string
	Price      int
	Payment    int
	Note       string
	Service    string
	File       string
	CardNumber string
}

// HasNote reports whether the row carried a trailing note column.
func (r Record) HasNote() bool {
	return r.Note != ""
}
