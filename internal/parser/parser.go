package parser

import (
	"errors"
	"fmt"
)

var (
	ErrNoMatch      = errors.New("line does not match combined log format")
	ErrBadTimestamp = errors.New("unparseable timestamp")
)

// SkipReason names why a line did not produce a record
type SkipReason string

const (
	ReasonUnmatched    SkipReason = "unmatched"
	ReasonBadTimestamp SkipReason = "bad_timestamp"
	ReasonUndecodable  SkipReason = "undecodable"
	ReasonFiltered     SkipReason = "filtered"
)

// SkipError reports a line that was dropped. Malformed input is data, so
// callers count and optionally surface these instead of failing.
type SkipError struct {
	Reason SkipReason
	Input  string // Offending line, or the date token for timestamp failures
	Err    error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *SkipError) Unwrap() error {
	return e.Err
}

// Reason extracts the skip reason from err, if it carries one
func Reason(err error) (SkipReason, bool) {
	var skipErr *SkipError
	if errors.As(err, &skipErr) {
		return skipErr.Reason, true
	}
	return "", false
}
