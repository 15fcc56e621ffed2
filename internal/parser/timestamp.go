package parser

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the access-log date layout without its zone offset
const TimeLayout = "02/Jan/2006:15:04:05"

// ParseTimestamp parses a bracketed date token such as
// "10/Oct/2023:13:55:36 +0000". Everything from the first space on is
// discarded, so the zone offset is ignored and the result is in UTC.
func ParseTimestamp(token string) (time.Time, error) {
	date := token
	if i := strings.IndexByte(date, ' '); i >= 0 {
		date = date[:i]
	}

	ts, err := time.Parse(TimeLayout, date)
	if err != nil {
		return time.Time{}, &SkipError{
			Reason: ReasonBadTimestamp,
			Input:  date,
			Err:    fmt.Errorf("%w: %q", ErrBadTimestamp, date),
		}
	}
	return ts, nil
}
