package leaderboardservice

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrInvalidAsOf is returned when an as-of value cannot be understood.
var ErrInvalidAsOf = errors.New("invalid as-of time")

var asOfLayouts = []string{time.RFC3339, "2006-01-02T15:04", time.DateTime, time.DateOnly}

// ParseAsOf reads an as-of cut-off. Empty input means "now" and yields nil.
// Absolute timestamps are tried first, then natural language such as
// "yesterday 18:00" or "last friday" relative to now in loc.
func ParseAsOf(input string, now time.Time, loc *time.Location) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range asOfLayouts {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			if layout == time.DateOnly {
				// A bare date covers the whole day.
				t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			}
			utc := t.UTC()
			return &utc, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(strings.ToLower(input), now.In(loc))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAsOf, input, err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAsOf, input)
	}
	utc := r.Time.UTC()
	return &utc, nil
}
