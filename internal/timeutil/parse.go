package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

var ErrFormat = errors.New("invalid format")

// FormatError reports an input that matched neither the configured layout
// nor the ISO fallback.
type FormatError struct {
	Kind  string
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Kind, e.Input)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// Layouts holds the display layouts used for parsing and formatting.
type Layouts struct {
	Date     string
	Time     string
	DateTime string
}

var DefaultLayouts = Layouts{
	Date:     "02/01/2006",
	Time:     "15:04",
	DateTime: "02/01/2006 15:04",
}

var (
	isoTimeLayouts     = []string{"15:04:05", "15:04"}
	isoDateTimeLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}
)

func (l Layouts) ParseDate(s string) (Date, error) {
	t, ok := parseFirst(s, append([]string{l.Date}, isoDateLayout))
	if !ok {
		return Date{}, &FormatError{Kind: "date", Input: s}
	}
	return DateOf(t), nil
}

func (l Layouts) ParseTime(s string) (TimeOfDay, error) {
	t, ok := parseFirst(s, append([]string{l.Time}, isoTimeLayouts...))
	if !ok {
		return 0, &FormatError{Kind: "time", Input: s}
	}
	return TimeOfDayOf(t), nil
}

func (l Layouts) ParseDateTime(s string) (time.Time, error) {
	t, ok := parseFirst(s, append([]string{l.DateTime}, isoDateTimeLayouts...))
	if !ok {
		return time.Time{}, &FormatError{Kind: "date-time", Input: s}
	}
	return t, nil
}

func (l Layouts) FormatDate(d Date) string {
	return d.Time().Format(l.Date)
}

func (l Layouts) FormatTime(t TimeOfDay) string {
	return time.Date(2000, 1, 1, t.Hour(), t.Minute(), 0, 0, time.UTC).Format(l.Time)
}

func (l Layouts) FormatDateTime(t time.Time) string {
	return t.Format(l.DateTime)
}

func ParseDate(s string) (Date, error)          { return DefaultLayouts.ParseDate(s) }
func ParseTime(s string) (TimeOfDay, error)     { return DefaultLayouts.ParseTime(s) }
func ParseDateTime(s string) (time.Time, error) { return DefaultLayouts.ParseDateTime(s) }

func parseFirst(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if layout == "" {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
