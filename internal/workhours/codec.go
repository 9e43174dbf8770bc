package workhours

import (
	"fmt"
	"strings"
	"time"

	"github.com/hackgods/clinic-scheduling/internal/timeutil"
)

const (
	daySep   = ";"
	nameSep  = ":"
	rangeSep = ","
	spanSep  = "-"
)

// weekOrder is the order days are written in.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

var dayNames = map[time.Weekday]string{
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
	time.Sunday:    "sunday",
}

// Records written by the first version of the clinic software used French names.
var legacyDayNames = map[string]time.Weekday{
	"lundi":    time.Monday,
	"mardi":    time.Tuesday,
	"mercredi": time.Wednesday,
	"jeudi":    time.Thursday,
	"vendredi": time.Friday,
	"samedi":   time.Saturday,
	"dimanche": time.Sunday,
}

// Skipped describes a day segment Decode dropped.
type Skipped struct {
	Segment string
	Reason  string
}

func (s Skipped) String() string {
	return fmt.Sprintf("%q: %s", s.Segment, s.Reason)
}

// DayName returns the lowercase English name used by the encoding.
func DayName(d time.Weekday) string {
	return dayNames[d]
}

// ParseDay accepts English and legacy French day names, case-insensitively.
func ParseDay(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for d, n := range dayNames {
		if n == name {
			return d, true
		}
	}
	d, ok := legacyDayNames[name]
	return d, ok
}

// Encode writes m as "monday:09:00-12:30,14:00-18:00;tuesday:09:00-12:30".
func Encode(m Model) string {
	var b strings.Builder
	for _, day := range weekOrder {
		ranges := m.RangesFor(day)
		if len(ranges) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(daySep)
		}
		b.WriteString(dayNames[day])
		b.WriteString(nameSep)
		for i, r := range ranges {
			if i > 0 {
				b.WriteString(rangeSep)
			}
			b.WriteString(r.String())
		}
	}
	return b.String()
}

// Decode parses the stored encoding leniently: a malformed day segment is
// dropped and reported, the rest of the string is still used. A later
// segment for the same day replaces an earlier one.
func Decode(s string) (Model, []Skipped) {
	m := Model{}
	var skipped []Skipped

	for _, segment := range strings.Split(s, daySep) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		day, ranges, reason := decodeDay(segment)
		if reason != "" {
			skipped = append(skipped, Skipped{Segment: segment, Reason: reason})
			continue
		}
		m[day] = ranges
	}

	return m, skipped
}

// DecodeStrict is used when hours are edited: any malformed segment or any
// range that does not open before it closes is an error.
func DecodeStrict(s string) (Model, error) {
	m, skipped := Decode(s)
	if len(skipped) > 0 {
		return nil, &timeutil.FormatError{Kind: "working hours", Input: skipped[0].Segment}
	}
	for _, day := range weekOrder {
		for _, r := range m[day] {
			if !r.Valid() {
				return nil, &timeutil.FormatError{Kind: "working hours", Input: dayNames[day] + nameSep + r.String()}
			}
		}
	}
	return m, nil
}

func decodeDay(segment string) (time.Weekday, []Range, string) {
	name, list, ok := strings.Cut(segment, nameSep)
	if !ok {
		return 0, nil, "missing day separator"
	}

	day, ok := ParseDay(name)
	if !ok {
		return 0, nil, "unknown day " + strings.TrimSpace(name)
	}

	if strings.TrimSpace(list) == "" {
		return 0, nil, "empty range list"
	}

	var ranges []Range
	for _, raw := range strings.Split(list, rangeSep) {
		r, err := decodeRange(raw)
		if err != nil {
			return 0, nil, err.Error()
		}
		ranges = append(ranges, r)
	}
	return day, ranges, ""
}

func decodeRange(raw string) (Range, error) {
	open, closeAt, ok := strings.Cut(strings.TrimSpace(raw), spanSep)
	if !ok {
		return Range{}, &timeutil.FormatError{Kind: "range", Input: raw}
	}
	o, err := timeutil.ParseTime(open)
	if err != nil {
		return Range{}, err
	}
	c, err := timeutil.ParseTime(closeAt)
	if err != nil {
		return Range{}, err
	}
	return Range{Open: o, Close: c}, nil
}
