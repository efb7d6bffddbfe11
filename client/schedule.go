package client

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// timezoneNamePattern matches a tz-database name like "America/New_York"
// (spec.md §4.4.5).
var timezoneNamePattern = regexp.MustCompile(`^[A-Za-z]+(_[A-Za-z]+)*(/[A-Za-z]+(_[A-Za-z]+)*)*$`)

// CalendarEntry is a calendar-style schedule entry: each field is
// either "*" or a comma-separated list of integers and hyphenated
// ranges within its domain (spec.md §4.4.5).
type CalendarEntry struct {
	Minutes  string `json:"minutes"`
	Hours    string `json:"hours"`
	Days     string `json:"days"`
	Months   string `json:"months"`
	Weekdays string `json:"weekdays"`
	Timezone string `json:"timezone"`
}

// ScheduleEntry is one element of a Schedule: either a positive integer
// interval in seconds, or a CalendarEntry. Exactly one is set.
type ScheduleEntry struct {
	IntervalSeconds int
	Calendar        *CalendarEntry
}

// Schedule is an ordered list of ScheduleEntry that tells the server
// when to poll a PolledQuery (spec.md §4.4.5).
type Schedule struct {
	Entries []ScheduleEntry
}

var calendarDomains = map[string][2]int{
	"minutes":  {0, 59},
	"hours":    {0, 23},
	"days":     {1, 31},
	"months":   {1, 12},
	"weekdays": {0, 6},
}

// Validate checks every entry against spec.md §4.4.5's rules, returning
// an *Error wrapping ErrScheduleError describing the first violation.
func (s *Schedule) Validate() error {
	for i, entry := range s.Entries {
		if entry.Calendar == nil {
			if entry.IntervalSeconds <= 0 {
				return newError(ErrScheduleError, "entry %d: interval must be a positive integer, got %d", i, entry.IntervalSeconds)
			}
			continue
		}
		c := entry.Calendar
		fields := map[string]string{
			"minutes":  c.Minutes,
			"hours":    c.Hours,
			"days":     c.Days,
			"months":   c.Months,
			"weekdays": c.Weekdays,
		}
		for name, value := range fields {
			domain := calendarDomains[name]
			if err := validateCalendarField(name, value, domain[0], domain[1]); err != nil {
				return newError(ErrScheduleError, "entry %d: %v", i, err)
			}
		}
		if c.Timezone != "" && !timezoneNamePattern.MatchString(c.Timezone) {
			return newError(ErrScheduleError, "entry %d: invalid timezone %q", i, c.Timezone)
		}
	}
	return nil
}

// validateCalendarField checks one "*" | list-of-int-or-range field
// against [lo, hi].
func validateCalendarField(name, value string, lo, hi int) error {
	if value == "" || value == "*" {
		return nil
	}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return fmt.Errorf("%s: empty list element", name)
		}
		if dash := strings.IndexByte(part, '-'); dash >= 0 {
			lowStr, highStr := part[:dash], part[dash+1:]
			low, err := strconv.Atoi(lowStr)
			if err != nil {
				return fmt.Errorf("%s: invalid range start %q", name, lowStr)
			}
			high, err := strconv.Atoi(highStr)
			if err != nil {
				return fmt.Errorf("%s: invalid range end %q", name, highStr)
			}
			if low > high || low < lo || high > hi {
				return fmt.Errorf("%s: range %s out of domain [%d,%d]", name, part, lo, hi)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("%s: invalid value %q", name, part)
		}
		if n < lo || n > hi {
			return fmt.Errorf("%s: value %d out of domain [%d,%d]", name, n, lo, hi)
		}
	}
	return nil
}

// toWire converts the Schedule to the JSON shape the server expects:
// an array whose entries are either a bare integer or a calendar object.
func (s *Schedule) toWire() []interface{} {
	wire := make([]interface{}, len(s.Entries))
	for i, e := range s.Entries {
		if e.Calendar != nil {
			wire[i] = e.Calendar
		} else {
			wire[i] = e.IntervalSeconds
		}
	}
	return wire
}
