package models

import (
	"fmt"
	"strings"
	"time"
)

// BusinessHours is the operating window policy for a resource:
// the set of open weekdays plus open/close times of day.
type BusinessHours struct {
	Days  []string `yaml:"days" json:"days"`
	Start string   `yaml:"start" json:"start"` // "09:00"
	End   string   `yaml:"end" json:"end"`     // "17:00"
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// OpenOn reports whether the given weekday is an open day.
func (h BusinessHours) OpenOn(day time.Weekday) bool {
	for _, d := range h.Days {
		if wd, ok := weekdayNames[strings.ToLower(d)]; ok && wd == day {
			return true
		}
	}
	return false
}

// Window returns the open and close times as minutes from midnight.
func (h BusinessHours) Window() (openMin, closeMin int, err error) {
	openMin, err = parseClock(h.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid business-hours start %q: %w", h.Start, err)
	}
	closeMin, err = parseClock(h.End)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid business-hours end %q: %w", h.End, err)
	}
	if closeMin <= openMin {
		return 0, 0, fmt.Errorf("business-hours end %q is not after start %q", h.End, h.Start)
	}
	return openMin, closeMin, nil
}

// Validate checks days and the open/close window.
func (h BusinessHours) Validate() error {
	if len(h.Days) == 0 {
		return fmt.Errorf("business hours must list at least one open day")
	}
	for _, d := range h.Days {
		if _, ok := weekdayNames[strings.ToLower(d)]; !ok {
			return fmt.Errorf("unknown weekday %q", d)
		}
	}
	_, _, err := h.Window()
	return err
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
