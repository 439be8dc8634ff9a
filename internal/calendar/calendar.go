// Package calendar resolves named seasonal events for the seasonal indicator
// kinds. The engine only consumes the Calendar interface; the static
// implementation here is loaded from a YAML file shipped alongside the
// market data.
package calendar

import (
	"fmt"
	"os"
	"time"

	"github.com/quantvis/strata/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Calendar resolves named-event lookups used by seasonal indicator kinds.
type Calendar interface {
	// HasEvent reports whether the named event is known.
	HasEvent(name string) bool
	// DaysToEvent returns the number of days from t to the next annual
	// occurrence of the named event (0 on the event day itself).
	DaysToEvent(name string, t time.Time) (int, error)
	// IsFavorableMonth reports whether t falls in one of the event's
	// historically favorable months.
	IsFavorableMonth(name string, t time.Time) (bool, error)
}

// Event is one annual seasonal event.
type Event struct {
	Name string `yaml:"name"`
	// Month and Day anchor the annual occurrence.
	Month time.Month `yaml:"month"`
	Day   int        `yaml:"day"`
	// FavorableMonths lists months (1-12) considered favorable for the
	// seasonal pattern around this event.
	FavorableMonths []time.Month `yaml:"favorable_months"`
}

// StaticCalendar is an immutable Calendar backed by a fixed event list.
type StaticCalendar struct {
	events map[string]Event
}

// NewStaticCalendar creates a calendar from an event list.
func NewStaticCalendar(events []Event) *StaticCalendar {
	byName := make(map[string]Event, len(events))
	for _, event := range events {
		byName[event.Name] = event
	}

	return &StaticCalendar{events: byName}
}

// LoadCalendar reads a YAML event file and builds a static calendar.
func LoadCalendar(path string) (*StaticCalendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar file: %w", err)
	}

	var config struct {
		Events []Event `yaml:"events"`
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse calendar file: %w", err)
	}

	return NewStaticCalendar(config.Events), nil
}

// HasEvent implements Calendar.
func (c *StaticCalendar) HasEvent(name string) bool {
	_, ok := c.events[name]

	return ok
}

// DaysToEvent implements Calendar.
func (c *StaticCalendar) DaysToEvent(name string, t time.Time) (int, error) {
	event, ok := c.events[name]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeUnknownCalendarEvent, "unknown calendar event %q", name)
	}

	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	occurrence := time.Date(t.Year(), event.Month, event.Day, 0, 0, 0, 0, time.UTC)
	if occurrence.Before(day) {
		occurrence = time.Date(t.Year()+1, event.Month, event.Day, 0, 0, 0, 0, time.UTC)
	}

	return int(occurrence.Sub(day).Hours() / 24), nil
}

// IsFavorableMonth implements Calendar.
func (c *StaticCalendar) IsFavorableMonth(name string, t time.Time) (bool, error) {
	event, ok := c.events[name]
	if !ok {
		return false, errors.Newf(errors.ErrCodeUnknownCalendarEvent, "unknown calendar event %q", name)
	}

	for _, month := range event.FavorableMonths {
		if t.Month() == month {
			return true, nil
		}
	}

	return false, nil
}
