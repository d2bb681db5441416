// The `ical` package converts the VEVENTs produced by an iCalendar parser
// into typed `event.Event` values.
//
// # References:
// - RFC5545: https://datatracker.ietf.org/doc/html/rfc5545
//
// # Notes:
//   - Reading the calendar text is left to github.com/arran4/golang-ical or
//     github.com/emersion/go-ical, the adapters in this package turn their
//     components into `property.RawProperty` lists.
//   - Recurrences are kept as parsed rules, never expanded.
//   - Conversion is all-or-nothing per event, see `event.ConversionError`.
//
// # Example usage:
//
// Convert one event
//
//	evt, err := ical.FromProperties([]property.RawProperty{
//	    property.New("UID", "evt-1"),
//	    property.New("DTSTART", "20240115T090000Z"),
//	})
//
// Convert a whole file, skipping broken events
//
//	source, _ := ical.Open(ctx, "https://example.com/calendar.ics")
//	batch, _ := source.Events()
//	results, _ := ical.Convert(ctx, batch, ical.PolicySkip)
//	events := ical.Events(results)
package ical

import (
	"time"
	"typedcal/src-server/ical/event"
	"typedcal/src-server/ical/property"

	"github.com/olebedev/when"
)

type config struct {
	event   event.Options
	workers int
}

// Tweak a conversion.
type Option func(*config)

// Resolve floating times and all-day dates in loc instead of time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *config) {
		c.event.Date.Location = loc
	}
}

// Retry values that are not iCalendar date literals as ISO-8601 and then as
// natural language through parser, relative to base (zero means now).
func WithLenientDates(parser *when.Parser, base time.Time) Option {
	return func(c *config) {
		c.event.Date.When = parser
		c.event.Date.Base = base
	}
}

// Number of goroutines used by Convert, values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

func newConfig(opts []Option) config {
	c := config{workers: defaultWorkerCount}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Convert the properties of one VEVENT into an Event. The error, if any, is a
// *event.ConversionError.
func FromProperties(props []property.RawProperty, opts ...Option) (*event.Event, error) {
	c := newConfig(opts)
	return fromProperties(props, c)
}

func fromProperties(props []property.RawProperty, c config) (*event.Event, error) {
	undecided := event.NewUndecidedEvent(c.event)
	if err := undecided.AddProperties(property.Extract(props)); err != nil {
		return nil, err
	}
	return undecided.Decide()
}
