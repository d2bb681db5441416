package event

import "typedcal/src-server/ical/utils"

// A converted VEVENT. Immutable once returned by Decide, so it can be shared
// between goroutines freely.
type Event struct {
	EventInfo
}

// Get DTEND, or DTSTART plus DURATION when there is no DTEND. Nil when
// neither can be worked out.
func (e *Event) EffectiveEnd() *utils.DateTime {
	switch {
	case e.end != nil:
		return copyOf(e.end)
	case e.start != nil && e.duration != nil:
		end := *e.start
		end.Time = e.duration.AddTo(e.start.Time)
		if e.duration.Hours != 0 || e.duration.Minutes != 0 || e.duration.Seconds != 0 {
			end.AllDay = false
		}
		return &end
	default:
		return nil
	}
}

// Check whether the event repeats through RRULE or RDATE
func (e *Event) IsRecurring() bool {
	return e.rule != nil || len(e.rDates) > 0
}

// Check whether the event overrides one instance of a recurring event
func (e *Event) IsOverride() bool {
	return e.recurrenceID != nil
}
