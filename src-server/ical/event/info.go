package event

import (
	"slices"
	"typedcal/src-server/ical/property"
	"typedcal/src-server/ical/structured"
	"typedcal/src-server/ical/utils"
)

// Purely for reusing the same fields in UndecidedEvent and Event.
//   - Only getters are available.
//   - Event is immutable, getters hand out copies.
//   - UndecidedEvent is filled by AddProperties.
type EventInfo struct {
	uid string

	summary     string
	description string
	location    string
	comment     string
	url         string

	start        *utils.DateTime
	end          *utils.DateTime
	duration     *utils.Duration
	rule         *structured.Rule
	rDates       []utils.DateTime
	exDates      []utils.DateTime
	recurrenceID *utils.DateTime

	created      *utils.DateTime
	dtStamp      *utils.DateTime
	lastModified *utils.DateTime

	attendees []structured.Participant
	organizer *structured.Participant

	sequence    int
	hasSequence bool
	priority    int
	hasPriority bool

	status       utils.Status
	transparency utils.Transparency
	class        utils.Class
	categories   []string
	attachments  []string

	customProperties []property.RawProperty
}

func copyOf[T any](value *T) *T {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneAll[T any](values []T, clone func(T) T) []T {
	if values == nil {
		return nil
	}
	result := make([]T, len(values))
	for i, value := range values {
		result[i] = clone(value)
	}
	return result
}

// Get the event UID, never empty on a decided event
func (e *EventInfo) UID() string {
	return e.uid
}

// Get the event summary
func (e *EventInfo) Summary() string {
	return e.summary
}

// Get the event description
func (e *EventInfo) Description() string {
	return e.description
}

// Get the event location
func (e *EventInfo) Location() string {
	return e.location
}

// Get the event comment
func (e *EventInfo) Comment() string {
	return e.comment
}

// Get the event URL
func (e *EventInfo) URL() string {
	return e.url
}

// Get DTSTART, nil if absent
func (e *EventInfo) Start() *utils.DateTime {
	return copyOf(e.start)
}

// Get DTEND, nil if absent
func (e *EventInfo) End() *utils.DateTime {
	return copyOf(e.end)
}

// Get DURATION, nil if absent
func (e *EventInfo) Duration() *utils.Duration {
	return copyOf(e.duration)
}

// Get the parsed RRULE, nil if absent
func (e *EventInfo) RecurrenceRule() *structured.Rule {
	return e.rule.Clone()
}

// Get every RDATE value in source order
func (e *EventInfo) RDates() []utils.DateTime {
	return slices.Clone(e.rDates)
}

// Get every EXDATE value in source order
func (e *EventInfo) ExDates() []utils.DateTime {
	return slices.Clone(e.exDates)
}

// Get RECURRENCE-ID, nil if absent
func (e *EventInfo) RecurrenceID() *utils.DateTime {
	return copyOf(e.recurrenceID)
}

// Get CREATED, nil if absent
func (e *EventInfo) Created() *utils.DateTime {
	return copyOf(e.created)
}

// Get DTSTAMP, nil if absent
func (e *EventInfo) DTStamp() *utils.DateTime {
	return copyOf(e.dtStamp)
}

// Get LAST-MODIFIED, nil if absent
func (e *EventInfo) LastModified() *utils.DateTime {
	return copyOf(e.lastModified)
}

// Get the attendees in the order they appeared in the source
func (e *EventInfo) Attendees() []structured.Participant {
	return cloneAll(e.attendees, structured.Participant.Clone)
}

// Get the organizer, nil if absent
func (e *EventInfo) Organizer() *structured.Participant {
	if e.organizer == nil {
		return nil
	}
	organizer := e.organizer.Clone()
	return &organizer
}

// Get SEQUENCE. The boolean is false when the property is absent, which is
// not the same as an explicit 0.
func (e *EventInfo) Sequence() (int, bool) {
	return e.sequence, e.hasSequence
}

// Get PRIORITY (0-9), same convention as Sequence
func (e *EventInfo) Priority() (int, bool) {
	return e.priority, e.hasPriority
}

// Get STATUS, empty if absent
func (e *EventInfo) Status() utils.Status {
	return e.status
}

// Get TRANSP, empty if absent
func (e *EventInfo) Transparency() utils.Transparency {
	return e.transparency
}

// Get CLASS, empty if absent
func (e *EventInfo) Class() utils.Class {
	return e.class
}

// Get the categories of every CATEGORIES line, flattened
func (e *EventInfo) Categories() []string {
	return slices.Clone(e.categories)
}

// Get every ATTACH value
func (e *EventInfo) Attachments() []string {
	return slices.Clone(e.attachments)
}

// Get the properties that were not interpreted, in source order
func (e *EventInfo) CustomProperties() []property.RawProperty {
	return cloneAll(e.customProperties, property.RawProperty.Clone)
}
