package event

import (
	"log/slog"
	"strings"
	"typedcal/src-server/ical/property"
	"typedcal/src-server/ical/utils"
)

// Settings for one conversion.
type Options struct {
	Date utils.DateOptions
}

// Holds everything an event could possibly hold while its properties are
// being parsed. Not safe for concurrent use.
type UndecidedEvent struct {
	EventInfo

	opts  Options
	added bool
}

// Create a new, empty undecided event
func NewUndecidedEvent(opts Options) *UndecidedEvent {
	return &UndecidedEvent{opts: opts}
}

// Parse every property of one event into the undecided event.
//   - UID is checked before anything else.
//   - Singular properties keep their first occurrence, duplicates are
//     ignored without being parsed.
//   - The first parse failure, in field order, aborts the conversion.
//   - Names without a field of their own end up in CustomProperties.
//
// The returned error is always a *ConversionError.
func (e *UndecidedEvent) AddProperties(props *property.Map) error {
	uid, ok := props.First("UID")
	if !ok {
		return missingUID("")
	}
	if strings.TrimSpace(uid.Value) == "" {
		return missingUID(uid.Value)
	}
	if n := len(props.All("UID")); n > 1 {
		slog.Debug("ignoring duplicate property", "name", "UID", "count", n)
	}
	e.uid = strings.TrimSpace(uid.Value)

	for _, f := range fields {
		occurrences := props.All(f.name)
		if len(occurrences) == 0 {
			continue
		}
		if !f.multi && len(occurrences) > 1 {
			slog.Debug("ignoring duplicate property", "uid", e.uid, "name", f.name, "count", len(occurrences))
			occurrences = occurrences[:1]
		}
		for _, occurrence := range occurrences {
			if err := f.apply(e, occurrence); err != nil {
				return fieldParseError(f.name, occurrence.Value, err)
			}
		}
	}

	for _, name := range props.Names() {
		if _, ok := knownFields[name]; ok {
			continue
		}
		for _, occurrence := range props.All(name) {
			e.customProperties = append(e.customProperties, property.RawProperty{
				Name:   name,
				Value:  occurrence.Value,
				Params: occurrence.Params,
			})
		}
	}

	e.added = true
	return nil
}

// Run the cross-field checks and freeze the result into an Event.
//   - DTEND must not be earlier than DTSTART.
//   - DURATION must not be negative, nor end before DTSTART.
func (e *UndecidedEvent) Decide() (*Event, error) {
	if !e.added || e.uid == "" {
		return nil, missingUID("")
	}

	if e.start != nil && e.end != nil && e.end.Before(*e.start) {
		return nil, invalidTimeRange("DTEND", e.end.Format(),
			"DTEND %s is before DTSTART %s", e.end.Format(), e.start.Format())
	}
	if e.duration != nil && e.duration.Std() < 0 {
		return nil, invalidTimeRange("DURATION", e.duration.String(),
			"DURATION must not be negative")
	}

	evt := &Event{EventInfo: e.EventInfo}
	if e.start != nil && e.duration != nil {
		if end := evt.EffectiveEnd(); end != nil && end.Before(*e.start) {
			return nil, invalidTimeRange("DURATION", e.duration.String(),
				"DTSTART %s plus DURATION ends at %s", e.start.Format(), end.Format())
		}
	}
	return evt, nil
}
