package ical

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"typedcal/src-server/ical/event"
	"typedcal/src-server/ical/property"

	ics "github.com/arran4/golang-ical"
	goical "github.com/emersion/go-ical"
)

// Parameters come out of both parsers as a map, so their names are sorted
// to keep the conversion reproducible. Values of one name keep their order.
func paramsFromMap(params map[string][]string) property.Params {
	if len(params) == 0 {
		return nil
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var result property.Params
	for _, name := range names {
		for _, value := range params[name] {
			result = append(result, property.Param{Name: name, Value: value})
		}
	}
	return result
}

// Get the raw properties of a VEVENT parsed by github.com/arran4/golang-ical,
// in the order they appear in the file.
func Arran4Properties(ve *ics.VEvent) []property.RawProperty {
	props := make([]property.RawProperty, 0, len(ve.Properties))
	for _, prop := range ve.Properties {
		props = append(props, property.RawProperty{
			Name:   prop.IANAToken,
			Value:  prop.Value,
			Params: paramsFromMap(prop.ICalParameters),
		})
	}
	return props
}

// Convert a VEVENT parsed by github.com/arran4/golang-ical.
func FromArran4Event(ve *ics.VEvent, opts ...Option) (*event.Event, error) {
	return FromProperties(Arran4Properties(ve), opts...)
}

// Read a calendar with github.com/arran4/golang-ical and return the raw
// properties of every VEVENT.
func ParseCalendar(r io.Reader) ([][]property.RawProperty, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("ParseCalendar: %w", err)
	}
	events := cal.Events()
	batch := make([][]property.RawProperty, 0, len(events))
	for _, ve := range events {
		batch = append(batch, Arran4Properties(ve))
	}
	return batch, nil
}

// Get the raw properties of a VEVENT decoded by github.com/emersion/go-ical.
// That parser groups properties by name, so names are sorted; occurrences
// of one name, e.g. every ATTENDEE, keep their order.
func GoIcalProperties(ev goical.Event) []property.RawProperty {
	names := make([]string, 0, len(ev.Props))
	for name := range ev.Props {
		names = append(names, name)
	}
	sort.Strings(names)

	var props []property.RawProperty
	for _, name := range names {
		for _, prop := range ev.Props[name] {
			props = append(props, property.RawProperty{
				Name:   prop.Name,
				Value:  prop.Value,
				Params: paramsFromMap(prop.Params),
			})
		}
	}
	return props
}

// Convert a VEVENT decoded by github.com/emersion/go-ical.
func FromGoIcalEvent(ev goical.Event, opts ...Option) (*event.Event, error) {
	return FromProperties(GoIcalProperties(ev), opts...)
}

// Read every calendar of a stream with github.com/emersion/go-ical and return
// the raw properties of every VEVENT.
func DecodeCalendar(r io.Reader) ([][]property.RawProperty, error) {
	decoder := goical.NewDecoder(r)
	var batch [][]property.RawProperty
	for {
		cal, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("DecodeCalendar: %w", err)
		}
		for _, ev := range cal.Events() {
			batch = append(batch, GoIcalProperties(ev))
		}
	}
	return batch, nil
}
