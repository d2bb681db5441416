package event

import (
	"typedcal/src-server/ical/property"
	"typedcal/src-server/ical/structured"
	"typedcal/src-server/ical/utils"
)

// How one property name is turned into a field of EventInfo.
type field struct {
	name string
	// every occurrence is applied, otherwise only the first one
	multi bool
	apply func(e *UndecidedEvent, occurrence property.Occurrence) error
}

// The fixed order in which fields are parsed. The first failure in this order
// is the one reported, whatever order the properties came in.
var fields = []field{
	{name: "SUMMARY", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		e.summary = utils.UnescapeText(o.Value)
		return nil
	}},
	{name: "DESCRIPTION", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		e.description = utils.UnescapeText(o.Value)
		return nil
	}},
	{name: "LOCATION", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		e.location = utils.UnescapeText(o.Value)
		return nil
	}},
	{name: "COMMENT", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		e.comment = utils.UnescapeText(o.Value)
		return nil
	}},
	{name: "DTSTART", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		return e.parseDateTime(o, &e.start)
	}},
	{name: "DTEND", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		return e.parseDateTime(o, &e.end)
	}},
	{name: "DURATION", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		duration, err := utils.ParseDuration(o.Value)
		if err != nil {
			return err
		}
		e.duration = &duration
		return nil
	}},
	{name: "RRULE", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		rule, err := structured.ParseRule(o.Value, e.opts.Date)
		if err != nil {
			return err
		}
		e.rule = rule
		return nil
	}},
	{name: "RDATE", multi: true, apply: func(e *UndecidedEvent, o property.Occurrence) error {
		dates, err := utils.ParseDateTimeList(o.Value, o.Params, e.opts.Date)
		if err != nil {
			return err
		}
		e.rDates = append(e.rDates, dates...)
		return nil
	}},
	{name: "EXDATE", multi: true, apply: func(e *UndecidedEvent, o property.Occurrence) error {
		dates, err := utils.ParseDateTimeList(o.Value, o.Params, e.opts.Date)
		if err != nil {
			return err
		}
		e.exDates = append(e.exDates, dates...)
		return nil
	}},
	{name: "RECURRENCE-ID", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		return e.parseDateTime(o, &e.recurrenceID)
	}},
	{name: "ORGANIZER", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		organizer, err := structured.ParseParticipant(o.Value, o.Params)
		if err != nil {
			return err
		}
		e.organizer = &organizer
		return nil
	}},
	{name: "ATTENDEE", multi: true, apply: func(e *UndecidedEvent, o property.Occurrence) error {
		attendee, err := structured.ParseParticipant(o.Value, o.Params)
		if err != nil {
			return err
		}
		e.attendees = append(e.attendees, attendee)
		return nil
	}},
	{name: "SEQUENCE", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		sequence, err := utils.ParseInteger(o.Value, 0, -1)
		if err != nil {
			return err
		}
		e.sequence, e.hasSequence = sequence, true
		return nil
	}},
	{name: "PRIORITY", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		priority, err := utils.ParseInteger(o.Value, 0, 9)
		if err != nil {
			return err
		}
		e.priority, e.hasPriority = priority, true
		return nil
	}},
	{name: "STATUS", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		status, err := utils.ParseStatus(o.Value)
		if err != nil {
			return err
		}
		e.status = status
		return nil
	}},
	{name: "TRANSP", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		transparency, err := utils.ParseTransparency(o.Value)
		if err != nil {
			return err
		}
		e.transparency = transparency
		return nil
	}},
	{name: "CLASS", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		class, err := utils.ParseClass(o.Value)
		if err != nil {
			return err
		}
		e.class = class
		return nil
	}},
	{name: "CATEGORIES", multi: true, apply: func(e *UndecidedEvent, o property.Occurrence) error {
		e.categories = append(e.categories, utils.SplitText(o.Value)...)
		return nil
	}},
	{name: "ATTACH", multi: true, apply: func(e *UndecidedEvent, o property.Occurrence) error {
		e.attachments = append(e.attachments, o.Value)
		return nil
	}},
	{name: "URL", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		uri, err := utils.ParseURI(o.Value)
		if err != nil {
			return err
		}
		e.url = uri
		return nil
	}},
	{name: "CREATED", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		return e.parseDateTime(o, &e.created)
	}},
	{name: "DTSTAMP", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		return e.parseDateTime(o, &e.dtStamp)
	}},
	{name: "LAST-MODIFIED", apply: func(e *UndecidedEvent, o property.Occurrence) error {
		return e.parseDateTime(o, &e.lastModified)
	}},
}

// names handled by the table or by AddProperties itself
var knownFields = func() map[string]struct{} {
	known := map[string]struct{}{"UID": {}}
	for _, f := range fields {
		known[f.name] = struct{}{}
	}
	return known
}()

func (e *UndecidedEvent) parseDateTime(o property.Occurrence, target **utils.DateTime) error {
	dt, err := utils.ParseDateTime(o.Value, o.Params, e.opts.Date)
	if err != nil {
		return err
	}
	*target = &dt
	return nil
}
