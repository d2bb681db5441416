package model

import (
	"context"
	"fmt"
	"strings"
	"typedcal/src-server/ical/event"
	"typedcal/src-server/ical/utils"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// The stored form of an event.Event. Dates are unix seconds in UTC, 0 when
// absent.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID           string `bun:"id,pk"`               // required
	CalendarID   string `bun:"calendar_id,notnull"` // required
	UID          string `bun:"uid,notnull"`         // required
	RecurrenceID int64  `bun:"recurrence_id"`

	Summary     string `bun:"summary"`
	Description string `bun:"description"`
	Location    string `bun:"location"`
	URL         string `bun:"url"`
	Organizer   string `bun:"organizer"`

	StartDateUnixUTC int64  `bun:"start_date"`
	EndDateUnixUTC   int64  `bun:"end_date"`
	IsWholeDay       bool   `bun:"is_whole_day"`
	TZID             string `bun:"tzid"`
	RRule            string `bun:"rrule"`

	Status     string `bun:"status"`
	Categories string `bun:"categories"` // comma separated
	Sequence   int    `bun:"sequence"`

	CreatedAt int64 `bun:"created_at"`
	UpdatedAt int64 `bun:"updated_at"`

	Attendees []*Attendee `bun:"rel:has-many,join:id=event_id"`
	Calendar  *Calendar   `bun:"rel:belongs-to,join:calendar_id=id"`
}

func unixOf(dt *utils.DateTime) int64 {
	if dt == nil {
		return 0
	}
	return dt.Time.UTC().Unix()
}

// Get the row ID of an event. An override (RECURRENCE-ID) gets its own row
// next to the event it overrides.
func EventID(calendarID, uid string, recurrenceID int64) string {
	return uuid.NewSHA1(uuid.NameSpaceURL,
		[]byte(fmt.Sprintf("%s/%s/%d", calendarID, uid, recurrenceID)),
	).String()
}

// Convert a typed event into its row, attendees included.
func FromTyped(calendarID string, evt *event.Event) *Event {
	e := &Event{
		CalendarID:   calendarID,
		UID:          evt.UID(),
		RecurrenceID: unixOf(evt.RecurrenceID()),
		Summary:      evt.Summary(),
		Description:  evt.Description(),
		Location:     evt.Location(),
		URL:          evt.URL(),
		Status:       string(evt.Status()),
		Categories:   strings.Join(evt.Categories(), ","),
		CreatedAt:    unixOf(evt.Created()),
		UpdatedAt:    unixOf(evt.LastModified()),
	}
	e.ID = EventID(calendarID, e.UID, e.RecurrenceID)

	if start := evt.Start(); start != nil {
		e.StartDateUnixUTC = unixOf(start)
		e.IsWholeDay = start.AllDay
		e.TZID = start.TZID
	}
	e.EndDateUnixUTC = unixOf(evt.EffectiveEnd())
	if rule := evt.RecurrenceRule(); rule != nil {
		e.RRule = rule.String()
	}
	if organizer := evt.Organizer(); organizer != nil {
		e.Organizer = organizer.URI()
	}
	if sequence, ok := evt.Sequence(); ok {
		e.Sequence = sequence
	}

	for i, participant := range evt.Attendees() {
		e.Attendees = append(e.Attendees, &Attendee{
			EventID:  e.ID,
			Position: i,
			Address:  participant.URI(),
			Cn:       participant.Cn,
			Role:     string(participant.Role),
			PartStat: string(participant.PartStat),
			Rsvp:     participant.Rsvp,
		})
	}
	return e
}

// Insert the event, or update it when a row with the same ID exists. The
// attendees are replaced as a whole.
func (e *Event) Upsert(ctx context.Context, db bun.IDB) error {
	switch {
	case e.ID == "":
		return fmt.Errorf("(*Event).Upsert: event id is blank")
	case e.UID == "":
		return fmt.Errorf("(*Event).Upsert: uid is blank")
	case e.CalendarID == "":
		return fmt.Errorf("(*Event).Upsert: calendar id is blank")
	case e.EndDateUnixUTC != 0 && e.StartDateUnixUTC > e.EndDateUnixUTC:
		return fmt.Errorf("(*Event).Upsert: start date must be before end date")
	}

	exists, err := db.NewSelect().
		Model((*Event)(nil)).
		Where("id = ?", e.ID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("(*Event).Upsert: %w", err)
	}

	switch exists {
	case true:
		if _, err := db.NewUpdate().
			Model(e).
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: %w", err)
		}
		if _, err := db.NewDelete().
			Model((*Attendee)(nil)).
			Where("event_id = ?", e.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: can't clear attendees: %w", err)
		}
	case false:
		if _, err := db.NewInsert().
			Model(e).
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: %w", err)
		}
	}

	if len(e.Attendees) > 0 {
		for _, attendee := range e.Attendees {
			attendee.EventID = e.ID
		}
		if _, err := db.NewInsert().
			Model(&e.Attendees).
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: can't insert attendees: %w", err)
		}
	}

	return nil
}
