package model

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"typedcal/src-server/ical/event"

	"github.com/uptrace/bun"
)

// Delete a calendar together with its events and their attendees.
func DeleteCalendar(ctx context.Context, db bun.IDB, calendarID string) error {
	if _, err := db.NewDelete().
		Model((*Attendee)(nil)).
		Where("event_id IN (?)", db.NewSelect().
			Model((*Event)(nil)).
			Column("id").
			Where("calendar_id = ?", calendarID)).
		Exec(ctx); err != nil {
		return fmt.Errorf("DeleteCalendar: can't delete attendees: %w", err)
	}
	if _, err := db.NewDelete().
		Model((*Event)(nil)).
		Where("calendar_id = ?", calendarID).
		Exec(ctx); err != nil {
		return fmt.Errorf("DeleteCalendar: can't delete events: %w", err)
	}
	if _, err := db.NewDelete().
		Model((*Calendar)(nil)).
		Where("id = ?", calendarID).
		Exec(ctx); err != nil {
		return fmt.Errorf("DeleteCalendar: can't delete calendar: %w", err)
	}
	return nil
}

// Replace everything stored for source with events, in one transaction.
// skipped is the number of events the conversion rejected, kept for
// reporting only.
func ReplaceCalendar(ctx context.Context, db *bun.DB, source, hash string, events []*event.Event, skipped int) (*Calendar, error) {
	calendar := &Calendar{
		ID:         CalendarID(source),
		Source:     source,
		Hash:       hash,
		EventCount: len(events),
		SkipCount:  skipped,
		ImportedAt: time.Now().UTC().Unix(),
	}

	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := DeleteCalendar(ctx, tx, calendar.ID); err != nil {
			return err
		}
		if err := calendar.Upsert(ctx, tx); err != nil {
			return err
		}
		for _, evt := range events {
			if err := FromTyped(calendar.ID, evt).Upsert(ctx, tx); err != nil {
				return fmt.Errorf("event %s: %w", evt.UID(), err)
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("ReplaceCalendar: %w", err)
	}

	return calendar, nil
}

// Check whether source was already imported with the same payload hash.
func IsUnchanged(ctx context.Context, db bun.IDB, source, hash string) (bool, error) {
	exists, err := db.NewSelect().
		Model((*Calendar)(nil)).
		Where("id = ?", CalendarID(source)).
		Where("hash = ?", hash).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("IsUnchanged: %w", err)
	}
	return exists, nil
}
