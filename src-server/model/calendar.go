package model

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// One imported .ics source, a file path or an URL.
type Calendar struct {
	bun.BaseModel `bun:"table:calendars"`

	ID         string `bun:"id,pk"`              // required
	Source     string `bun:"source,notnull"`     // required
	Hash       string `bun:"hash"`               // sha256 of the last imported payload
	EventCount int    `bun:"event_count"`        // events stored by the last import
	SkipCount  int    `bun:"skip_count"`         // events rejected by the last import
	ImportedAt int64  `bun:"imported_at,notnull"` // unix seconds, UTC

	Events []*Event `bun:"rel:has-many,join:id=calendar_id"`
}

// Get the calendar ID for a source. The same source always maps to the same
// ID so a re-import replaces the previous one.
func CalendarID(source string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source)).String()
}

func (c *Calendar) Upsert(ctx context.Context, db bun.IDB) error {
	if db == nil {
		return fmt.Errorf("(*Calendar).Upsert: db is nil")
	}

	switch {
	case c.ID == "":
		return fmt.Errorf("(*Calendar).Upsert: calendar id is blank")
	case c.Source == "":
		return fmt.Errorf("(*Calendar).Upsert: calendar source is blank")
	}

	if _, err := db.NewInsert().
		Model(c).
		On("CONFLICT (id) DO UPDATE").
		Set("source = EXCLUDED.source").
		Set("hash = EXCLUDED.hash").
		Set("event_count = EXCLUDED.event_count").
		Set("skip_count = EXCLUDED.skip_count").
		Set("imported_at = EXCLUDED.imported_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Calendar).Upsert: can't upsert calendar: %w", err)
	}

	return nil
}
