package model

import (
	"github.com/uptrace/bun"
)

type Attendee struct {
	bun.BaseModel `bun:"table:attendees"`

	ID       int64  `bun:"id,pk,autoincrement"`
	EventID  string `bun:"event_id,notnull"` // required
	Position int    `bun:"position,notnull"` // order in the source event
	Address  string `bun:"address,notnull"`  // required, scheme included
	Cn       string `bun:"cn"`
	Role     string `bun:"role"`
	PartStat string `bun:"partstat"`
	Rsvp     bool   `bun:"rsvp"`

	Event *Event `bun:"rel:belongs-to,join:event_id=id"`
}
