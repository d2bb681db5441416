// Package `structured` contains iCalendar values that carry their own
// internal structure instead of a single scalar, either through parameters
// (`ATTENDEE;CN=Name;ROLE=CHAIR:mailto:email@example.com`) or through a
// nested grammar (`RRULE:FREQ=WEEKLY;BYDAY=MO,WE`).
//
// Use ParseParticipant for ATTENDEE and ORGANIZER, ParseRule for RRULE.
package structured
