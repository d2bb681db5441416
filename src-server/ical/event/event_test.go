package event_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
	"typedcal/src-server/ical/event"
	"typedcal/src-server/ical/property"
	"typedcal/src-server/ical/structured"
	"typedcal/src-server/ical/utils"

	_ "time/tzdata"
)

func convert(props ...property.RawProperty) (*event.Event, error) {
	undecided := event.NewUndecidedEvent(event.Options{
		Date: utils.DateOptions{Location: time.UTC},
	})
	if err := undecided.AddProperties(property.Extract(props)); err != nil {
		return nil, err
	}
	return undecided.Decide()
}

func reasonOf(t *testing.T, err error) *event.ConversionError {
	t.Helper()
	var convErr *event.ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected *event.ConversionError, got %T: %v", err, err)
	}
	return convErr
}

func TestMissingUID(t *testing.T) {
	cases := []struct {
		name  string
		props []property.RawProperty
	}{
		{"no properties", nil},
		{"no uid", []property.RawProperty{
			property.New("SUMMARY", "Standup"),
			property.New("DTSTART", "20240101T090000Z"),
		}},
		{"empty uid", []property.RawProperty{
			property.New("UID", ""),
			property.New("SUMMARY", "Standup"),
		}},
		{"blank uid", []property.RawProperty{property.New("UID", "   ")}},
		{"no uid and broken fields", []property.RawProperty{
			property.New("DTSTART", "not a date"),
			property.New("STATUS", "MAYBE"),
			property.New("DTSTART", "20240101T100000Z"),
			property.New("DTEND", "20240101T090000Z"),
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := convert(c.props...)
			if !errors.Is(err, event.ErrMissingUID) {
				t.Fatalf("expected ErrMissingUID, got %v", err)
			}
			if convErr := reasonOf(t, err); convErr.Reason != event.ReasonMissingUID {
				t.Errorf("unexpected reason %s", convErr.Reason)
			}
		})
	}
}

func TestInvalidTimeRange(t *testing.T) {
	_, err := convert(
		property.New("UID", "evt-1"),
		property.New("DTSTART", "20240101T100000Z"),
		property.New("DTEND", "20240101T090000Z"),
	)
	if !errors.Is(err, event.ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
	if errors.Is(err, event.ErrFieldParse) {
		t.Error("a time range failure is not a field parse failure")
	}

	// case: equal start and end is fine
	if _, err := convert(
		property.New("UID", "evt-1"),
		property.New("DTSTART", "20240101T100000Z"),
		property.New("DTEND", "20240101T100000Z"),
	); err != nil {
		t.Errorf("expected success, got %v", err)
	}

	// case: negative duration
	_, err = convert(
		property.New("UID", "evt-1"),
		property.New("DTSTART", "20240101T100000Z"),
		property.New("DURATION", "-PT1H"),
	)
	if !errors.Is(err, event.ErrInvalidTimeRange) {
		t.Errorf("expected ErrInvalidTimeRange, got %v", err)
	}
	// case: a signed zero duration is not negative
	for _, zero := range []string{"-PT0S", "-P0D"} {
		evt, err := convert(
			property.New("UID", "evt-1"),
			property.New("DTSTART", "20240101T100000Z"),
			property.New("DURATION", zero),
		)
		if err != nil {
			t.Errorf("%s: expected success, got %v", zero, err)
			continue
		}
		if end := evt.EffectiveEnd(); end == nil || !end.Time.Equal(evt.Start().Time) {
			t.Errorf("%s: expected the end to equal the start, got %+v", zero, end)
		}
	}
}

func TestOversizedDuration(t *testing.T) {
	_, err := convert(
		property.New("UID", "evt-1"),
		property.New("DTSTART", "20240101T090000Z"),
		property.New("DURATION", "PT9999999999H"),
	)
	if !errors.Is(err, event.ErrFieldParse) {
		t.Fatalf("expected ErrFieldParse, got %v", err)
	}
	var parseErr *utils.ParseError
	if !errors.As(err, &parseErr) || parseErr.Kind != utils.KindInvalidDuration {
		t.Errorf("expected %s, got %v", utils.KindInvalidDuration, err)
	}

	// case: the longest accepted duration still ends after the start
	evt, err := convert(
		property.New("UID", "evt-1"),
		property.New("DTSTART", "20240101T090000Z"),
		property.New("DURATION", "PT2562047H"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if end := evt.EffectiveEnd(); end == nil || !end.Time.After(evt.Start().Time) {
		t.Errorf("expected an end after the start, got %+v", end)
	}
}

func TestAllDayWithoutEnd(t *testing.T) {
	evt, err := convert(
		property.New("UID", "evt-2"),
		property.New("SUMMARY", "Standup"),
		property.New("DTSTART", "20240101", "VALUE", "DATE"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if evt.UID() != "evt-2" || evt.Summary() != "Standup" {
		t.Errorf("unexpected uid/summary %q %q", evt.UID(), evt.Summary())
	}
	start := evt.Start()
	if start == nil || !start.AllDay {
		t.Fatalf("expected an all-day start, got %+v", start)
	}
	if !start.Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %s", start.Time)
	}
	if evt.End() != nil {
		t.Errorf("expected no end, got %+v", evt.End())
	}
	if evt.EffectiveEnd() != nil {
		t.Errorf("expected no effective end, got %+v", evt.EffectiveEnd())
	}
}

func TestAttendeesKeepSourceOrder(t *testing.T) {
	props := []property.RawProperty{property.New("UID", "evt-3")}
	addresses := []string{"e@example.com", "a@example.com", "d@example.com", "b@example.com", "c@example.com"}
	for i, address := range addresses {
		props = append(props, property.New("ATTENDEE", "mailto:"+address))
		// interleave other properties to make sure grouping keeps the order
		if i == 2 {
			props = append(props, property.New("SUMMARY", "Planning"))
		}
	}

	evt, err := convert(props...)
	if err != nil {
		t.Fatal(err)
	}
	attendees := evt.Attendees()
	if len(attendees) != len(addresses) {
		t.Fatalf("expected %d attendees, got %d", len(addresses), len(attendees))
	}
	for i, attendee := range attendees {
		if attendee.Address != addresses[i] {
			t.Errorf("attendee %d: expected %s, got %s", i, addresses[i], attendee.Address)
		}
	}
}

func TestMalformedAttendeeFailsConversion(t *testing.T) {
	_, err := convert(
		property.New("UID", "evt-4"),
		property.New("ATTENDEE", "mailto:a@example.com"),
		property.New("ATTENDEE", "mailto:"),
		property.New("ATTENDEE", "mailto:c@example.com"),
	)
	convErr := reasonOf(t, err)
	if convErr.Reason != event.ReasonFieldParse || convErr.Field != "ATTENDEE" || convErr.Kind != utils.KindInvalidParticipant {
		t.Errorf("unexpected error %v", err)
	}
	var parseErr *utils.ParseError
	if !errors.As(err, &parseErr) || parseErr.Value != "mailto:" {
		t.Errorf("expected the parse error to be reachable, got %v", err)
	}
}

func TestDuplicateSingularPropertiesKeepFirst(t *testing.T) {
	evt, err := convert(
		property.New("UID", "evt-5"),
		property.New("UID", "evt-other"),
		property.New("SUMMARY", "first"),
		property.New("summary", "second"),
		property.New("DTSTART", "20240101T090000Z"),
		// never parsed, so it can't fail the conversion
		property.New("DTSTART", "garbage"),
		property.New("STATUS", "confirmed"),
		property.New("STATUS", "MAYBE"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if evt.UID() != "evt-5" || evt.Summary() != "first" || evt.Status() != utils.StatusConfirmed {
		t.Errorf("expected first occurrences to win, got %q %q %q", evt.UID(), evt.Summary(), evt.Status())
	}
}

func TestFieldParseErrors(t *testing.T) {
	cases := []struct {
		prop property.RawProperty
		kind utils.Kind
	}{
		{property.New("DTSTART", "2024-01-01"), utils.KindInvalidDateTime},
		{property.New("DTEND", "20240101T25"), utils.KindInvalidDateTime},
		{property.New("DURATION", "P"), utils.KindInvalidDuration},
		{property.New("RRULE", "INTERVAL=2"), utils.KindInvalidRecurrence},
		{property.New("ORGANIZER", ""), utils.KindInvalidParticipant},
		{property.New("STATUS", "MAYBE"), utils.KindUnrecognizedEnumValue},
		{property.New("TRANSP", "SOLID"), utils.KindUnrecognizedEnumValue},
		{property.New("SEQUENCE", "-1"), utils.KindInvalidInteger},
		{property.New("PRIORITY", "10"), utils.KindInvalidInteger},
		{property.New("URL", "not a url"), utils.KindInvalidURI},
		{property.New("EXDATE", ","), utils.KindInvalidDateTime},
	}
	for _, c := range cases {
		t.Run(c.prop.Name, func(t *testing.T) {
			_, err := convert(property.New("UID", "evt-6"), c.prop)
			if !errors.Is(err, event.ErrFieldParse) {
				t.Fatalf("expected ErrFieldParse, got %v", err)
			}
			convErr := reasonOf(t, err)
			if convErr.Field != c.prop.Name || convErr.Kind != c.kind || convErr.Value != c.prop.Value {
				t.Errorf("unexpected error %+v", convErr)
			}
		})
	}
}

func TestFirstErrorIsDeterministic(t *testing.T) {
	props := []property.RawProperty{
		property.New("UID", "evt-7"),
		property.New("STATUS", "MAYBE"),
		property.New("X-FOO", "bar"),
		property.New("DTSTART", "nope"),
		property.New("ATTENDEE", ""),
	}

	var first string
	// rotate the input, the reported field must not change
	for i := range props {
		rotated := append(append([]property.RawProperty{}, props[i:]...), props[:i]...)
		_, err := convert(rotated...)
		convErr := reasonOf(t, err)
		if convErr.Field != "DTSTART" {
			t.Errorf("rotation %d: expected DTSTART to be reported, got %s", i, convErr.Field)
		}
		if first == "" {
			first = err.Error()
		} else if err.Error() != first {
			t.Errorf("rotation %d: message changed from %q to %q", i, first, err.Error())
		}
	}
}

func TestFullEvent(t *testing.T) {
	evt, err := convert(
		property.New("UID", " evt-8 "),
		property.New("SUMMARY", `Review\, part 2`),
		property.New("DESCRIPTION", `Line one\nLine two`),
		property.New("LOCATION", "Room 1"),
		property.New("COMMENT", "bring snacks"),
		property.New("DTSTART", "20240305T090000", "TZID", "Europe/Paris"),
		property.New("DURATION", "PT90M"),
		property.New("RRULE", "FREQ=WEEKLY;BYDAY=TU;UNTIL=20240430T000000Z"),
		property.New("EXDATE", "20240312T090000,20240319T090000", "TZID", "Europe/Paris"),
		property.New("RDATE", "20240502T090000Z"),
		property.New("ORGANIZER", "mailto:boss@example.com", "CN", "Boss"),
		property.New("ATTENDEE", "mailto:a@example.com", "PARTSTAT", "ACCEPTED"),
		property.New("SEQUENCE", "0"),
		property.New("PRIORITY", "5"),
		property.New("STATUS", "tentative"),
		property.New("TRANSP", "TRANSPARENT"),
		property.New("CLASS", "PRIVATE"),
		property.New("CATEGORIES", "work,review"),
		property.New("CATEGORIES", "team"),
		property.New("ATTACH", "https://example.com/agenda.pdf"),
		property.New("URL", "https://example.com/review"),
		property.New("CREATED", "20240101T000000Z"),
		property.New("DTSTAMP", "20240102T000000Z"),
		property.New("LAST-MODIFIED", "20240103T000000Z"),
		property.New("X-COLOR", "#ff0000"),
		property.New("X-COLOR", "#00ff00"),
		property.New("GEO", "48.85;2.35"),
	)
	if err != nil {
		t.Fatal(err)
	}

	if evt.UID() != "evt-8" {
		t.Errorf("expected trimmed uid, got %q", evt.UID())
	}
	if evt.Summary() != "Review, part 2" || evt.Description() != "Line one\nLine two" {
		t.Errorf("text not unescaped: %q %q", evt.Summary(), evt.Description())
	}
	if evt.Location() != "Room 1" || evt.Comment() != "bring snacks" {
		t.Errorf("unexpected location/comment %q %q", evt.Location(), evt.Comment())
	}

	start := evt.Start()
	if start == nil || start.Zone != utils.ZoneTZID || start.TZID != "Europe/Paris" {
		t.Fatalf("unexpected start %+v", start)
	}
	if want := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC); !start.Time.Equal(want) {
		t.Errorf("expected %s, got %s", want, start.Time.UTC())
	}
	if end := evt.EffectiveEnd(); end == nil || !end.Time.Equal(start.Time.Add(90*time.Minute)) {
		t.Errorf("unexpected effective end %+v", end)
	}

	rule := evt.RecurrenceRule()
	if rule == nil || rule.Freq != structured.FrequencyWeekly || rule.Until == nil {
		t.Errorf("unexpected rule %+v", rule)
	}
	if len(evt.ExDates()) != 2 || len(evt.RDates()) != 1 {
		t.Errorf("unexpected exdates/rdates %v %v", evt.ExDates(), evt.RDates())
	}
	if !evt.IsRecurring() || evt.IsOverride() {
		t.Error("expected a recurring, non-override event")
	}

	if organizer := evt.Organizer(); organizer == nil || organizer.Cn != "Boss" {
		t.Errorf("unexpected organizer %+v", organizer)
	}
	if attendees := evt.Attendees(); len(attendees) != 1 || attendees[0].PartStat != structured.AttendeePartStatAccepted {
		t.Errorf("unexpected attendees %+v", attendees)
	}

	if sequence, ok := evt.Sequence(); !ok || sequence != 0 {
		t.Errorf("expected an explicit sequence 0, got %d %v", sequence, ok)
	}
	if priority, ok := evt.Priority(); !ok || priority != 5 {
		t.Errorf("expected priority 5, got %d %v", priority, ok)
	}
	if evt.Status() != utils.StatusTentative || evt.Transparency() != utils.TransparencyTransparent || evt.Class() != utils.ClassPrivate {
		t.Errorf("unexpected enums %s %s %s", evt.Status(), evt.Transparency(), evt.Class())
	}
	if want := []string{"work", "review", "team"}; !reflect.DeepEqual(evt.Categories(), want) {
		t.Errorf("expected categories %v, got %v", want, evt.Categories())
	}
	if want := []string{"https://example.com/agenda.pdf"}; !reflect.DeepEqual(evt.Attachments(), want) {
		t.Errorf("expected attachments %v, got %v", want, evt.Attachments())
	}
	if evt.URL() != "https://example.com/review" {
		t.Errorf("unexpected url %q", evt.URL())
	}
	if evt.Created() == nil || evt.DTStamp() == nil || evt.LastModified() == nil {
		t.Error("expected CREATED, DTSTAMP and LAST-MODIFIED")
	}

	custom := evt.CustomProperties()
	if len(custom) != 3 {
		t.Fatalf("expected 3 custom properties, got %d", len(custom))
	}
	if custom[0].Name != "X-COLOR" || custom[0].Value != "#ff0000" || custom[1].Value != "#00ff00" || custom[2].Name != "GEO" {
		t.Errorf("unexpected custom properties %+v", custom)
	}
}

func TestAbsentOptionalFields(t *testing.T) {
	evt, err := convert(property.New("UID", "evt-9"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := evt.Sequence(); ok {
		t.Error("expected no sequence")
	}
	if _, ok := evt.Priority(); ok {
		t.Error("expected no priority")
	}
	if evt.Start() != nil || evt.RecurrenceRule() != nil || evt.Organizer() != nil || evt.Status() != "" {
		t.Error("expected absent fields to stay empty")
	}
	if len(evt.Attendees()) != 0 || len(evt.CustomProperties()) != 0 {
		t.Error("expected no attendees nor custom properties")
	}
}

func TestEventIsImmutable(t *testing.T) {
	evt, err := convert(
		property.New("UID", "evt-10"),
		property.New("DTSTART", "20240101T090000Z"),
		property.New("ATTENDEE", "mailto:a@example.com", "DELEGATED-TO", "mailto:b@example.com", "MEMBER", "mailto:team@example.com"),
		property.New("ORGANIZER", "mailto:o@example.com", "DELEGATED-FROM", "mailto:p@example.com"),
		property.New("RRULE", "FREQ=MONTHLY;BYMONTHDAY=15;BYDAY=MO;UNTIL=20241231T000000Z;WKST=SU"),
		property.New("X-ROOM", "4B", "P", "kept"),
	)
	if err != nil {
		t.Fatal(err)
	}

	evt.Attendees()[0].Address = "changed"
	evt.Start().AllDay = true
	if evt.Attendees()[0].Address != "a@example.com" || evt.Start().AllDay {
		t.Error("getters must not expose internal state")
	}

	// nested lists
	evt.Attendees()[0].DelegatedTo[0] = "changed"
	evt.Attendees()[0].Member[0] = "changed"
	evt.Organizer().DelegatedFrom[0] = "changed"
	rule := evt.RecurrenceRule()
	rule.ByMonthDay[0] = 99
	rule.ByDay[0].N = 3
	rule.Until.AllDay = true
	*rule.Wkst = time.Friday
	evt.CustomProperties()[0].Params[0].Value = "changed"

	attendee := evt.Attendees()[0]
	if attendee.DelegatedTo[0] != "mailto:b@example.com" || attendee.Member[0] != "mailto:team@example.com" {
		t.Errorf("attendee lists were modified: %+v", attendee)
	}
	if organizer := evt.Organizer(); organizer.DelegatedFrom[0] != "mailto:p@example.com" {
		t.Errorf("organizer lists were modified: %+v", organizer)
	}
	rule = evt.RecurrenceRule()
	if rule.ByMonthDay[0] != 15 || rule.ByDay[0].N != 0 || rule.Until.AllDay || *rule.Wkst != time.Sunday {
		t.Errorf("rule was modified: %+v", rule)
	}
	if custom := evt.CustomProperties(); custom[0].Params[0].Value != "kept" {
		t.Errorf("custom property params were modified: %+v", custom)
	}
}

func TestConversionErrorMessage(t *testing.T) {
	_, err := convert(property.New("UID", "evt-11"), property.New("STATUS", "MAYBE"))
	msg := err.Error()
	for _, part := range []string{"FieldParseError", `field: "STATUS"`, `kind: "UnrecognizedEnumValue"`, `value: "MAYBE"`} {
		if !strings.Contains(msg, part) {
			t.Errorf("expected %q in %q", part, msg)
		}
	}
}

func TestOverride(t *testing.T) {
	evt, err := convert(
		property.New("UID", "evt-1"),
		property.New("RECURRENCE-ID", "20240115T090000Z"),
		property.New("DTSTART", "20240115T100000Z"),
		property.New("DURATION", "P1D"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if !evt.IsOverride() || evt.IsRecurring() {
		t.Errorf("expected a non-recurring override, got override=%v recurring=%v", evt.IsOverride(), evt.IsRecurring())
	}
	if id := evt.RecurrenceID(); id == nil || id.Format() != "20240115T090000Z" {
		t.Errorf("unexpected recurrence id %+v", id)
	}
	if end := evt.EffectiveEnd(); end == nil || end.Format() != "20240116T100000Z" {
		t.Errorf("unexpected effective end %+v", end)
	}
}
