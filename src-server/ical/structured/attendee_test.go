package structured_test

import (
	"errors"
	"reflect"
	"testing"
	"typedcal/src-server/ical/property"
	"typedcal/src-server/ical/structured"
	"typedcal/src-server/ical/utils"
)

func TestParseParticipant(t *testing.T) {
	p, err := structured.ParseParticipant("MAILTO:jane@example.com", property.New("ATTENDEE", "",
		"CN", `"Jane Doe"`,
		"ROLE", "chair",
		"PARTSTAT", "ACCEPTED",
		"RSVP", "TRUE",
		"CUTYPE", "INDIVIDUAL",
		"DELEGATED-TO", "mailto:a@example.com",
		"DELEGATED-TO", "mailto:b@example.com",
		"SENT-BY", "mailto:boss@example.com",
		"X-UNKNOWN", "kept out",
	).Params)
	if err != nil {
		t.Fatal(err)
	}

	want := structured.Participant{
		Scheme:      "mailto",
		Address:     "jane@example.com",
		Cn:          "Jane Doe",
		CuType:      structured.AttendeeCutypeIndividual,
		Role:        structured.AttendeeRoleChair,
		PartStat:    structured.AttendeePartStatAccepted,
		Rsvp:        true,
		DelegatedTo: []string{"mailto:a@example.com", "mailto:b@example.com"},
		SentBy:      "mailto:boss@example.com",
	}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("got %+v\nwant %+v", p, want)
	}
	if p.URI() != "mailto:jane@example.com" {
		t.Errorf("unexpected URI %q", p.URI())
	}
	if p.DisplayName() != "Jane Doe" {
		t.Errorf("unexpected display name %q", p.DisplayName())
	}
}

func TestParseParticipantWithoutParams(t *testing.T) {
	p, err := structured.ParseParticipant("bob@example.com", nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Scheme != "" || p.Address != "bob@example.com" || p.DisplayName() != "bob@example.com" {
		t.Errorf("unexpected participant %+v", p)
	}
	if p.Role != "" || p.PartStat != "" {
		t.Error("absent parameters must stay empty")
	}
}

func TestParseParticipantExtensions(t *testing.T) {
	p, err := structured.ParseParticipant("mailto:x@example.com", property.New("ATTENDEE", "",
		"ROLE", "X-OBSERVER",
		"PARTSTAT", "x-maybe",
	).Params)
	if err != nil {
		t.Fatal(err)
	}
	if p.Role != "X-OBSERVER" || p.PartStat != "X-MAYBE" {
		t.Errorf("unexpected extension values %+v", p)
	}
}

func TestParseParticipantInvalid(t *testing.T) {
	cases := []struct {
		name   string
		value  string
		params property.Params
	}{
		{"empty", "", nil},
		{"scheme only", "mailto:", nil},
		{"blank", "   ", nil},
		{"bad role", "mailto:a@example.com", property.New("X", "", "ROLE", "BOSS").Params},
		{"bad partstat", "mailto:a@example.com", property.New("X", "", "PARTSTAT", "MAYBE").Params},
		{"bad cutype", "mailto:a@example.com", property.New("X", "", "CUTYPE", "ROBOT").Params},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := structured.ParseParticipant(c.value, c.params)
			var parseErr *utils.ParseError
			if !errors.As(err, &parseErr) || parseErr.Kind != utils.KindInvalidParticipant {
				t.Errorf("expected %s, got %v", utils.KindInvalidParticipant, err)
			}
		})
	}
}
