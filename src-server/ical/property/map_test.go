package property_test

import (
	"reflect"
	"strings"
	"sync"
	"testing"
	"typedcal/src-server/ical/property"
)

func TestExtract(t *testing.T) {
	m := property.Extract([]property.RawProperty{
		property.New("uid", "evt-1"),
		property.New("ATTENDEE", "mailto:a@example.com", "CN", "A"),
		property.New("Attendee", "mailto:b@example.com"),
		property.New("X-COLOR", "#fff"),
		property.New("SUMMARY", "first"),
		property.New("summary", "second"),
	})

	if m.Len() != 6 {
		t.Errorf("expected 6 properties, got %d", m.Len())
	}

	// case: names are case-folded and kept in order of first appearance
	if want := []string{"UID", "ATTENDEE", "X-COLOR", "SUMMARY"}; !reflect.DeepEqual(m.Names(), want) {
		t.Errorf("expected names %v, got %v", want, m.Names())
	}

	// case: repeated names keep multiplicity and order
	attendees := m.All("attendee")
	if len(attendees) != 2 {
		t.Fatalf("expected 2 attendees, got %d", len(attendees))
	}
	if attendees[0].Value != "mailto:a@example.com" || attendees[1].Value != "mailto:b@example.com" {
		t.Errorf("attendee order not preserved: %v", attendees)
	}
	if cn, ok := attendees[0].Params.Get("cn"); !ok || cn != "A" {
		t.Errorf("expected CN=A, got %q (%v)", cn, ok)
	}

	// case: First returns the first duplicate
	summary, ok := m.First("Summary")
	if !ok || summary.Value != "first" {
		t.Errorf("expected first summary, got %q", summary.Value)
	}

	// case: unknown names are retained
	if !m.Has("x-color") {
		t.Error("unknown property was dropped")
	}

	// case: missing names
	if _, ok := m.First("DTSTART"); ok {
		t.Error("DTSTART should be absent")
	}
	if m.All("DTSTART") != nil {
		t.Error("expected nil slice for absent property")
	}
}

func TestParams(t *testing.T) {
	params := property.New("ATTENDEE", "mailto:x@example.com",
		"DELEGATED-TO", "mailto:a@example.com",
		"cn", "X",
		"Delegated-To", "mailto:b@example.com",
		"dangling",
	).Params

	if len(params) != 3 {
		t.Fatalf("expected 3 params, got %d", len(params))
	}
	if got := params.All("delegated-to"); !reflect.DeepEqual(got, []string{"mailto:a@example.com", "mailto:b@example.com"}) {
		t.Errorf("unexpected DELEGATED-TO values: %v", got)
	}
	if _, ok := params.Get("TZID"); ok {
		t.Error("TZID should be absent")
	}
}

func TestCanonical(t *testing.T) {
	for in, want := range map[string]string{
		"dtstart":          "DTSTART",
		" Last-Modified ":  "LAST-MODIFIED",
		"x-apple-location": "X-APPLE-LOCATION",
	} {
		if got := property.Canonical(in); got != want {
			t.Errorf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalConcurrent(t *testing.T) {
	names := []string{"dtstart", "x-wr-calname", "Last-Modified", "rrule", "x-alt-desc"}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				name := names[i%len(names)]
				if got, want := property.Canonical(name), strings.ToUpper(name); got != want {
					t.Errorf("Canonical(%q) = %q, want %q", name, got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}
