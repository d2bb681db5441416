// Package `event` turns the properties of one VEVENT into an immutable,
// typed `Event`.
//
// Conversion happens in two steps, the same way for every caller:
// `UndecidedEvent` collects and parses the properties, then `Decide` runs the
// cross-field checks and hands back the `Event`. Example usage:
//
//	props := property.Extract([]property.RawProperty{
//	    property.New("UID", "evt-2"),
//	    property.New("SUMMARY", "Standup"),
//	    property.New("DTSTART", "20240101", "VALUE", "DATE"),
//	})
//	undecided := event.NewUndecidedEvent(event.Options{})
//	if err := undecided.AddProperties(props); err != nil {
//	    log.Fatal(err)
//	}
//	evt, err := undecided.Decide()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(evt.UID(), evt.Start().AllDay) // evt-2 true
//
// Every failure is a `*ConversionError`. Match its reason with `errors.Is`
// against `ErrMissingUID`, `ErrFieldParse` or `ErrInvalidTimeRange`, and the
// field-level cause with `errors.As` against `*utils.ParseError`.
package event
