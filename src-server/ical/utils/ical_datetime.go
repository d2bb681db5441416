package utils

import (
	"regexp"
	"strings"
	"time"
	"typedcal/src-server/ical/property"

	"github.com/olebedev/when"
)

var (
	datePattern       = regexp.MustCompile(`^\d{8}$`)
	localTimePattern  = regexp.MustCompile(`^\d{8}T\d{6}$`)
	UTCTimePattern    = regexp.MustCompile(`^\d{8}T\d{6}Z$`)
	offsetTimePattern = regexp.MustCompile(`^\d{8}T\d{6}[+-]\d{4}$`)

	// layouts tried before natural language when lenient parsing is on
	lenientLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

const (
	dateLayout      = "20060102"
	localTimeLayout = "20060102T150405"
	utcTimeLayout   = "20060102T150405Z"
	offsetLayout    = "20060102T150405-0700"
)

// How the wall clock of a DateTime is anchored.
type Zone int

const (
	// no marker, interpreted in DateOptions.Location
	ZoneFloating Zone = iota
	// trailing `Z`
	ZoneUTC
	// trailing `+hhmm` / `-hhmm`
	ZoneOffset
	// TZID parameter
	ZoneTZID
)

func (z Zone) String() string {
	switch z {
	case ZoneUTC:
		return "utc"
	case ZoneOffset:
		return "offset"
	case ZoneTZID:
		return "tzid"
	default:
		return "floating"
	}
}

// A DATE or DATE-TIME value.
type DateTime struct {
	Time   time.Time
	AllDay bool
	Zone   Zone
	// only set when Zone is ZoneTZID
	TZID string
}

// Settings shared by every date-time parse of one conversion.
type DateOptions struct {
	// Location for floating times and all-day dates, defaults to time.Local
	Location *time.Location
	// When non-nil, values that are not iCalendar literals are retried as
	// ISO-8601 layouts and then as natural language.
	When *when.Parser
	// Reference time for relative natural-language values, defaults to now
	Base time.Time
}

func (o DateOptions) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// Parsing DATE and DATE-TIME values. For example:
//   - 20240115 (all-day)
//   - 20240115T090000 (floating, or local to the TZID parameter)
//   - 20240115T090000Z (UTC)
//   - 20240115T090000+0200 (explicit offset)
//
// A VALUE parameter, when present, must agree with the literal.
func ParseDateTime(value string, params property.Params, opts DateOptions) (DateTime, error) {
	raw := value
	value = strings.TrimSpace(value)

	valueType := ""
	if v, ok := params.Get("VALUE"); ok {
		valueType = strings.ToUpper(strings.TrimSpace(v))
	}
	switch valueType {
	case "", "DATE", "DATE-TIME":
	default:
		return DateTime{}, NewParseError(KindInvalidDateTime, raw, "unsupported VALUE=%s", valueType)
	}

	switch {
	case datePattern.MatchString(value):
		if valueType == "DATE-TIME" {
			return DateTime{}, NewParseError(KindInvalidDateTime, raw, "VALUE=DATE-TIME given a date")
		}
		t, err := time.ParseInLocation(dateLayout, value, opts.location())
		if err != nil {
			return DateTime{}, NewParseError(KindInvalidDateTime, raw, "%s", err)
		}
		return DateTime{Time: t, AllDay: true, Zone: ZoneFloating}, nil
	case valueType == "DATE":
		return DateTime{}, NewParseError(KindInvalidDateTime, raw, "VALUE=DATE requires YYYYMMDD")
	case UTCTimePattern.MatchString(value):
		t, err := time.Parse(utcTimeLayout, value)
		if err != nil {
			return DateTime{}, NewParseError(KindInvalidDateTime, raw, "%s", err)
		}
		return DateTime{Time: t, Zone: ZoneUTC}, nil
	case offsetTimePattern.MatchString(value):
		t, err := time.Parse(offsetLayout, value)
		if err != nil {
			return DateTime{}, NewParseError(KindInvalidDateTime, raw, "%s", err)
		}
		return DateTime{Time: t, Zone: ZoneOffset}, nil
	case localTimePattern.MatchString(value):
		tzid, _ := params.Get("TZID")
		tzid = strings.TrimPrefix(strings.Trim(strings.TrimSpace(tzid), `"`), "/")
		if tzid == "" {
			t, err := time.ParseInLocation(localTimeLayout, value, opts.location())
			if err != nil {
				return DateTime{}, NewParseError(KindInvalidDateTime, raw, "%s", err)
			}
			return DateTime{Time: t, Zone: ZoneFloating}, nil
		}
		location, err := time.LoadLocation(tzid)
		if err != nil {
			return DateTime{}, NewParseError(KindInvalidDateTime, raw, "invalid TZID %q: %s", tzid, err)
		}
		t, err := time.ParseInLocation(localTimeLayout, value, location)
		if err != nil {
			return DateTime{}, NewParseError(KindInvalidDateTime, raw, "%s", err)
		}
		return DateTime{Time: t, Zone: ZoneTZID, TZID: tzid}, nil
	}

	if opts.When != nil && valueType == "" {
		if dt, ok := parseLenient(value, opts); ok {
			return dt, nil
		}
	}
	return DateTime{}, NewParseError(KindInvalidDateTime, raw, "invalid date-time format")
}

func parseLenient(value string, opts DateOptions) (DateTime, bool) {
	for _, layout := range lenientLayouts {
		t, err := time.ParseInLocation(layout, value, opts.location())
		if err != nil {
			continue
		}
		switch layout {
		case "2006-01-02":
			return DateTime{Time: t, AllDay: true, Zone: ZoneFloating}, true
		case time.RFC3339:
			if t.Location() == time.UTC {
				return DateTime{Time: t, Zone: ZoneUTC}, true
			}
			return DateTime{Time: t, Zone: ZoneOffset}, true
		default:
			return DateTime{Time: t, Zone: ZoneFloating}, true
		}
	}

	base := opts.Base
	if base.IsZero() {
		base = time.Now()
	}
	result, err := opts.When.Parse(value, base.In(opts.location()))
	if err != nil || result == nil {
		return DateTime{}, false
	}
	return DateTime{Time: result.Time, Zone: ZoneFloating}, true
}

// Parsing comma-separated DATE / DATE-TIME lists as used by RDATE and EXDATE.
// Every element shares the parameters of the property.
func ParseDateTimeList(value string, params property.Params, opts DateOptions) ([]DateTime, error) {
	var result []DateTime
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		dt, err := ParseDateTime(part, params, opts)
		if err != nil {
			return nil, err
		}
		result = append(result, dt)
	}
	if len(result) == 0 {
		return nil, NewParseError(KindInvalidDateTime, value, "empty date-time list")
	}
	return result, nil
}

// Convert the value back into its iCalendar literal: YYYYMMDD,
// YYYYMMDDTHHMMSS, YYYYMMDDTHHMMSSZ or YYYYMMDDTHHMMSS±hhmm
func (d DateTime) Format() string {
	switch {
	case d.AllDay:
		return d.Time.Format(dateLayout)
	case d.Zone == ZoneUTC:
		return d.Time.UTC().Format(utcTimeLayout)
	case d.Zone == ZoneOffset:
		return d.Time.Format(offsetLayout)
	default:
		return d.Time.Format(localTimeLayout)
	}
}

// Check whether d is strictly earlier than other
func (d DateTime) Before(other DateTime) bool {
	return d.Time.Before(other.Time)
}

// Check whether both values denote the same instant with the same anchoring
func (d DateTime) Equal(other DateTime) bool {
	return d.Time.Equal(other.Time) &&
		d.AllDay == other.AllDay &&
		d.Zone == other.Zone &&
		d.TZID == other.TZID
}
