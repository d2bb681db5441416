package utils

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// the longest duration time.Duration can hold, in whole seconds
const maxDurationSeconds = int64(math.MaxInt64 / int64(time.Second))

var durationPattern = regexp.MustCompile(
	`^([+-])?P(?:(\d+)W|(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?)$`,
)

// seconds per weeks, days, hours, minutes, seconds
var unitSeconds = [5]int64{7 * 24 * 3600, 24 * 3600, 3600, 60, 1}

// A signed nominal duration as written in the DURATION property. Days and
// weeks are kept apart from the clock part since they are nominal, not
// 24-hour blocks, when applied across a DST change.
type Duration struct {
	Negative bool
	Weeks    int
	Days     int
	Hours    int
	Minutes  int
	Seconds  int
}

// Parsing DURATION values, e.g. `P2W`, `-P1DT2H`, `PT15M`.
//
// Weeks can't be combined with other units, at least one component is
// required and a `T` must be followed by at least one time component. The
// total must fit in a time.Duration.
func ParseDuration(value string) (Duration, error) {
	raw := value
	value = strings.ToUpper(strings.TrimSpace(value))

	match := durationPattern.FindStringSubmatch(value)
	if match == nil {
		return Duration{}, NewParseError(KindInvalidDuration, raw, "unrecognized duration grammar")
	}

	hasComponent := false
	for _, group := range match[2:] {
		if group != "" {
			hasComponent = true
		}
	}
	if !hasComponent {
		return Duration{}, NewParseError(KindInvalidDuration, raw, "duration has no components")
	}
	if strings.Contains(value, "T") && match[4] == "" && match[5] == "" && match[6] == "" {
		return Duration{}, NewParseError(KindInvalidDuration, raw, "time designator without time components")
	}

	numbers := make([]int, 5)
	var totalSeconds int64
	for i, group := range match[2:] {
		if group == "" {
			continue
		}
		n, err := strconv.ParseInt(group, 10, 64)
		if err != nil || n > maxDurationSeconds {
			return Duration{}, NewParseError(KindInvalidDuration, raw, "duration out of range")
		}
		numbers[i] = int(n)
		totalSeconds += n * unitSeconds[i]
		if totalSeconds > maxDurationSeconds {
			return Duration{}, NewParseError(KindInvalidDuration, raw, "duration out of range")
		}
	}

	return Duration{
		Negative: match[1] == "-",
		Weeks:    numbers[0],
		Days:     numbers[1],
		Hours:    numbers[2],
		Minutes:  numbers[3],
		Seconds:  numbers[4],
	}, nil
}

// Convert into an exact time.Duration, counting a day as 24 hours.
func (d Duration) Std() time.Duration {
	total := time.Duration(d.Weeks)*7*24*time.Hour +
		time.Duration(d.Days)*24*time.Hour +
		time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second
	if d.Negative {
		return -total
	}
	return total
}

// Add the duration to t, applying days and weeks on the calendar so the
// wall clock is kept across DST changes.
func (d Duration) AddTo(t time.Time) time.Time {
	sign := 1
	if d.Negative {
		sign = -1
	}
	t = t.AddDate(0, 0, sign*(d.Weeks*7+d.Days))
	clock := time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second
	return t.Add(time.Duration(sign) * clock)
}

// Convert back into the DURATION grammar.
func (d Duration) String() string {
	var sb strings.Builder
	if d.Negative {
		sb.WriteString("-")
	}
	sb.WriteString("P")
	if d.Weeks > 0 {
		sb.WriteString(fmt.Sprintf("%dW", d.Weeks))
		return sb.String()
	}
	if d.Days > 0 {
		sb.WriteString(fmt.Sprintf("%dD", d.Days))
	}
	if d.Hours > 0 || d.Minutes > 0 || d.Seconds > 0 {
		sb.WriteString("T")
		if d.Hours > 0 {
			sb.WriteString(fmt.Sprintf("%dH", d.Hours))
		}
		if d.Minutes > 0 {
			sb.WriteString(fmt.Sprintf("%dM", d.Minutes))
		}
		if d.Seconds > 0 {
			sb.WriteString(fmt.Sprintf("%dS", d.Seconds))
		}
	}
	if sb.Len() == 1 || (d.Negative && sb.Len() == 2) {
		sb.WriteString("T0S")
	}
	return sb.String()
}
