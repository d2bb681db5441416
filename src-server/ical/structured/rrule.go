package structured

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"typedcal/src-server/ical/utils"

	"github.com/xyedo/rrule"
)

type Frequency string

var (
	FrequencySecondly Frequency = "SECONDLY"
	FrequencyMinutely Frequency = "MINUTELY"
	FrequencyHourly   Frequency = "HOURLY"
	FrequencyDaily    Frequency = "DAILY"
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyMonthly  Frequency = "MONTHLY"
	FrequencyYearly   Frequency = "YEARLY"
)

var weekdayCodes = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

var byDayPattern = regexp.MustCompile(`^([+-]?\d{1,2})?(SU|MO|TU|WE|TH|FR|SA)$`)

// One BYDAY entry, e.g. `-1FR` is the last Friday. N is 0 when the entry
// has no ordinal.
type WeekdayNum struct {
	N   int
	Day time.Weekday
}

// The structured form of an RRULE value. Only one of Count and Until is
// ever set.
type Rule struct {
	Freq     Frequency
	Interval int // 1 when not stated
	Count    int // 0 when not stated
	Until    *utils.DateTime

	ByDay      []WeekdayNum
	ByMonthDay []int
	ByMonth    []int
	ByYearDay  []int
	ByWeekNo   []int
	BySetPos   []int
	ByHour     []int
	ByMinute   []int
	BySecond   []int
	Wkst       *time.Weekday
}

// Parse an RRULE value such as `FREQ=WEEKLY;INTERVAL=2;COUNT=5`.
//
//   - FREQ is required.
//   - Unknown keys are ignored, a known key may appear only once.
//   - When both COUNT and UNTIL are given, UNTIL wins and COUNT is dropped.
func ParseRule(value string, opts utils.DateOptions) (*Rule, error) {
	rule := &Rule{Interval: 1}
	seen := make(map[string]struct{})
	invalid := func(format string, args ...any) (*Rule, error) {
		return nil, utils.NewParseError(utils.KindInvalidRecurrence, value, format, args...)
	}

	for _, part := range strings.Split(strings.TrimSpace(value), ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return invalid("expected key=value, got %s", part)
		}
		key := strings.ToUpper(strings.TrimSpace(kv[0]))
		val := strings.ToUpper(strings.TrimSpace(kv[1]))
		if _, ok := seen[key]; ok {
			return invalid("duplicate %s", key)
		}
		seen[key] = struct{}{}

		var err error
		switch key {
		case "FREQ":
			switch freq := Frequency(val); freq {
			case FrequencySecondly, FrequencyMinutely, FrequencyHourly, FrequencyDaily,
				FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
				rule.Freq = freq
			default:
				return invalid("invalid FREQ: %s", val)
			}
		case "INTERVAL":
			rule.Interval, err = strconv.Atoi(val)
			if err != nil || rule.Interval < 1 {
				return invalid("invalid INTERVAL: %s", val)
			}
		case "COUNT":
			rule.Count, err = strconv.Atoi(val)
			if err != nil || rule.Count < 1 {
				return invalid("invalid COUNT: %s", val)
			}
		case "UNTIL":
			until, err := utils.ParseDateTime(val, nil, opts)
			if err != nil {
				return invalid("invalid UNTIL: %s", val)
			}
			rule.Until = &until
		case "BYDAY":
			for _, item := range strings.Split(val, ",") {
				match := byDayPattern.FindStringSubmatch(strings.TrimSpace(item))
				if match == nil {
					return invalid("invalid BYDAY: %s", item)
				}
				wd := WeekdayNum{Day: weekdayCodes[match[2]]}
				if match[1] != "" {
					wd.N, _ = strconv.Atoi(match[1])
					if wd.N == 0 || wd.N < -53 || wd.N > 53 {
						return invalid("invalid BYDAY ordinal: %s", item)
					}
				}
				rule.ByDay = append(rule.ByDay, wd)
			}
		case "BYMONTHDAY":
			if rule.ByMonthDay, err = parseIntList(val, 1, 31, true); err != nil {
				return invalid("invalid BYMONTHDAY: %s", err)
			}
		case "BYMONTH":
			if rule.ByMonth, err = parseIntList(val, 1, 12, false); err != nil {
				return invalid("invalid BYMONTH: %s", err)
			}
		case "BYYEARDAY":
			if rule.ByYearDay, err = parseIntList(val, 1, 366, true); err != nil {
				return invalid("invalid BYYEARDAY: %s", err)
			}
		case "BYWEEKNO":
			if rule.ByWeekNo, err = parseIntList(val, 1, 53, true); err != nil {
				return invalid("invalid BYWEEKNO: %s", err)
			}
		case "BYSETPOS":
			if rule.BySetPos, err = parseIntList(val, 1, 366, true); err != nil {
				return invalid("invalid BYSETPOS: %s", err)
			}
		case "BYHOUR":
			if rule.ByHour, err = parseIntList(val, 0, 23, false); err != nil {
				return invalid("invalid BYHOUR: %s", err)
			}
		case "BYMINUTE":
			if rule.ByMinute, err = parseIntList(val, 0, 59, false); err != nil {
				return invalid("invalid BYMINUTE: %s", err)
			}
		case "BYSECOND":
			if rule.BySecond, err = parseIntList(val, 0, 60, false); err != nil {
				return invalid("invalid BYSECOND: %s", err)
			}
		case "WKST":
			day, ok := weekdayCodes[val]
			if !ok {
				return invalid("invalid WKST: %s", val)
			}
			rule.Wkst = &day
		default:
			slog.Debug("ignoring unknown RRULE key", "key", key, "value", val)
		}
	}

	if rule.Freq == "" {
		return invalid("FREQ is required")
	}
	if rule.Until != nil && rule.Count != 0 {
		slog.Debug("RRULE has both COUNT and UNTIL, keeping UNTIL", "rrule", value)
		rule.Count = 0
	}
	return rule, nil
}

// Parse a comma-separated integer list where every |n| lies in [min, max].
// Negative values are only allowed when signed is set.
func parseIntList(value string, min, max int, signed bool) ([]int, error) {
	var result []int
	for _, item := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(item))
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", item)
		}
		abs := n
		if n < 0 {
			if !signed {
				return nil, fmt.Errorf("%d must not be negative", n)
			}
			abs = -n
		}
		if abs < min || abs > max {
			return nil, fmt.Errorf("%d out of range", n)
		}
		result = append(result, n)
	}
	return result, nil
}

// Deep copy of the rule, nil stays nil.
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Until != nil {
		until := *r.Until
		clone.Until = &until
	}
	if r.Wkst != nil {
		wkst := *r.Wkst
		clone.Wkst = &wkst
	}
	clone.ByDay = slices.Clone(r.ByDay)
	clone.ByMonthDay = slices.Clone(r.ByMonthDay)
	clone.ByMonth = slices.Clone(r.ByMonth)
	clone.ByYearDay = slices.Clone(r.ByYearDay)
	clone.ByWeekNo = slices.Clone(r.ByWeekNo)
	clone.BySetPos = slices.Clone(r.BySetPos)
	clone.ByHour = slices.Clone(r.ByHour)
	clone.ByMinute = slices.Clone(r.ByMinute)
	clone.BySecond = slices.Clone(r.BySecond)
	return &clone
}

// Convert the rule back into its RRULE value.
func (r *Rule) String() string {
	parts := []string{"FREQ=" + string(r.Freq)}
	if r.Interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(r.Interval))
	}
	if r.Count > 0 {
		parts = append(parts, "COUNT="+strconv.Itoa(r.Count))
	}
	if r.Until != nil {
		parts = append(parts, "UNTIL="+r.Until.Format())
	}
	if len(r.ByDay) > 0 {
		days := make([]string, 0, len(r.ByDay))
		for _, wd := range r.ByDay {
			code := weekdayCode(wd.Day)
			if wd.N != 0 {
				code = strconv.Itoa(wd.N) + code
			}
			days = append(days, code)
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}
	for _, list := range []struct {
		key    string
		values []int
	}{
		{"BYMONTHDAY", r.ByMonthDay},
		{"BYMONTH", r.ByMonth},
		{"BYYEARDAY", r.ByYearDay},
		{"BYWEEKNO", r.ByWeekNo},
		{"BYSETPOS", r.BySetPos},
		{"BYHOUR", r.ByHour},
		{"BYMINUTE", r.ByMinute},
		{"BYSECOND", r.BySecond},
	} {
		if len(list.values) == 0 {
			continue
		}
		items := make([]string, 0, len(list.values))
		for _, n := range list.values {
			items = append(items, strconv.Itoa(n))
		}
		parts = append(parts, list.key+"="+strings.Join(items, ","))
	}
	if r.Wkst != nil {
		parts = append(parts, "WKST="+weekdayCode(*r.Wkst))
	}
	return strings.Join(parts, ";")
}

func weekdayCode(day time.Weekday) string {
	for code, d := range weekdayCodes {
		if d == day {
			return code
		}
	}
	return ""
}

var rruleFrequencies = map[Frequency]rrule.Frequency{
	FrequencyYearly:   rrule.YEARLY,
	FrequencyMonthly:  rrule.MONTHLY,
	FrequencyWeekly:   rrule.WEEKLY,
	FrequencyDaily:    rrule.DAILY,
	FrequencyHourly:   rrule.HOURLY,
	FrequencyMinutely: rrule.MINUTELY,
	FrequencySecondly: rrule.SECONDLY,
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// Build the option set understood by github.com/xyedo/rrule, anchored at
// dtstart. Expanding occurrences is left to the caller.
func (r *Rule) ROption(dtstart time.Time) rrule.ROption {
	option := rrule.ROption{
		Freq:       rruleFrequencies[r.Freq],
		Dtstart:    dtstart,
		Interval:   r.Interval,
		Count:      r.Count,
		Bymonthday: r.ByMonthDay,
		Bymonth:    r.ByMonth,
		Byyearday:  r.ByYearDay,
		Byweekno:   r.ByWeekNo,
		Bysetpos:   r.BySetPos,
		Byhour:     r.ByHour,
		Byminute:   r.ByMinute,
		Bysecond:   r.BySecond,
	}
	if r.Until != nil {
		option.Until = r.Until.Time
	}
	for _, wd := range r.ByDay {
		weekday := rruleWeekdays[wd.Day]
		if wd.N != 0 {
			weekday = weekday.Nth(wd.N)
		}
		option.Byweekday = append(option.Byweekday, weekday)
	}
	if r.Wkst != nil {
		option.Wkst = rruleWeekdays[*r.Wkst]
	}
	return option
}

// Hand the rule over to github.com/xyedo/rrule for expansion.
func (r *Rule) RRule(dtstart time.Time) (*rrule.RRule, error) {
	return rrule.NewRRule(r.ROption(dtstart))
}
