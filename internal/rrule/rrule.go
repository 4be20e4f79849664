package rrule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Parse parses an RFC 5545 RRULE string anchored at dtstart.
// Occurrences are generated in dtstart's location.
func Parse(ruleStr string, dtstart time.Time) (*rrule.RRule, error) {
	ruleStr = strings.TrimPrefix(strings.TrimSpace(ruleStr), "RRULE:")

	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE: %w", err)
	}
	opt.Dtstart = dtstart
	return rrule.NewRRule(*opt)
}

// NextOccurrence returns the next occurrence strictly after the given time.
// Returns nil if there are no more occurrences.
func NextOccurrence(ruleStr string, dtstart time.Time, after time.Time) (*time.Time, error) {
	rule, err := Parse(ruleStr, dtstart)
	if err != nil {
		return nil, err
	}

	next := rule.After(after, false)
	if next.IsZero() {
		return nil, nil
	}
	return &next, nil
}

// Builder creates an RRULE string from components
type Builder struct {
	Freq     rrule.Frequency
	ByHour   []int
	ByMinute []int
	BySecond []int
}

const FreqDaily = rrule.DAILY

var freqNames = map[rrule.Frequency]string{
	rrule.HOURLY: "HOURLY",
	rrule.DAILY:  "DAILY",
	rrule.WEEKLY: "WEEKLY",
}

func (b *Builder) String() string {
	parts := []string{"FREQ=" + freqNames[b.Freq]}

	if len(b.ByHour) > 0 {
		parts = append(parts, "BYHOUR="+joinInts(b.ByHour))
	}
	if len(b.ByMinute) > 0 {
		parts = append(parts, "BYMINUTE="+joinInts(b.ByMinute))
	}
	if len(b.BySecond) > 0 {
		parts = append(parts, "BYSECOND="+joinInts(b.BySecond))
	}
	return strings.Join(parts, ";")
}

// DailyAt returns the rule firing every day at hour:minute
func DailyAt(hour, minute int) string {
	b := Builder{
		Freq:     FreqDaily,
		ByHour:   []int{hour},
		ByMinute: []int{minute},
		BySecond: []int{0},
	}
	return b.String()
}

// Schedule adapts an RRULE to the cron.Schedule interface
type Schedule struct {
	rule *rrule.RRule
	spec string
}

// NewSchedule anchors ruleStr at the start of the current day in loc
func NewSchedule(ruleStr string, now time.Time, loc *time.Location) (*Schedule, error) {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	dtstart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	rule, err := Parse(ruleStr, dtstart)
	if err != nil {
		return nil, err
	}
	return &Schedule{rule: rule, spec: ruleStr}, nil
}

// Next returns the first occurrence after t, or the zero time when the rule
// is exhausted, which cron treats as "never".
func (s *Schedule) Next(t time.Time) time.Time {
	return s.rule.After(t, false)
}

func (s *Schedule) String() string {
	return s.spec
}

// Describe returns a short Russian description of a rule, e.g. "ежедневно в 10:00"
func Describe(ruleStr string) string {
	info := make(map[string]string)
	for _, p := range strings.Split(strings.TrimPrefix(ruleStr, "RRULE:"), ";") {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) == 2 {
			info[kv[0]] = kv[1]
		}
	}

	var result strings.Builder
	interval := info["INTERVAL"]
	every := interval == "" || interval == "1"
	switch info["FREQ"] {
	case "HOURLY":
		if every {
			result.WriteString("ежечасно")
		} else {
			result.WriteString(fmt.Sprintf("каждые %s ч", interval))
		}
	case "DAILY":
		if every {
			result.WriteString("ежедневно")
		} else {
			result.WriteString(fmt.Sprintf("каждые %s дн.", interval))
		}
	case "WEEKLY":
		result.WriteString("еженедельно")
	}

	if byDay := info["BYDAY"]; byDay != "" {
		names := map[string]string{
			"MO": "пн", "TU": "вт", "WE": "ср", "TH": "чт",
			"FR": "пт", "SA": "сб", "SU": "вс",
		}
		var days []string
		for _, d := range strings.Split(byDay, ",") {
			if n, ok := names[d]; ok {
				days = append(days, n)
			}
		}
		if len(days) > 0 {
			result.WriteString(" (" + strings.Join(days, ", ") + ")")
		}
	}

	if hours := info["BYHOUR"]; hours != "" && !strings.Contains(hours, ",") {
		minute := info["BYMINUTE"]
		if minute == "" || strings.Contains(minute, ",") {
			minute = "0"
		}
		var h, m int
		fmt.Sscanf(hours, "%d", &h)
		fmt.Sscanf(minute, "%d", &m)
		result.WriteString(fmt.Sprintf(" в %02d:%02d", h, m))
	}

	if result.Len() == 0 {
		return ruleStr
	}
	return strings.TrimSpace(result.String())
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ",")
}
