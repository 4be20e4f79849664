// Package reminder decides which assignments get a proactive reminder.
//
// A reminder goes out when an assignment is due exactly one week or exactly
// one day after today, compared as calendar dates in the course location.
package reminder

import (
	"strings"
	"time"

	"github.com/hray3182/coursebot/internal/format"
	"github.com/hray3182/coursebot/internal/models"
)

type Window string

const (
	WeekBefore Window = "week"
	DayBefore  Window = "day"
)

var windowDays = map[Window]int{
	WeekBefore: 7,
	DayBefore:  1,
}

var windowLabels = map[Window]string{
	WeekBefore: "за неделю",
	DayBefore:  "за день",
}

// Message is one outgoing reminder
type Message struct {
	Window      Window
	Text        string
	Assignments []models.Assignment
}

// Plan holds the assignments matching each window for a given day
type Plan struct {
	Today time.Time
	Week  []models.Assignment
	Day   []models.Assignment
}

// Build partitions assignments into the week and day buckets for now.
// loc defines calendar days; nil means now's own location.
func Build(now time.Time, assignments []models.Assignment, loc *time.Location) Plan {
	if loc == nil {
		loc = now.Location()
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	plan := Plan{Today: today}
	weekTarget := today.AddDate(0, 0, windowDays[WeekBefore])
	dayTarget := today.AddDate(0, 0, windowDays[DayBefore])

	for _, a := range assignments {
		due := a.Due.In(loc)
		if sameDate(due, weekTarget) {
			plan.Week = append(plan.Week, a)
		}
		if sameDate(due, dayTarget) {
			plan.Day = append(plan.Day, a)
		}
	}
	return plan
}

// Empty returns true if nothing is due in either window
func (p Plan) Empty() bool {
	return len(p.Week) == 0 && len(p.Day) == 0
}

// Messages returns the reminders to send, week first. Empty buckets produce
// no message.
func (p Plan) Messages() []Message {
	var msgs []Message
	if len(p.Week) > 0 {
		msgs = append(msgs, newMessage(WeekBefore, p.Week))
	}
	if len(p.Day) > 0 {
		msgs = append(msgs, newMessage(DayBefore, p.Day))
	}
	return msgs
}

func newMessage(w Window, items []models.Assignment) Message {
	lines := []string{"🔔 Напоминание <b>" + windowLabels[w] + "</b> до дедлайна:"}
	for i := range items {
		lines = append(lines, format.Bullet(&items[i]))
	}
	return Message{Window: w, Text: strings.Join(lines, "\n"), Assignments: items}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
