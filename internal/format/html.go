package format

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hray3182/coursebot/internal/models"
)

// DateLayout is how due dates are shown to users (DD.MM.YYYY)
const DateLayout = "02.01.2006"

const (
	// NearestLimit is the default number of deadlines in the help digest
	NearestLimit = 5
	// NearestHorizon is how far ahead the help digest looks
	NearestHorizon = 14 * 24 * time.Hour
)

const (
	MsgFormulaNotSet  = `Формула пока не задана. Загрузите Excel с листом "Оценивание".`
	MsgNoAssignments  = `Нет данных о дедлайнах. Загрузите Excel с листом "Задания".`
	MsgNoDeadlinesYet = `В ближайшие 2 недели дедлайнов нет.`
	MsgNoInfo         = `Нет данных на листе "Инфо".`
	MsgInfoGreeting   = `Привет! Ниже приведены ссылки на основные ресурсы курса 👇`
)

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Formula renders the grading formula, e.g. "Итог = Exam×0.6 + HW×0.4"
func Formula(weights models.CourseWeights) string {
	if len(weights) == 0 {
		return MsgFormulaNotSet
	}
	parts := make([]string, len(weights))
	for i, w := range weights {
		parts[i] = html.EscapeString(w.Label) + "×" + Weight(w.Value)
	}
	return "Итог = " + strings.Join(parts, " + ")
}

// Weight prints a weight with up to six significant digits and no trailing zeros
func Weight(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// Nearest lists up to limit assignments due between now and now+14 days.
// The list must already be sorted by due date.
func Nearest(assignments []models.Assignment, now time.Time, limit int) string {
	if len(assignments) == 0 {
		return MsgNoAssignments
	}
	horizon := now.Add(NearestHorizon)

	var lines []string
	for i := range assignments {
		a := &assignments[i]
		if a.Due.Before(now) || a.Due.After(horizon) {
			continue
		}
		if limit > 0 && len(lines) >= limit {
			break
		}
		lines = append(lines, Bullet(a))
	}

	if len(lines) == 0 {
		return MsgNoDeadlinesYet
	}
	return strings.Join(lines, "\n")
}

// Bullet renders one assignment line, linking the title when a link is set
func Bullet(a *models.Assignment) string {
	title := html.EscapeString(a.Title)
	date := a.Due.Format(DateLayout)
	if a.HasLink() {
		return fmt.Sprintf(`• <a href="%s">%s</a> — %s`, html.EscapeString(a.Link), title, date)
	}
	return fmt.Sprintf("• %s — %s", title, date)
}

// Help renders the reply to /help
func Help(weights models.CourseWeights, assignments []models.Assignment, now time.Time) string {
	return "<b>Формула оценки</b>\n" +
		Formula(weights) + "\n\n" +
		"<b>Ближайшие дедлайны</b>\n" +
		Nearest(assignments, now, NearestLimit)
}

// Info renders the info sheet: handles for people, links for everything else
func Info(items []models.InfoItem) string {
	if len(items) == 0 {
		return MsgNoInfo
	}

	lines := []string{MsgInfoGreeting}
	for i := range items {
		item := &items[i]
		label := html.EscapeString(item.Label)
		if item.IsIdentity() {
			lines = append(lines, fmt.Sprintf("• <b>%s</b>: %s", label, html.EscapeString(Handle(item.Value))))
			continue
		}
		lines = append(lines, fmt.Sprintf(`• <a href="%s">%s</a>`, html.EscapeString(URL(item.Value)), label))
	}
	return strings.Join(lines, "\n\n")
}

// Handle normalizes a Telegram username to exactly one leading @
func Handle(value string) string {
	name := strings.TrimSpace(strings.TrimLeft(value, "@"))
	if name == "" {
		return ""
	}
	return "@" + name
}

// URL prepends https:// when the value has no scheme
func URL(value string) string {
	link := strings.TrimSpace(value)
	if link != "" && !schemeRe.MatchString(link) {
		link = "https://" + link
	}
	return link
}
