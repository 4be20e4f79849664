package course

import (
	"slices"
	"strings"
	"time"

	"github.com/hray3182/coursebot/internal/models"
	"github.com/hray3182/coursebot/internal/sheet"
)

// Column counts examined per sheet
const (
	weightsWidth     = 2
	assignmentsWidth = 3
	infoWidth        = 2
)

const dueLayout = "02.01.2006"

type WeightsResult struct {
	Weights models.CourseWeights
	Skipped []models.SkippedRow
}

type AssignmentsResult struct {
	Assignments []models.Assignment
	Skipped     []models.SkippedRow
}

type InfoResult struct {
	Items   []models.InfoItem
	Skipped []models.SkippedRow
}

// ExtractWeights reads label/weight pairs. A weight must be a numeric cell.
func ExtractWeights(sheetName string, rows []sheet.Row) WeightsResult {
	var res WeightsResult
	for _, row := range rows {
		label := strings.TrimSpace(row.At(0).String())
		weight := row.At(1)
		switch {
		case label == "":
			res.Skipped = append(res.Skipped, skip(sheetName, row, "empty label"))
		case weight.Kind != sheet.Number:
			res.Skipped = append(res.Skipped, skip(sheetName, row, "weight is not a number"))
		default:
			res.Weights.Set(label, weight.Num)
		}
	}
	return res
}

// ExtractAssignments reads title/due/link rows and sorts them by due date.
// Due dates are interpreted as wall clock time in loc.
func ExtractAssignments(sheetName string, rows []sheet.Row, loc *time.Location) AssignmentsResult {
	var res AssignmentsResult
	for _, row := range rows {
		title := strings.TrimSpace(row.At(0).String())
		if title == "" {
			res.Skipped = append(res.Skipped, skip(sheetName, row, "empty title"))
			continue
		}

		due, ok := parseDue(row.At(1), loc)
		if !ok {
			res.Skipped = append(res.Skipped, skip(sheetName, row, "unrecognized due date "+quote(row.At(1))))
			continue
		}

		res.Assignments = append(res.Assignments, models.Assignment{
			Title: title,
			Due:   due,
			Link:  strings.TrimSpace(row.At(2).String()),
		})
	}

	slices.SortStableFunc(res.Assignments, func(a, b models.Assignment) int {
		return a.Due.Compare(b.Due)
	})
	return res
}

// ExtractInfo reads label/value pairs keeping sheet order
func ExtractInfo(sheetName string, rows []sheet.Row) InfoResult {
	var res InfoResult
	for _, row := range rows {
		label := strings.TrimSpace(row.At(0).String())
		if label == "" {
			res.Skipped = append(res.Skipped, skip(sheetName, row, "empty label"))
			continue
		}
		res.Items = append(res.Items, models.InfoItem{
			Label: label,
			Value: strings.TrimSpace(row.At(1).String()),
		})
	}
	return res
}

// parseDue accepts a native date, an Excel serial or a DD.MM.YYYY string
func parseDue(c sheet.Cell, loc *time.Location) (time.Time, bool) {
	switch c.Kind {
	case sheet.Time:
		return inLocation(c.Time, loc), true
	case sheet.Number:
		t, err := c.SerialTime()
		if err != nil {
			return time.Time{}, false
		}
		return inLocation(t, loc), true
	case sheet.Text:
		t, err := time.ParseInLocation(dueLayout, strings.TrimSpace(c.Str), loc)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// inLocation keeps the wall clock of t and attaches loc
func inLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

func skip(sheetName string, row sheet.Row, reason string) models.SkippedRow {
	return models.SkippedRow{Sheet: sheetName, Row: row.Number, Reason: reason}
}

func quote(c sheet.Cell) string {
	if c.IsEmpty() {
		return "(empty)"
	}
	return "\"" + c.String() + "\""
}
