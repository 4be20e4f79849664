package sheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Canonical names the three logical sheets of a course workbook
type Canonical string

const (
	Assessment  Canonical = "Оценивание"
	Assignments Canonical = "Задания"
	Info        Canonical = "Инфо"
)

var aliases = map[Canonical][]string{
	Assessment:  {"Оценивание", "Assessment", "Оценка", "Оценки"},
	Assignments: {"Задания", "Assignments", "Дедлайны"},
	Info:        {"Инфо", "Info", "Информация"},
}

// Aliases returns the accepted sheet names for a canonical sheet
func Aliases(c Canonical) []string {
	return append([]string(nil), aliases[c]...)
}

var ErrSheetNotFound = errors.New("sheet not found")

// SheetNotFoundError names the canonical sheet missing from a workbook
type SheetNotFoundError struct {
	Sheet Canonical
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("лист %q не найден", string(e.Sheet))
}

func (e *SheetNotFoundError) Unwrap() error {
	return ErrSheetNotFound
}

// builtin number formats that render dates or times
var dateNumFmts = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true,
	20: true, 21: true, 22: true, 45: true, 46: true, 47: true,
}

// Workbook reads course sheets from an .xlsx/.xlsm document
type Workbook struct {
	f        *excelize.File
	date1904 bool
}

func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return newWorkbook(f), nil
}

func newWorkbook(f *excelize.File) *Workbook {
	w := &Workbook{f: f}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		w.date1904 = *props.Date1904
	}
	return w
}

func (w *Workbook) Close() error {
	return w.f.Close()
}

// Find returns the first sheet, in workbook order, matching an alias of c
func (w *Workbook) Find(c Canonical) (string, error) {
	accepted := aliases[c]
	for _, name := range w.f.GetSheetList() {
		for _, a := range accepted {
			if name == a {
				return name, nil
			}
		}
	}
	return "", &SheetNotFoundError{Sheet: c}
}

// Read locates canonical sheet c and returns its data rows, width cells each
func (w *Workbook) Read(c Canonical, width int) (string, []Row, error) {
	name, err := w.Find(c)
	if err != nil {
		return "", nil, err
	}
	rows, err := w.Rows(name, width)
	if err != nil {
		return name, nil, err
	}
	return name, rows, nil
}

// Rows returns the rows of a sheet below the header. Rows whose first width
// cells are empty are dropped.
func (w *Workbook) Rows(sheet string, width int) ([]Row, error) {
	raw, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	var rows []Row
	for i, values := range raw {
		if i == 0 {
			continue
		}
		row := Row{Number: i + 1, Cells: make([]Cell, width)}
		for col := 0; col < width && col < len(values); col++ {
			axis, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return nil, err
			}
			row.Cells[col] = w.cell(sheet, axis, values[col])
		}
		if row.Blank(width) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (w *Workbook) cell(sheet, axis, raw string) Cell {
	if raw == "" {
		return Cell{}
	}

	typ, err := w.f.GetCellType(sheet, axis)
	if err != nil {
		return TextCell(raw)
	}

	switch typ {
	case excelize.CellTypeBool:
		return BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return TimeCell(t)
		}
		return TextCell(raw)
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return TextCell(raw)
	}

	// Plain numbers, and formulas with a cached result
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return TextCell(raw)
	}
	if w.isDateFormatted(sheet, axis) {
		if t, err := excelize.ExcelDateToTime(v, w.date1904); err == nil {
			return TimeCell(t)
		}
	}
	return NumberCell(v).withDate1904(w.date1904)
}

func (w *Workbook) isDateFormatted(sheet, axis string) bool {
	idx, err := w.f.GetCellStyle(sheet, axis)
	if err != nil || idx == 0 {
		return false
	}
	style, err := w.f.GetStyle(idx)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateLayout(*style.CustomNumFmt)
	}
	return dateNumFmts[style.NumFmt]
}

// isDateLayout reports whether a custom number format renders a date,
// ignoring quoted literals and bracketed sections such as colors.
func isDateLayout(layout string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range layout {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	s := strings.ToLower(b.String())
	return strings.ContainsAny(s, "dy")
}

func parseISODate(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
