package sheet

import (
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// Kind is the value type of a cell after reading
type Kind int

const (
	Empty Kind = iota
	Number
	Text
	Time
	Bool
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Text:
		return "text"
	case Time:
		return "time"
	case Bool:
		return "bool"
	default:
		return "empty"
	}
}

// Cell is a typed spreadsheet value
type Cell struct {
	Kind Kind
	Num  float64
	Str  string
	Time time.Time
	Bool bool

	date1904 bool
}

func NumberCell(v float64) Cell { return Cell{Kind: Number, Num: v} }

func TextCell(s string) Cell { return Cell{Kind: Text, Str: s} }

func TimeCell(t time.Time) Cell { return Cell{Kind: Time, Time: t} }

func BoolCell(b bool) Cell { return Cell{Kind: Bool, Bool: b} }

func (c Cell) IsEmpty() bool { return c.Kind == Empty }

func (c Cell) withDate1904(b bool) Cell {
	c.date1904 = b
	return c
}

// String renders the cell the way a user would read it in the sheet
func (c Cell) String() string {
	switch c.Kind {
	case Number:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case Text:
		return c.Str
	case Time:
		return c.Time.Format("2006-01-02 15:04:05")
	case Bool:
		return strconv.FormatBool(c.Bool)
	default:
		return ""
	}
}

// SerialTime converts a numeric cell holding an Excel date serial.
// The result is a wall clock time in UTC.
func (c Cell) SerialTime() (time.Time, error) {
	return excelize.ExcelDateToTime(c.Num, c.date1904)
}

// Row is a data row. Number is the 1-based spreadsheet row.
type Row struct {
	Number int
	Cells  []Cell
}

// At returns the i-th cell or an empty one
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r.Cells) {
		return Cell{}
	}
	return r.Cells[i]
}

// Blank returns true if the first n cells are all empty
func (r Row) Blank(n int) bool {
	for i := 0; i < n; i++ {
		if !r.At(i).IsEmpty() {
			return false
		}
	}
	return true
}
