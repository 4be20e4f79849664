// Package testutil builds course workbooks for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet is a worksheet to write. Rows include the header; nil cells stay empty.
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WriteWorkbook saves sheets, in order, to dir/name and returns the path
func WriteWorkbook(t testing.TB, dir, name string, sheets ...Sheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatalf("new sheet %s: %v", s.Name, err)
		}

		for r, row := range s.Rows {
			for c, v := range row {
				if v == nil {
					continue
				}
				axis, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(s.Name, axis, v); err != nil {
					t.Fatalf("set %s!%s: %v", s.Name, axis, err)
				}
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// Course is the content of a standard three-sheet course workbook
type Course struct {
	Weights     [][]interface{}
	Assignments [][]interface{}
	Info        [][]interface{}
}

// WriteCourse writes a workbook with the Russian sheet names and headers
func WriteCourse(t testing.TB, dir, name string, c Course) string {
	t.Helper()
	return WriteWorkbook(t, dir, name,
		Sheet{Name: "Оценивание", Rows: withHeader([]interface{}{"Компонент", "Вес"}, c.Weights)},
		Sheet{Name: "Задания", Rows: withHeader([]interface{}{"Задание", "Дедлайн", "Ссылка"}, c.Assignments)},
		Sheet{Name: "Инфо", Rows: withHeader([]interface{}{"Поле", "Значение"}, c.Info)},
	)
}

func withHeader(header []interface{}, rows [][]interface{}) [][]interface{} {
	return append([][]interface{}{header}, rows...)
}
