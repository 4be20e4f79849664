package models

import "fmt"

// SkippedRow records a spreadsheet row dropped during extraction
type SkippedRow struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"` // 1-based, as shown in the spreadsheet
	Reason string `json:"reason"`
}

func (s SkippedRow) String() string {
	return fmt.Sprintf("%s!%d: %s", s.Sheet, s.Row, s.Reason)
}
