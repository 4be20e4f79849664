package course

import (
	"time"

	"github.com/hray3182/coursebot/internal/sheet"
)

// Document is an opened course workbook. Every call re-reads the sheet.
type Document struct {
	wb  *sheet.Workbook
	loc *time.Location
}

// Open opens the workbook at path. Due dates are read in loc.
func Open(path string, loc *time.Location) (*Document, error) {
	wb, err := sheet.Open(path)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	return &Document{wb: wb, loc: loc}, nil
}

func (d *Document) Close() error {
	return d.wb.Close()
}

// Sheet returns the workbook sheet that serves as canonical sheet c
func (d *Document) Sheet(c sheet.Canonical) (string, error) {
	return d.wb.Find(c)
}

func (d *Document) Weights() (WeightsResult, error) {
	name, rows, err := d.wb.Read(sheet.Assessment, weightsWidth)
	if err != nil {
		return WeightsResult{}, err
	}
	return ExtractWeights(name, rows), nil
}

func (d *Document) Assignments() (AssignmentsResult, error) {
	name, rows, err := d.wb.Read(sheet.Assignments, assignmentsWidth)
	if err != nil {
		return AssignmentsResult{}, err
	}
	return ExtractAssignments(name, rows, d.loc), nil
}

func (d *Document) Info() (InfoResult, error) {
	name, rows, err := d.wb.Read(sheet.Info, infoWidth)
	if err != nil {
		return InfoResult{}, err
	}
	return ExtractInfo(name, rows), nil
}

// Summary holds the parts of a workbook needed for the help digest and reminders
type Summary struct {
	Weights     WeightsResult
	Assignments AssignmentsResult
}

// LoadSummary reads grading weights and assignments from path. It is also
// how an uploaded workbook is validated.
func LoadSummary(path string, loc *time.Location) (*Summary, error) {
	doc, err := Open(path, loc)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	weights, err := doc.Weights()
	if err != nil {
		return nil, err
	}
	assignments, err := doc.Assignments()
	if err != nil {
		return nil, err
	}
	return &Summary{Weights: weights, Assignments: assignments}, nil
}

// LoadAssignments reads only the assignments sheet, as a reminder tick does
func LoadAssignments(path string, loc *time.Location) (AssignmentsResult, error) {
	doc, err := Open(path, loc)
	if err != nil {
		return AssignmentsResult{}, err
	}
	defer doc.Close()
	return doc.Assignments()
}

// LoadInfo reads only the info sheet
func LoadInfo(path string, loc *time.Location) (InfoResult, error) {
	doc, err := Open(path, loc)
	if err != nil {
		return InfoResult{}, err
	}
	defer doc.Close()
	return doc.Info()
}
