package course

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hray3182/coursebot/internal/models"
	"github.com/hray3182/coursebot/internal/sheet"
	"github.com/hray3182/coursebot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T) string {
	t.Helper()
	return testutil.WriteCourse(t, t.TempDir(), "course.xlsx", testutil.Course{
		Weights: [][]interface{}{
			{"Exam", 0.6},
			{"HW", 0.4},
		},
		Assignments: [][]interface{}{
			{"HW2", "20.03.2025", "https://example.com/hw2"},
			{"HW1", 45726.0},
			{"Essay", "soon"},
		},
		Info: [][]interface{}{
			{"Преподаватель", "@ivanov"},
			{"Материалы", "example.com/materials"},
		},
	})
}

func TestLoadSummary(t *testing.T) {
	summary, err := LoadSummary(writeSample(t), msk)
	require.NoError(t, err)

	assert.Equal(t, models.CourseWeights{{Label: "Exam", Value: 0.6}, {Label: "HW", Value: 0.4}}, summary.Weights.Weights)

	require.Len(t, summary.Assignments.Assignments, 2)
	assert.Equal(t, "HW1", summary.Assignments.Assignments[0].Title)
	assert.True(t, summary.Assignments.Assignments[0].Due.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, msk)))
	assert.Equal(t, "HW2", summary.Assignments.Assignments[1].Title)
	require.Len(t, summary.Assignments.Skipped, 1)
	assert.Equal(t, 4, summary.Assignments.Skipped[0].Row)
}

func TestLoadInfo(t *testing.T) {
	res, err := LoadInfo(writeSample(t), msk)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Преподаватель", res.Items[0].Label)
	assert.True(t, res.Items[0].IsIdentity())
	assert.Equal(t, "example.com/materials", res.Items[1].Value)
}

func TestDocumentSheet(t *testing.T) {
	path := testutil.WriteWorkbook(t, t.TempDir(), "course.xlsx",
		testutil.Sheet{Name: "Assessment"},
		testutil.Sheet{Name: "Задания"},
	)
	doc, err := Open(path, msk)
	require.NoError(t, err)
	defer doc.Close()

	name, err := doc.Sheet(sheet.Assessment)
	require.NoError(t, err)
	assert.Equal(t, "Assessment", name)

	_, err = doc.Sheet(sheet.Info)
	assert.ErrorIs(t, err, sheet.ErrSheetNotFound)
}

func TestLoadSummaryMissingSheet(t *testing.T) {
	path := testutil.WriteWorkbook(t, t.TempDir(), "course.xlsx",
		testutil.Sheet{Name: "Оценивание", Rows: [][]interface{}{{"Компонент", "Вес"}, {"Exam", 1.0}}},
	)

	_, err := LoadSummary(path, msk)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sheet.ErrSheetNotFound))
	assert.Equal(t, `лист "Задания" не найден`, err.Error())
}

func TestLoadAssignmentsMissingFile(t *testing.T) {
	_, err := LoadAssignments(filepath.Join(t.TempDir(), "nope.xlsx"), msk)
	assert.Error(t, err)
}
