package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/coursebot/internal/course"
	"github.com/hray3182/coursebot/internal/format"
	"github.com/hray3182/coursebot/internal/models"
	"github.com/hray3182/coursebot/internal/session"
	"github.com/hray3182/coursebot/internal/storage"
	"github.com/hray3182/coursebot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	chatID   int64 = -1001
	operator int64 = 77
)

var (
	msk   = time.FixedZone("MSK", 3*3600)
	today = time.Date(2025, 3, 3, 12, 0, 0, 0, msk)
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) texts() []string {
	texts := make([]string, len(f.sent))
	for i, m := range f.sent {
		texts[i] = m.Text
	}
	return texts
}

func (f *fakeSender) last() tgbotapi.MessageConfig {
	return f.sent[len(f.sent)-1]
}

type fakeDownloader struct {
	data []byte
	err  error
}

func (f *fakeDownloader) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type fakeReminders struct {
	jobs map[int64]*models.ReminderJob
	mode models.ReminderMode
	err  error
}

func (f *fakeReminders) Schedule(chatID int64, path string) (*models.ReminderJob, error) {
	if f.err != nil {
		return nil, f.err
	}
	job := &models.ReminderJob{ChatID: chatID, Path: path, Mode: models.ReminderDaily, Schedule: "ежедневно в 10:00"}
	if f.mode == models.ReminderTest {
		job.Mode = models.ReminderTest
		job.Interval = 15 * time.Second
		job.Schedule = "@every 15s"
	}
	f.jobs[chatID] = job
	return job, nil
}

func (f *fakeReminders) Job(chatID int64) (*models.ReminderJob, bool) {
	j, ok := f.jobs[chatID]
	return j, ok
}

type fixture struct {
	h          *Handlers
	api        *fakeSender
	downloader *fakeDownloader
	files      *storage.ChatFiles
	sessions   *session.Store
	reminders  *fakeReminders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	files, err := storage.NewChatFiles(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		api:        &fakeSender{},
		downloader: &fakeDownloader{},
		files:      files,
		sessions:   session.New(time.Minute),
		reminders:  &fakeReminders{jobs: make(map[int64]*models.ReminderJob)},
	}
	f.h = New(f.api, f.downloader, files, f.sessions, f.reminders, zap.NewNop(), Options{
		OperatorID:   operator,
		Location:     msk,
		ReminderTime: "10:00",
		Now:          func() time.Time { return today },
	})
	return f
}

func sampleCourse() testutil.Course {
	return testutil.Course{
		Weights: [][]interface{}{{"Exam", 0.6}, {"HW", 0.4}},
		Assignments: [][]interface{}{
			{"HW1", "05.03.2025", "https://example.com/hw1"},
			{"Final", "30.06.2025"},
		},
		Info: [][]interface{}{
			{"Преподаватель", "ivanov"},
			{"Материалы", "example.com/materials"},
		},
	}
}

// store puts a workbook in place as if it had been uploaded earlier
func (f *fixture) store(t *testing.T, c testutil.Course) string {
	t.Helper()
	path := testutil.WriteCourse(t, t.TempDir(), "course.xlsx", c)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	saved, err := f.files.Save(chatID, bytes.NewReader(data))
	require.NoError(t, err)
	return saved
}

func (f *fixture) willDownload(t *testing.T, c testutil.Course) {
	t.Helper()
	path := testutil.WriteCourse(t, t.TempDir(), "course.xlsx", c)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	f.downloader.data = data
}

func command(name string, from int64) *tgbotapi.Message {
	text := "/" + name
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: from},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}
}

func document(name string, from int64) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: from},
		Document: &tgbotapi.Document{FileID: "file-1", FileName: name},
	}
}

func TestHelpWithoutWorkbook(t *testing.T) {
	f := newFixture(t)
	f.h.HandleCommand(context.Background(), command("help", 1))

	require.Len(t, f.api.sent, 1)
	assert.Equal(t, msgUploadForHelp, f.api.sent[0].Text)
}

func TestHelp(t *testing.T) {
	f := newFixture(t)
	path := f.store(t, sampleCourse())

	f.h.HandleCommand(context.Background(), command("start", 1))

	summary, err := course.LoadSummary(path, msk)
	require.NoError(t, err)
	want := format.Help(summary.Weights.Weights, summary.Assignments.Assignments, today)

	require.Len(t, f.api.sent, 1)
	msg := f.api.sent[0]
	assert.Equal(t, want, msg.Text)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "Итог = Exam×0.6 + HW×0.4")
	assert.Contains(t, msg.Text, "HW1</a> — 05.03.2025")
	assert.NotContains(t, msg.Text, "Final")
}

func TestHelpBrokenWorkbook(t *testing.T) {
	f := newFixture(t)
	_, err := f.files.Save(chatID, bytes.NewReader([]byte("not a zip")))
	require.NoError(t, err)

	f.h.HandleCommand(context.Background(), command("help", 1))
	require.Len(t, f.api.sent, 1)
	assert.Contains(t, f.api.sent[0].Text, "Не удалось прочитать файл")
}

func TestInfo(t *testing.T) {
	f := newFixture(t)
	f.h.HandleCommand(context.Background(), command("info", 1))
	assert.Equal(t, msgUploadForInfo, f.api.last().Text)

	f.store(t, sampleCourse())
	f.h.HandleCommand(context.Background(), command("info", 1))

	msg := f.api.last()
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, format.MsgInfoGreeting)
	assert.Contains(t, msg.Text, "• <b>Преподаватель</b>: @ivanov")
	assert.Contains(t, msg.Text, `• <a href="https://example.com/materials">Материалы</a>`)
}

func TestInfoMissingSheet(t *testing.T) {
	f := newFixture(t)
	path := testutil.WriteWorkbook(t, t.TempDir(), "course.xlsx",
		testutil.Sheet{Name: "Оценивание", Rows: [][]interface{}{{"Компонент", "Вес"}}},
	)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = f.files.Save(chatID, bytes.NewReader(data))
	require.NoError(t, err)

	f.h.HandleCommand(context.Background(), command("info", 1))
	assert.Contains(t, f.api.last().Text, `лист "Инфо" не найден`)
}

func TestUpdateRequiresOperator(t *testing.T) {
	f := newFixture(t)

	f.h.HandleCommand(context.Background(), command("update", 1))
	assert.Contains(t, f.api.last().Text, "У вас нет прав")
	assert.False(t, f.sessions.ExpectingUpdate(chatID))

	f.h.HandleCommand(context.Background(), command("update", operator))
	assert.Contains(t, f.api.last().Text, "Отправьте новый Excel-файл")
	assert.True(t, f.sessions.ExpectingUpdate(chatID))
}

func TestUpdateWithoutConfiguredOperator(t *testing.T) {
	f := newFixture(t)
	f.h.operatorID = 0

	f.h.HandleCommand(context.Background(), command("update", 0))
	assert.Contains(t, f.api.last().Text, "У вас нет прав")
}

func TestDocumentWrongExtension(t *testing.T) {
	f := newFixture(t)
	f.h.HandleDocument(context.Background(), document("notes.pdf", 1))

	assert.Equal(t, []string{"Пожалуйста, отправьте Excel-файл (.xlsx или .xlsm)."}, f.api.texts())
	assert.False(t, f.files.Exists(chatID))
}

func TestDocumentFirstUpload(t *testing.T) {
	f := newFixture(t)
	f.willDownload(t, sampleCourse())

	f.h.HandleDocument(context.Background(), document("Course.XLSX", 1))

	assert.Equal(t, []string{
		"Получаю файл...",
		"Файл сохранён для этого чата. Используйте /help для сводки.",
		"Ежедневные напоминания запланированы на 10:00.",
	}, f.api.texts())
	assert.True(t, f.files.Exists(chatID))

	job, ok := f.reminders.Job(chatID)
	require.True(t, ok)
	assert.Equal(t, f.files.Path(chatID), job.Path)
}

func TestDocumentUpdate(t *testing.T) {
	f := newFixture(t)
	f.store(t, sampleCourse())
	f.h.HandleCommand(context.Background(), command("update", operator))

	c := sampleCourse()
	c.Weights = [][]interface{}{{"Exam", 1.0}}
	f.willDownload(t, c)
	f.h.HandleDocument(context.Background(), document("new.xlsx", operator))

	texts := f.api.texts()
	assert.Contains(t, texts, "Обновляю информацию из нового файла...")
	assert.Contains(t, texts, "Информация успешно обновлена! Используйте /help для сводки.")
	assert.False(t, f.sessions.ExpectingUpdate(chatID))

	f.h.HandleCommand(context.Background(), command("help", 1))
	assert.Contains(t, f.api.last().Text, "Итог = Exam×1")
}

func TestDocumentValidationFailure(t *testing.T) {
	f := newFixture(t)
	f.sessions.ExpectUpdate(chatID)
	path := testutil.WriteWorkbook(t, t.TempDir(), "course.xlsx",
		testutil.Sheet{Name: "Оценивание", Rows: [][]interface{}{{"Компонент", "Вес"}, {"Exam", 1.0}}},
	)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	f.downloader.data = data

	f.h.HandleDocument(context.Background(), document("course.xlsx", operator))

	assert.Contains(t, f.api.last().Text, "Файл сохранён, но не удалось его прочитать полностью")
	assert.Contains(t, f.api.last().Text, `лист "Задания" не найден`)
	assert.True(t, f.files.Exists(chatID))
	assert.True(t, f.sessions.ExpectingUpdate(chatID), "flag stays armed until a valid upload")
	assert.Empty(t, f.reminders.jobs)
}

func TestDocumentDownloadFailure(t *testing.T) {
	f := newFixture(t)
	f.downloader.err = errors.New("timeout")

	f.h.HandleDocument(context.Background(), document("course.xlsx", 1))

	assert.Equal(t, "Не удалось получить файл: timeout", f.api.last().Text)
	assert.False(t, f.files.Exists(chatID))
}

func TestDocumentScheduleFailure(t *testing.T) {
	f := newFixture(t)
	f.reminders.err = errors.New("bad rule")
	f.willDownload(t, sampleCourse())

	f.h.HandleDocument(context.Background(), document("course.xlsx", 1))

	assert.Equal(t, "Не удалось запланировать напоминания: bad rule", f.api.last().Text)
}

func TestDocumentTestMode(t *testing.T) {
	f := newFixture(t)
	f.reminders.mode = models.ReminderTest
	f.willDownload(t, sampleCourse())

	f.h.HandleDocument(context.Background(), document("course.xlsm", 1))

	assert.Equal(t, "Тестовые напоминания активированы (каждые 15 секунд).", f.api.last().Text)
}

func TestDocumentCustomRule(t *testing.T) {
	f := newFixture(t)
	f.h.reminderTime = ""
	f.willDownload(t, sampleCourse())

	f.h.HandleDocument(context.Background(), document("course.xlsx", 1))

	assert.Equal(t, "Напоминания запланированы: ежедневно в 10:00.", f.api.last().Text)
}

func TestReminders(t *testing.T) {
	f := newFixture(t)
	f.h.HandleCommand(context.Background(), command("reminders", 1))
	assert.Contains(t, f.api.last().Text, "не запланированы")

	next := time.Date(2025, 3, 4, 7, 0, 0, 0, time.UTC)
	f.reminders.jobs[chatID] = &models.ReminderJob{
		ChatID:   chatID,
		Mode:     models.ReminderDaily,
		Schedule: "ежедневно в 10:00",
		NextRun:  &next,
	}
	f.h.HandleCommand(context.Background(), command("reminders", 1))

	text := f.api.last().Text
	assert.Contains(t, text, "Расписание: ежедневно в 10:00")
	assert.Contains(t, text, "Следующая проверка: 04.03.2025 10:00")
	assert.NotContains(t, text, "Последняя проверка")
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t)
	f.h.HandleCommand(context.Background(), command("grades", 1))
	assert.Equal(t, "Неизвестная команда. Используйте /help для сводки по курсу.", f.api.last().Text)
}

func TestIsExcel(t *testing.T) {
	assert.True(t, IsExcel("a.xlsx"))
	assert.True(t, IsExcel("A.XLSM"))
	assert.False(t, IsExcel("a.xls"))
	assert.False(t, IsExcel("xlsx"))
}
