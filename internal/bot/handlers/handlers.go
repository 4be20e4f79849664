package handlers

import (
	"context"
	"io"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/coursebot/internal/models"
	"github.com/hray3182/coursebot/internal/session"
	"github.com/hray3182/coursebot/internal/storage"
	"go.uber.org/zap"
)

// Sender delivers messages to Telegram. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Downloader fetches an uploaded file by its Telegram file id
type Downloader interface {
	Download(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Reminders registers per-chat reminder jobs
type Reminders interface {
	Schedule(chatID int64, path string) (*models.ReminderJob, error)
	Job(chatID int64) (*models.ReminderJob, bool)
}

type Options struct {
	OperatorID   int64
	Location     *time.Location
	ReminderTime string // HH:MM shown to users; empty for a custom rule
	Now          func() time.Time
}

type Handlers struct {
	api        Sender
	downloader Downloader
	files      *storage.ChatFiles
	sessions   *session.Store
	reminders  Reminders
	logger     *zap.Logger

	operatorID   int64
	loc          *time.Location
	reminderTime string
	now          func() time.Time
}

func New(
	api Sender,
	downloader Downloader,
	files *storage.ChatFiles,
	sessions *session.Store,
	reminders Reminders,
	logger *zap.Logger,
	opts Options,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handlers{
		api:          api,
		downloader:   downloader,
		files:        files,
		sessions:     sessions,
		reminders:    reminders,
		logger:       logger,
		operatorID:   opts.OperatorID,
		loc:          opts.Location,
		reminderTime: opts.ReminderTime,
		now:          opts.Now,
	}
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	h.logger.Debug("Command",
		zap.Int64("chat_id", msg.Chat.ID),
		zap.String("command", msg.Command()),
	)

	switch msg.Command() {
	case "start", "help":
		h.handleHelp(ctx, msg)
	case "info":
		h.handleInfo(ctx, msg)
	case "update":
		h.handleUpdate(ctx, msg)
	case "reminders":
		h.handleReminders(ctx, msg)
	default:
		h.sendMessage(msg.Chat.ID, "Неизвестная команда. Используйте /help для сводки по курсу.")
	}
}

// sendMessage sends plain text
func (h *Handlers) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		h.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendHTML sends text rendered by the format package
func (h *Handlers) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := h.api.Send(msg); err != nil {
		h.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
