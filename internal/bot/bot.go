package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/coursebot/internal/bot/handlers"
	"github.com/hray3182/coursebot/internal/storage"
	"go.uber.org/zap"
)

// chatQueueSize bounds the updates waiting for one chat's worker
const chatQueueSize = 32

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers *handlers.Handlers
	logger   *zap.Logger

	mu      sync.Mutex
	queues  map[int64]chan tgbotapi.Update // chatID -> pending updates
	workers sync.WaitGroup
}

func New(api *tgbotapi.BotAPI, h *handlers.Handlers, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:      api,
		handlers: h,
		logger:   logger,
		queues:   make(map[int64]chan tgbotapi.Update),
	}
}

// Start polls Telegram until ctx is cancelled. Each chat has its own worker,
// so a chat's upload and its following commands stay ordered while other
// chats are served concurrently. Start returns after all workers exit.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Authorized", zap.String("account", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	defer b.workers.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

// dispatch queues an update for its chat, starting the chat's worker on first use
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	b.mu.Lock()
	queue, ok := b.queues[msg.Chat.ID]
	if !ok {
		queue = make(chan tgbotapi.Update, chatQueueSize)
		b.queues[msg.Chat.ID] = queue
		b.workers.Add(1)
		go b.work(ctx, queue)
	}
	b.mu.Unlock()

	select {
	case queue <- update:
	case <-ctx.Done():
	}
}

func (b *Bot) work(ctx context.Context, queue <-chan tgbotapi.Update) {
	defer b.workers.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-queue:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Handler panicked", zap.Int64("chat_id", msg.Chat.ID), zap.Any("panic", r))
		}
	}()

	if msg.IsCommand() {
		b.handlers.HandleCommand(ctx, msg)
		return
	}

	if msg.Document != nil {
		b.handlers.HandleDocument(ctx, msg)
	}
}

// RestoreReminders schedules every chat that already has a stored workbook.
// It returns how many chats were scheduled.
func RestoreReminders(files *storage.ChatFiles, reminders handlers.Reminders, logger *zap.Logger) (int, error) {
	chats, err := files.Chats()
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, chatID := range chats {
		if _, err := reminders.Schedule(chatID, files.Path(chatID)); err != nil {
			logger.Error("Failed to restore reminders", zap.Int64("chat_id", chatID), zap.Error(err))
			continue
		}
		restored++
	}
	return restored, nil
}
