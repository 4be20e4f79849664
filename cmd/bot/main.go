package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/coursebot/internal/bot"
	"github.com/hray3182/coursebot/internal/bot/handlers"
	"github.com/hray3182/coursebot/internal/config"
	"github.com/hray3182/coursebot/internal/scheduler"
	"github.com/hray3182/coursebot/internal/session"
	"github.com/hray3182/coursebot/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var (
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "coursebot",
	Short: "Telegram bot for course grading, deadlines and reminders",
	Long: `coursebot serves a course workbook to Telegram chats.

Upload an .xlsx with the sheets "Оценивание", "Задания" and "Инфо" to a chat;
/help then shows the grading formula and nearest deadlines, /info the course
links, and a daily job reminds the chat a week and a day before each deadline.

Run without arguments to start the bot.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err = newLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runBot,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(inspectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	config.Level = lvl
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func runBot(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("failed to create Telegram API: %w", err)
	}
	api.Debug = cfg.Debug

	files, err := storage.NewChatFiles(cfg.DataDir)
	if err != nil {
		return err
	}

	sched := scheduler.New(api, logger.Named("scheduler"), scheduler.Options{
		Location: cfg.Location,
		Rule:     cfg.ReminderRule,
		TestMode: cfg.TestMode,
	})

	restored, err := bot.RestoreReminders(files, sched, logger)
	if err != nil {
		return fmt.Errorf("failed to restore reminders: %w", err)
	}
	logger.Info("Restored reminders", zap.Int("chats", restored), zap.String("data_dir", files.Dir()))
	for _, job := range sched.Jobs() {
		logger.Debug("Reminder job", zap.Int64("chat_id", job.ChatID), zap.String("path", job.Path), zap.String("schedule", job.Schedule))
	}

	h := handlers.New(
		api,
		bot.NewFileDownloader(api),
		files,
		session.New(cfg.UpdateTTL),
		sched,
		logger.Named("handlers"),
		handlers.Options{
			OperatorID:   cfg.OperatorID,
			Location:     cfg.Location,
			ReminderTime: cfg.ReminderTime,
		},
	)
	b := bot.New(api, h, logger.Named("bot"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sched.Start(ctx)
		return nil
	})
	g.Go(func() error {
		defer stop()
		logger.Info("Starting bot...")
		if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("bot error: %w", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("Shutting down...")
	return err
}
