package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/coursebot/internal/course"
	"go.uber.org/zap"
)

var excelExtensions = []string{".xlsx", ".xlsm"}

func (h *Handlers) handleUpdate(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !h.isOperator(msg) {
		h.sendMessage(chatID, "У вас нет прав для использования этой команды. Доступ ограничен для администратора бота.")
		return
	}

	h.sessions.ExpectUpdate(chatID)
	h.sendMessage(chatID, `Отправьте новый Excel-файл для обновления информации. Файл должен содержать листы "Оценивание", "Задания" и "Инфо".`)
}

func (h *Handlers) isOperator(msg *tgbotapi.Message) bool {
	return h.operatorID != 0 && msg.From != nil && msg.From.ID == h.operatorID
}

// IsExcel reports whether a file name has an accepted workbook extension
func IsExcel(fileName string) bool {
	name := strings.ToLower(fileName)
	for _, ext := range excelExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// HandleDocument stores an uploaded workbook as the chat's course file,
// validates it and (re)schedules the chat's reminders.
func (h *Handlers) HandleDocument(ctx context.Context, msg *tgbotapi.Message) {
	doc := msg.Document
	if doc == nil {
		return
	}
	chatID := msg.Chat.ID
	logger := h.logger.With(zap.Int64("chat_id", chatID), zap.String("file", doc.FileName))

	if !IsExcel(doc.FileName) {
		h.sendMessage(chatID, "Пожалуйста, отправьте Excel-файл (.xlsx или .xlsm).")
		return
	}

	updating := h.sessions.ExpectingUpdate(chatID)
	if updating {
		h.sendMessage(chatID, "Обновляю информацию из нового файла...")
	} else {
		h.sendMessage(chatID, "Получаю файл...")
	}

	body, err := h.downloader.Download(ctx, doc.FileID)
	if err != nil {
		logger.Error("Failed to download document", zap.Error(err))
		h.sendMessage(chatID, "Не удалось получить файл: "+err.Error())
		return
	}
	path, err := h.files.Save(chatID, body)
	body.Close()
	if err != nil {
		logger.Error("Failed to store document", zap.Error(err))
		h.sendMessage(chatID, "Не удалось сохранить файл: "+err.Error())
		return
	}
	logger.Info("Stored workbook", zap.String("path", path), zap.Bool("update", updating))

	summary, err := course.LoadSummary(path, h.loc)
	if err != nil {
		logger.Warn("Uploaded workbook failed validation", zap.Error(err))
		h.sendMessage(chatID, "Файл сохранён, но не удалось его прочитать полностью. Проверьте структуру листов. Ошибка: "+err.Error())
		return
	}
	for _, skipped := range append(summary.Weights.Skipped, summary.Assignments.Skipped...) {
		logger.Debug("Skipped row", zap.Stringer("row", skipped))
	}

	h.sessions.Clear(chatID)
	if updating {
		h.sendMessage(chatID, "Информация успешно обновлена! Используйте /help для сводки.")
	} else {
		h.sendMessage(chatID, "Файл сохранён для этого чата. Используйте /help для сводки.")
	}

	job, err := h.reminders.Schedule(chatID, path)
	if err != nil {
		logger.Error("Failed to schedule reminders", zap.Error(err))
		h.sendMessage(chatID, "Не удалось запланировать напоминания: "+err.Error())
		return
	}

	switch {
	case job.IsTestMode():
		h.sendMessage(chatID, fmt.Sprintf("Тестовые напоминания активированы (каждые %d секунд).", int(job.Interval.Seconds())))
	case h.reminderTime != "":
		h.sendMessage(chatID, fmt.Sprintf("Ежедневные напоминания запланированы на %s.", h.reminderTime))
	default:
		h.sendMessage(chatID, fmt.Sprintf("Напоминания запланированы: %s.", job.Schedule))
	}
}
