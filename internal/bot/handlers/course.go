package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/coursebot/internal/course"
	"github.com/hray3182/coursebot/internal/format"
	"go.uber.org/zap"
)

const (
	msgUploadForHelp = `Сначала загрузите Excel с листами "Оценивание" и "Задания". Отправьте файл прямо сюда.`
	msgUploadForInfo = `Сначала загрузите Excel с листом "Инфо". Отправьте файл прямо сюда.`
)

func (h *Handlers) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !h.files.Exists(chatID) {
		h.sendMessage(chatID, msgUploadForHelp)
		return
	}

	summary, err := course.LoadSummary(h.files.Path(chatID), h.loc)
	if err != nil {
		h.logger.Warn("Failed to read workbook", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(chatID, "Не удалось прочитать файл. Загрузите корректный Excel. Ошибка: "+err.Error())
		return
	}

	h.sendHTML(chatID, format.Help(summary.Weights.Weights, summary.Assignments.Assignments, h.now()))
}

func (h *Handlers) handleInfo(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !h.files.Exists(chatID) {
		h.sendMessage(chatID, msgUploadForInfo)
		return
	}

	res, err := course.LoadInfo(h.files.Path(chatID), h.loc)
	if err != nil {
		h.logger.Warn("Failed to read info sheet", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(chatID, `Не удалось прочитать лист "Инфо". Загрузите корректный Excel. Ошибка: `+err.Error())
		return
	}

	h.sendHTML(chatID, format.Info(res.Items))
}
