package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handlers) handleReminders(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	job, ok := h.reminders.Job(chatID)
	if !ok {
		h.sendMessage(chatID, "Напоминания для этого чата не запланированы. Загрузите Excel-файл, чтобы включить их.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🔔 Напоминания о дедлайнах\n\n")
	if job.IsTestMode() {
		sb.WriteString(fmt.Sprintf("Режим: тестовый, каждые %d секунд\n", int(job.Interval.Seconds())))
	} else {
		sb.WriteString(fmt.Sprintf("Расписание: %s\n", job.Schedule))
	}
	if job.NextRun != nil {
		sb.WriteString(fmt.Sprintf("Следующая проверка: %s\n", job.NextRun.In(h.loc).Format("02.01.2006 15:04")))
	}
	if job.LastRun != nil {
		sb.WriteString(fmt.Sprintf("Последняя проверка: %s\n", job.LastRun.In(h.loc).Format("02.01.2006 15:04")))
	}
	sb.WriteString("\nНапоминание приходит за неделю и за день до дедлайна.")

	h.sendMessage(chatID, sb.String())
}
