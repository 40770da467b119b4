package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"notesbot/internal/model"
	"notesbot/internal/service"
	"notesbot/internal/timeparse"
)

const maxListedReminders = 10

// handleQuickRemind creates a reminder in one shot from the command
// arguments: `/remind купить хлеб завтра в 9:00`.
func (b *Bot) handleQuickRemind(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg)
	if err != nil {
		return err
	}

	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.startReminderConversation(ctx, msg)
	}

	now := time.Now().In(b.loc)
	reminder, err := b.reminderSvc.CreateFromText(ctx, user, msg.Chat.ID, args, now)
	if err != nil {
		if errors.Is(err, service.ErrEmptyReminder) {
			return b.sendText(msg.Chat.ID, "Текст напоминания пустой.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось создать напоминание: %s", escape(err.Error())))
	}

	return b.sendText(msg.Chat.ID, fmt.Sprintf(
		"✅ Напоминание создано!\n⏰ %s (%s)\n📝 %s",
		timeparse.Format(reminder.ReminderTime),
		timeparse.Until(now, reminder.ReminderTime),
		escape(reminder.Title),
	))
}

func (b *Bot) startReminderConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg); err != nil {
		return err
	}
	b.setConversation(msg.From.ID, &conversationState{stage: stageReminderText})
	return b.sendWithMarkup(msg.Chat.ID,
		"⏰ Создаём напоминание.\n<b>Шаг 1:</b> о чём напомнить?",
		dialogKeyboard(false))
}

func (b *Bot) handleReminderConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageReminderText:
		if text == "" {
			return b.sendText(msg.Chat.ID, "Текст не должен быть пустым.")
		}
		state.reminder.Title = text
		state.reminder.Content = text
		state.stage = stageReminderTime
		return b.sendWithMarkup(msg.Chat.ID,
			"<b>Шаг 2:</b> когда напомнить?\nНапример: <code>через 30 минут</code>, "+
				"<code>завтра</code>, <code>25.12 в 10:00</code>, <code>15:30</code>, <code>в понедельник</code>",
			dialogKeyboard(false))

	case stageReminderTime:
		now := time.Now().In(b.loc)
		res, err := timeparse.Parse(text, now)
		if errors.Is(err, timeparse.ErrInvalidExpression) {
			b.log.Warn("time expression rejected",
				zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
			return b.sendText(msg.Chat.ID, "Дата или время выглядят неверно. Проверь числа и попробуй ещё раз.")
		}
		if err != nil {
			return err
		}
		if !res.Matched {
			return b.sendText(msg.Chat.ID, "Не удалось распознать время. Попробуй ещё раз, например <code>завтра в 15:00</code>.")
		}
		if !res.Time.After(now) {
			return b.sendText(msg.Chat.ID, "Это время уже прошло. Укажи момент в будущем.")
		}
		state.reminder.Time = res.Time
		state.stage = stageReminderRepeat
		return b.sendWithMarkup(msg.Chat.ID,
			fmt.Sprintf("Время: <b>%s</b>\n<b>Шаг 3:</b> повторять напоминание?", timeparse.Format(res.Time)),
			repeatKeyboard())

	case stageReminderRepeat:
		// Repeat kind is chosen with the inline buttons, not typed.
		return b.sendWithMarkup(msg.Chat.ID, "Выбери вариант повтора кнопкой ниже.", repeatKeyboard())

	default:
		return nil
	}
}

// finishReminderConversation completes the dialog from the repeat-kind
// callback and stores the reminder.
func (b *Bot) finishReminderConversation(ctx context.Context, cb *tgbotapi.CallbackQuery, kindStr string) error {
	state := b.getConversation(cb.From.ID)
	if state == nil || state.stage != stageReminderRepeat {
		return nil
	}

	kind := model.RepeatKind(kindStr)
	if !kind.Valid() {
		return b.sendText(cb.Message.Chat.ID, "Неизвестный вариант повтора.")
	}
	state.reminder.Repeat = kind
	state.reminder.Interval = 1

	user, err := b.ensureUserFromCallback(ctx, cb)
	if err != nil {
		return err
	}

	reminder, err := b.reminderSvc.Create(ctx, user, cb.Message.Chat.ID, state.reminder)
	b.clearConversation(cb.From.ID)
	if err != nil {
		return b.sendText(cb.Message.Chat.ID, fmt.Sprintf("Не удалось сохранить: %s", escape(err.Error())))
	}

	b.log.Info("reminder created",
		zap.Uint("reminder_id", reminder.ID),
		zap.Uint("user_id", user.ID),
		zap.String("repeat_kind", string(reminder.RepeatKind)))

	text := fmt.Sprintf("✅ <b>Напоминание сохранено</b>\n⏰ %s\n📝 %s",
		timeparse.Format(reminder.ReminderTime), escape(reminder.Title))
	if reminder.RepeatKind.Repeats() {
		text += fmt.Sprintf("\n🔁 %s", repeatLabel(reminder.RepeatKind))
	}
	return b.sendWithMarkup(cb.Message.Chat.ID, text, mainMenuKeyboard())
}

func (b *Bot) handleListReminders(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg)
	if err != nil {
		return err
	}

	reminders, err := b.reminderSvc.ListActive(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	if len(reminders) == 0 {
		return b.sendText(msg.Chat.ID, "📋 Активных напоминаний нет.")
	}

	if err := b.sendText(msg.Chat.ID, fmt.Sprintf("📋 <b>Активные напоминания</b> (%d)", len(reminders))); err != nil {
		return err
	}

	now := time.Now().In(b.loc)
	for i, reminder := range reminders {
		if i == maxListedReminders {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("… и ещё %d", len(reminders)-maxListedReminders))
		}
		text := fmt.Sprintf("⏰ <b>%s</b>\n📝 %s\n⏳ %s",
			timeparse.Format(reminder.ReminderTime),
			escape(reminder.Title),
			timeparse.Until(now, reminder.ReminderTime))
		if reminder.RepeatKind.Repeats() {
			text += fmt.Sprintf("\n🔁 %s", repeatLabel(reminder.RepeatKind))
		}
		if err := b.sendWithMarkup(msg.Chat.ID, text, reminderActionsKeyboard(reminder)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handleReminderComplete(ctx context.Context, cb *tgbotapi.CallbackQuery, idStr string) error {
	user, id, err := b.callbackTarget(ctx, cb, idStr)
	if err != nil {
		return err
	}
	ok, err := b.reminderSvc.Complete(ctx, user, id)
	if err != nil {
		return b.sendText(cb.Message.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	if !ok {
		return b.sendText(cb.Message.Chat.ID, "Напоминание не найдено.")
	}
	return b.editCallbackMessage(cb, "✅ Напоминание выполнено.")
}

func (b *Bot) handleReminderSkip(ctx context.Context, cb *tgbotapi.CallbackQuery, idStr string) error {
	user, id, err := b.callbackTarget(ctx, cb, idStr)
	if err != nil {
		return err
	}
	reminder, err := b.reminderSvc.SkipOccurrence(ctx, user, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(cb.Message.Chat.ID, "Напоминание не найдено.")
		}
		return b.sendText(cb.Message.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	return b.editCallbackMessage(cb,
		fmt.Sprintf("⏩ Перенесено на %s.", timeparse.Format(reminder.ReminderTime)))
}

func (b *Bot) handleReminderDelete(ctx context.Context, cb *tgbotapi.CallbackQuery, idStr string) error {
	user, id, err := b.callbackTarget(ctx, cb, idStr)
	if err != nil {
		return err
	}
	if err := b.reminderSvc.Delete(ctx, user, id); err != nil {
		return b.sendText(cb.Message.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	return b.editCallbackMessage(cb, "🗑 Напоминание удалено.")
}

// callbackTarget resolves the acting user and the numeric id carried in the
// callback payload.
func (b *Bot) callbackTarget(ctx context.Context, cb *tgbotapi.CallbackQuery, idStr string) (*model.User, uint, error) {
	id64, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return nil, 0, fmt.Errorf("bad callback id %q: %w", idStr, err)
	}
	user, err := b.ensureUserFromCallback(ctx, cb)
	if err != nil {
		return nil, 0, err
	}
	return user, uint(id64), nil
}

// editCallbackMessage replaces the message the button was attached to,
// dropping its keyboard. Falls back to a fresh message when editing fails
// (e.g. the message is too old).
func (b *Bot) editCallbackMessage(cb *tgbotapi.CallbackQuery, text string) error {
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		return b.sendText(cb.Message.Chat.ID, text)
	}
	return nil
}

func repeatLabel(kind model.RepeatKind) string {
	switch kind {
	case model.RepeatDaily:
		return "ежедневно"
	case model.RepeatWeekly:
		return "еженедельно"
	case model.RepeatMonthly:
		return "ежемесячно"
	case model.RepeatYearly:
		return "ежегодно"
	default:
		return "без повтора"
	}
}
