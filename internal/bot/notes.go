package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"notesbot/internal/service"
	"notesbot/internal/timeparse"
)

const maxListedNotes = 10

func (b *Bot) startNoteConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg); err != nil {
		return err
	}
	b.setConversation(msg.From.ID, &conversationState{stage: stageNoteTitle})
	return b.sendWithMarkup(msg.Chat.ID,
		"📝 Создаём заметку.\n<b>Шаг 1:</b> заголовок?",
		dialogKeyboard(false))
}

func (b *Bot) handleNoteConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageNoteTitle:
		if text == "" {
			return b.sendText(msg.Chat.ID, "Заголовок не должен быть пустым.")
		}
		state.note.Title = text
		state.stage = stageNoteContent
		return b.sendWithMarkup(msg.Chat.ID,
			"<b>Шаг 2:</b> текст заметки (или «Пропустить»).",
			dialogKeyboard(true))

	case stageNoteContent:
		if text != btnSkip {
			state.note.Content = text
		}
		state.stage = stageNoteCategory
		return b.sendWithMarkup(msg.Chat.ID,
			"<b>Шаг 3:</b> категория (или «Пропустить»).",
			dialogKeyboard(true))

	case stageNoteCategory:
		if text != btnSkip {
			state.note.CategoryName = text
		}
		err := b.finishNoteCreation(ctx, msg, state.note)
		b.clearConversation(msg.From.ID)
		return err

	default:
		return nil
	}
}

func (b *Bot) finishNoteCreation(ctx context.Context, msg *tgbotapi.Message, input service.NoteInput) error {
	user, err := b.ensureUser(ctx, msg)
	if err != nil {
		return err
	}

	note, err := b.noteSvc.Create(ctx, user, input)
	if err != nil {
		if errors.Is(err, service.ErrEmptyNote) {
			return b.sendWithMarkup(msg.Chat.ID, "Заметка без заголовка не сохранена.", mainMenuKeyboard())
		}
		return b.sendWithMarkup(msg.Chat.ID, fmt.Sprintf("Не удалось сохранить: %s", escape(err.Error())), mainMenuKeyboard())
	}

	b.log.Info("note created", zap.Uint("note_id", note.ID), zap.Uint("user_id", user.ID))

	var sb strings.Builder
	sb.WriteString("✅ <b>Заметка сохранена</b>\n")
	sb.WriteString(fmt.Sprintf("• <b>Заголовок:</b> %s\n", escape(note.Title)))
	if note.Content != "" {
		sb.WriteString(fmt.Sprintf("• <b>Текст:</b> %s\n", escape(note.Content)))
	}
	if input.CategoryName != "" {
		sb.WriteString(fmt.Sprintf("• <b>Категория:</b> %s\n", escape(input.CategoryName)))
	}
	return b.sendWithMarkup(msg.Chat.ID, strings.TrimSpace(sb.String()), mainMenuKeyboard())
}

func (b *Bot) handleListNotes(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg)
	if err != nil {
		return err
	}

	notes, err := b.noteSvc.List(ctx, user, 0)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	if len(notes) == 0 {
		return b.sendText(msg.Chat.ID, "🗒 Заметок пока нет.")
	}

	categoryNames, err := b.noteSvc.CategoryNames(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	if err := b.sendText(msg.Chat.ID, fmt.Sprintf("🗒 <b>Заметки</b> (%d)", len(notes))); err != nil {
		return err
	}

	for i, note := range notes {
		if i == maxListedNotes {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("… и ещё %d", len(notes)-maxListedNotes))
		}

		var sb strings.Builder
		if note.IsPinned {
			sb.WriteString("📌 ")
		}
		sb.WriteString(fmt.Sprintf("<b>%s</b>", escape(note.Title)))
		if note.CategoryID != nil {
			if name, ok := categoryNames[*note.CategoryID]; ok {
				sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(name)))
			}
		}
		if note.Content != "" {
			sb.WriteString(fmt.Sprintf("\n%s", escape(note.Content)))
		}
		sb.WriteString(fmt.Sprintf("\n🗓 %s", timeparse.FormatDate(note.UpdatedAt.In(b.loc))))

		if err := b.sendWithMarkup(msg.Chat.ID, sb.String(), noteActionsKeyboard(note)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handleNotePin(ctx context.Context, cb *tgbotapi.CallbackQuery, idStr string) error {
	user, id, err := b.callbackTarget(ctx, cb, idStr)
	if err != nil {
		return err
	}
	pinned, err := b.noteSvc.TogglePin(ctx, user, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(cb.Message.Chat.ID, "Заметка не найдена.")
		}
		return b.sendText(cb.Message.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	if pinned {
		return b.editCallbackMessage(cb, "📌 Заметка закреплена.")
	}
	return b.editCallbackMessage(cb, "📎 Заметка откреплена.")
}

func (b *Bot) handleNoteDelete(ctx context.Context, cb *tgbotapi.CallbackQuery, idStr string) error {
	user, id, err := b.callbackTarget(ctx, cb, idStr)
	if err != nil {
		return err
	}
	if err := b.noteSvc.Delete(ctx, user, id); err != nil {
		return b.sendText(cb.Message.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	return b.editCallbackMessage(cb, "🗑 Заметка удалена.")
}
