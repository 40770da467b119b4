package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"notesbot/internal/model"
)

const (
	menuLabelNewReminder = "➕ Напоминание"
	menuLabelReminders   = "⏰ Напоминания"
	menuLabelNewNote     = "📝 Заметка"
	menuLabelNotes       = "🗒 Заметки"
	menuLabelCategories  = "📂 Категории"
	menuLabelHelp        = "ℹ️ Помощь"

	btnSkip   = "⏭️ Пропустить"
	btnCancel = "⏪ Отменить ввод"
)

const (
	cbRepeatPrefix   = "repeat:"
	cbCompletePrefix = "rem_done:"
	cbSkipPrefix     = "rem_skip:"
	cbDeletePrefix   = "rem_del:"
	cbPinPrefix      = "note_pin:"
	cbNoteDelPrefix  = "note_del:"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewReminder),
			tgbotapi.NewKeyboardButton(menuLabelReminders),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewNote),
			tgbotapi.NewKeyboardButton(menuLabelNotes),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelCategories),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func dialogKeyboard(withSkip bool) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	if withSkip {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSkip)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)))
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func repeatKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Без повтора", cbRepeatPrefix+string(model.RepeatNone)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Ежедневно", cbRepeatPrefix+string(model.RepeatDaily)),
			tgbotapi.NewInlineKeyboardButtonData("Еженедельно", cbRepeatPrefix+string(model.RepeatWeekly)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Ежемесячно", cbRepeatPrefix+string(model.RepeatMonthly)),
			tgbotapi.NewInlineKeyboardButtonData("Ежегодно", cbRepeatPrefix+string(model.RepeatYearly)),
		),
	)
}

func reminderActionsKeyboard(r model.Reminder) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("✅ Готово", fmt.Sprintf("%s%d", cbCompletePrefix, r.ID)),
	}
	if r.RepeatKind.Repeats() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⏩ Следующее", fmt.Sprintf("%s%d", cbSkipPrefix, r.ID)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("%s%d", cbDeletePrefix, r.ID)))
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

func noteActionsKeyboard(n model.Note) tgbotapi.InlineKeyboardMarkup {
	pinLabel := "📌 Закрепить"
	if n.IsPinned {
		pinLabel = "📎 Открепить"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(pinLabel, fmt.Sprintf("%s%d", cbPinPrefix, n.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("%s%d", cbNoteDelPrefix, n.ID)),
		),
	)
}
