package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"notesbot/internal/model"
	"notesbot/internal/repository"
	"notesbot/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageReminderText
	stageReminderTime
	stageReminderRepeat
	stageNoteTitle
	stageNoteContent
	stageNoteCategory
)

type conversationState struct {
	stage    conversationStage
	reminder service.ReminderInput
	note     service.NoteInput
}

// Bot aggregates the Telegram API with the services. It also implements
// service.NotificationSink, so the dispatcher delivers through it.
type Bot struct {
	api         *tgbotapi.BotAPI
	userRepo    *repository.UserRepository
	reminderSvc *service.ReminderService
	noteSvc     *service.NoteService
	categorySvc *service.CategoryService
	digestSvc   *service.DigestService
	loc         *time.Location
	log         *zap.Logger

	conversations map[int64]*conversationState
	mu            sync.Mutex
}

func New(
	token string,
	userRepo *repository.UserRepository,
	reminderSvc *service.ReminderService,
	noteSvc *service.NoteService,
	categorySvc *service.CategoryService,
	digestSvc *service.DigestService,
	loc *time.Location,
	log *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Info("bot authorized", zap.String("username", api.Self.UserName))

	return &Bot{
		api:           api,
		userRepo:      userRepo,
		reminderSvc:   reminderSvc,
		noteSvc:       noteSvc,
		categorySvc:   categorySvc,
		digestSvc:     digestSvc,
		loc:           loc,
		log:           log,
		conversations: make(map[int64]*conversationState),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Error("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Error("handle message", zap.Error(err))
			}
		}
	}

	return nil
}

// Deliver sends a rendered message to the chat. Single attempt; the
// dispatcher decides what a failure means.
func (b *Bot) Deliver(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("deliver to chat %d: %w", chatID, err)
	}
	return nil
}

// SendDailyDigests pushes the daily digest to every known user. Run by the
// cron schedule.
func (b *Bot) SendDailyDigests(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	now := time.Now().In(b.loc)
	for _, user := range users {
		if user.ChatID == 0 {
			continue
		}
		text, ok, err := b.digestSvc.DailyDigest(ctx, user, now)
		if err != nil {
			b.log.Error("build digest", zap.Uint("user_id", user.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		if err := b.Deliver(ctx, user.ChatID, text); err != nil {
			b.log.Warn("send digest", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)

	if !msg.IsCommand() && text == btnCancel {
		b.clearConversation(msg.From.ID)
		return b.sendWithMarkup(msg.Chat.ID, "⏪ Ввод отменён.", mainMenuKeyboard())
	}

	if msg.IsCommand() {
		b.log.Debug("command",
			zap.Int64("from", msg.From.ID),
			zap.String("command", msg.Command()))
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	return b.sendText(msg.Chat.ID, "Я не понял сообщение. Используй кнопки меню или /help.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "remind":
		return b.handleQuickRemind(ctx, msg)
	case "reminders":
		return b.handleListReminders(ctx, msg)
	case "note":
		return b.startNoteConversation(ctx, msg)
	case "notes":
		return b.handleListNotes(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "digest":
		return b.handleDigest(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendWithMarkup(msg.Chat.ID, "⏪ Ввод отменён.", mainMenuKeyboard())
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(msg.Text) {
	case menuLabelNewReminder:
		return true, b.startReminderConversation(ctx, msg)
	case menuLabelReminders:
		return true, b.handleListReminders(ctx, msg)
	case menuLabelNewNote:
		return true, b.startNoteConversation(ctx, msg)
	case menuLabelNotes:
		return true, b.handleListNotes(ctx, msg)
	case menuLabelCategories:
		return true, b.handleCategories(ctx, msg)
	case menuLabelHelp:
		return true, b.handleHelp(msg)
	}
	return false, nil
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я помогу вести заметки и не пропускать напоминания.</b>\n\nКоманды:\n"+
			"• /remind &lt;текст и время&gt; — быстрое напоминание\n"+
			"• /reminders — активные напоминания\n"+
			"• /note — новая заметка\n"+
			"• /notes — список заметок\n"+
			"• /categories — категории заметок\n"+
			"• /digest — план на сегодня\n"+
			"• /cancel — отменить текущий ввод",
		escape(name),
	)

	return b.sendWithMarkup(msg.Chat.ID, text, mainMenuKeyboard())
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Подсказки</b>\n" +
		"• /remind купить хлеб завтра в 9:00 — создаст напоминание сразу\n" +
		"• Время пишется свободно: <code>через 30 минут</code>, <code>завтра</code>, " +
		"<code>25.12 в 10:00</code>, <code>15:30</code>, <code>в понедельник</code>\n" +
		"• Если время не указано — напомню через час\n" +
		"• /reminders — список с кнопками «Готово» и «Удалить»\n" +
		"• /note — пошаговое создание заметки\n" +
		"• /digest — что запланировано на сегодня\n" +
		"• /cancel — отменить текущий ввод"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleDigest(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg)
	if err != nil {
		return err
	}
	text, ok, err := b.digestSvc.DailyDigest(ctx, *user, time.Now().In(b.loc))
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось собрать план: %s", escape(err.Error())))
	}
	if !ok {
		return b.sendText(msg.Chat.ID, "На сегодня ничего не запланировано.")
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg)
	if err != nil {
		return err
	}
	categories, err := b.categorySvc.List(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	if len(categories) == 0 {
		return b.sendText(msg.Chat.ID, "📂 Категорий пока нет. Они создаются при сохранении заметки.")
	}

	var sb strings.Builder
	sb.WriteString("📂 <b>Категории</b>\n")
	for _, category := range categories {
		sb.WriteString(fmt.Sprintf("• %s\n", escape(category.Name)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	switch state.stage {
	case stageReminderText, stageReminderTime, stageReminderRepeat:
		return b.handleReminderConversation(ctx, msg, state)
	case stageNoteTitle, stageNoteContent, stageNoteCategory:
		return b.handleNoteConversation(ctx, msg, state)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendWithMarkup(msg.Chat.ID, "Диалог сброшен, попробуй ещё раз.", mainMenuKeyboard())
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil {
		return nil
	}

	// Always answer to drop the client spinner.
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.log.Debug("answer callback", zap.Error(err))
		}
	}()

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbRepeatPrefix):
		return b.finishReminderConversation(ctx, cb, strings.TrimPrefix(data, cbRepeatPrefix))
	case strings.HasPrefix(data, cbCompletePrefix):
		return b.handleReminderComplete(ctx, cb, strings.TrimPrefix(data, cbCompletePrefix))
	case strings.HasPrefix(data, cbSkipPrefix):
		return b.handleReminderSkip(ctx, cb, strings.TrimPrefix(data, cbSkipPrefix))
	case strings.HasPrefix(data, cbDeletePrefix):
		return b.handleReminderDelete(ctx, cb, strings.TrimPrefix(data, cbDeletePrefix))
	case strings.HasPrefix(data, cbPinPrefix):
		return b.handleNotePin(ctx, cb, strings.TrimPrefix(data, cbPinPrefix))
	case strings.HasPrefix(data, cbNoteDelPrefix):
		return b.handleNoteDelete(ctx, cb, strings.TrimPrefix(data, cbNoteDelPrefix))
	}
	return nil
}

func (b *Bot) ensureUser(ctx context.Context, msg *tgbotapi.Message) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx,
		msg.From.ID, msg.Chat.ID,
		msg.From.FirstName, msg.From.LastName, msg.From.UserName)
}

func (b *Bot) ensureUserFromCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx,
		cb.From.ID, cb.Message.Chat.ID,
		cb.From.FirstName, cb.From.LastName, cb.From.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func escape(s string) string {
	return html.EscapeString(s)
}
