package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"post-wizard-bot/internal/adapters/telegram"
	"post-wizard-bot/internal/domain"
	"post-wizard-bot/internal/infra/metrics"
	"post-wizard-bot/internal/usecase/wizard"
)

const startCommand = "/start"

// sendTarget — метка target для метрик отправки; id чата в метку не попадает.
const sendTarget = "telegram"

// Sender — часть *tgbotapi.BotAPI, нужная обработчику.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Chat — сценарий мастера, которым пользуется бот.
type Chat interface {
	Start(ctx context.Context, sessionID string) (wizard.Reply, error)
	HandleMessage(ctx context.Context, sessionID, text string) (wizard.Reply, error)
}

// Handler обслуживает апдейты бота.
type Handler struct {
	bot  Sender
	log  zerolog.Logger
	chat Chat
}

// NewHandler создаёт обработчик.
func NewHandler(bot Sender, log zerolog.Logger, chat Chat) *Handler {
	return &Handler{bot: bot, log: log, chat: chat}
}

// SessionID строит ключ сессии мастера для чата.
func SessionID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

// HandleUpdate обрабатывает входящий апдейт.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.Message != nil:
		h.handleText(ctx, upd.Message.Chat.ID, upd.Message.Text)
	case upd.CallbackQuery != nil:
		cb := upd.CallbackQuery
		if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			h.log.Warn().Err(err).Msg("не удалось ответить на callback")
		}
		if cb.Message == nil {
			return
		}
		h.handleText(ctx, cb.Message.Chat.ID, cb.Data)
	}
}

func (h *Handler) handleText(ctx context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	sessionID := SessionID(chatID)
	log := h.log.With().Int64("chat", chatID).Logger()

	var (
		reply wizard.Reply
		err   error
	)
	if isStart(text) {
		reply, err = h.chat.Start(ctx, sessionID)
	} else {
		reply, err = h.chat.HandleMessage(ctx, sessionID, text)
	}
	switch {
	case errors.Is(err, wizard.ErrBusy):
		log.Debug().Msg("сессия занята")
	case err != nil:
		log.Error().Err(err).Msg("ошибка обработки сообщения")
	}
	h.deliver(chatID, reply)
}

func (h *Handler) deliver(chatID int64, reply wizard.Reply) {
	msgs := reply.BotMessages()
	for i, m := range msgs {
		var keyboard *tgbotapi.InlineKeyboardMarkup
		if i == len(msgs)-1 && len(reply.Notices) == 0 {
			keyboard = mainKeyboard()
		}
		h.reply(chatID, m.Content, keyboard)
	}
	for _, n := range reply.Notices {
		h.reply(chatID, FormatNotice(n), mainKeyboard())
	}
}

func (h *Handler) reply(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	parts := telegram.SplitMessage(text)
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		if i == len(parts)-1 && keyboard != nil {
			msg.ReplyMarkup = keyboard
		}
		start := time.Now()
		_, err := h.bot.Send(msg)
		metrics.ObserveNetworkRequest("telegram_bot", "send_message", sendTarget, start, err)
		if err != nil {
			metrics.BotSendErrors.Inc()
			h.log.Error().Err(err).Int64("chat", chatID).Msg("не удалось отправить сообщение")
			return
		}
	}
}

// FormatNotice превращает уведомление в текст сообщения.
func FormatNotice(n domain.Notice) string {
	icon := "ℹ️"
	if n.Variant == domain.NoticeDestructive {
		icon = "⚠️"
	}
	if n.Description == "" {
		return icon + " " + n.Title
	}
	return icon + " " + n.Title + ": " + n.Description
}

func isStart(text string) bool {
	token := strings.Fields(text)[0]
	if at := strings.Index(token, "@"); at > 0 {
		token = token[:at]
	}
	return token == startCommand
}

func mainKeyboard() *tgbotapi.InlineKeyboardMarkup {
	buttons := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Create post", string(domain.CommandCreatePost)),
			tgbotapi.NewInlineKeyboardButtonData("📊 Status", string(domain.CommandStatus)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎨 Templates", string(domain.CommandTemplates)),
			tgbotapi.NewInlineKeyboardButtonData("🌐 Platforms", string(domain.CommandPlatforms)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ Help", string(domain.CommandHelp)),
		),
	)
	return &buttons
}
