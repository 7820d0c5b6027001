package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"post-wizard-bot/internal/domain"
	httpinfra "post-wizard-bot/internal/infra/http"
	"post-wizard-bot/internal/usecase/wizard"
)

// Типы исходящих кадров.
const (
	FrameConnected = "connected"
	FrameMessage   = "message"
	FrameNotice    = "notice"
)

// Frame — исходящий кадр веб-чата.
type Frame struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Message   *domain.Message `json:"message,omitempty"`
	Notice    *domain.Notice  `json:"notice,omitempty"`
}

// Incoming — входящий кадр.
type Incoming struct {
	Text string `json:"text"`
}

// Chat — то, что веб-чату нужно от мастера.
type Chat interface {
	Start(ctx context.Context, sessionID string) (wizard.Reply, error)
	HandleMessage(ctx context.Context, sessionID, text string) (wizard.Reply, error)
	Transcript(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)
}

var (
	noticeInvalidFrame = domain.Notice{
		Title:       "Invalid message",
		Description: "Send JSON with a 'text' field.",
		Variant:     domain.NoticeDestructive,
	}
	noticeInternal = domain.Notice{
		Title:       "Error",
		Description: "Something went wrong. Please try again.",
		Variant:     domain.NoticeDestructive,
	}
)

// Handler обслуживает websocket и REST веб-чата.
type Handler struct {
	chat           Chat
	log            zerolog.Logger
	historyLimit   int
	allowedOrigins map[string]bool
	upgrader       websocket.Upgrader
}

// NewHandler создаёт обработчик. Пустой allowedOrigins разрешает любой Origin.
func NewHandler(chat Chat, log zerolog.Logger, allowedOrigins []string, historyLimit int) *Handler {
	h := &Handler{
		chat:           chat,
		log:            log,
		historyLimit:   historyLimit,
		allowedOrigins: make(map[string]bool, len(allowedOrigins)),
	}
	for _, o := range allowedOrigins {
		if o != "" {
			h.allowedOrigins[o] = true
		}
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// Routes монтирует маршруты веб-чата.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/ws", h.serveWS)
	r.Get("/api/v1/sessions/{id}/messages", h.listMessages)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return h.allowedOrigins[origin]
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("webchat: upgrade failed")
		return
	}
	defer conn.Close()

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	log := h.log.With().Str("session", sessionID).Logger()
	ctx := r.Context()

	if err := conn.WriteJSON(Frame{Type: FrameConnected, SessionID: sessionID}); err != nil {
		log.Warn().Err(err).Msg("webchat: connected frame")
		return
	}
	if err := h.greet(ctx, conn, sessionID); err != nil {
		log.Error().Err(err).Msg("webchat: greeting failed")
		if err := writeNotice(conn, noticeInternal); err != nil {
			return
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("webchat: closed unexpectedly")
			}
			return
		}
		var in Incoming
		if err := json.Unmarshal(data, &in); err != nil {
			if err := writeNotice(conn, noticeInvalidFrame); err != nil {
				return
			}
			continue
		}
		reply, err := h.chat.HandleMessage(ctx, sessionID, in.Text)
		if err != nil && !errors.Is(err, wizard.ErrBusy) {
			log.Error().Err(err).Msg("webchat: handle message")
			if len(reply.Notices) == 0 {
				reply.Notices = append(reply.Notices, noticeInternal)
			}
		}
		if err := writeReply(conn, reply); err != nil {
			log.Debug().Err(err).Msg("webchat: write reply")
			return
		}
	}
}

// greet отдаёт историю сессии, а для новой сессии приветствие.
func (h *Handler) greet(ctx context.Context, conn *websocket.Conn, sessionID string) error {
	history, err := h.chat.Transcript(ctx, sessionID, h.historyLimit)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		reply, err := h.chat.Start(ctx, sessionID)
		if errors.Is(err, wizard.ErrBusy) {
			return writeReply(conn, reply)
		}
		if err != nil {
			return err
		}
		history = reply.Messages
	}
	return writeReply(conn, wizard.Reply{Messages: history})
}

func writeReply(conn *websocket.Conn, reply wizard.Reply) error {
	for i := range reply.Messages {
		if err := conn.WriteJSON(Frame{Type: FrameMessage, Message: &reply.Messages[i]}); err != nil {
			return err
		}
	}
	for _, n := range reply.Notices {
		if err := writeNotice(conn, n); err != nil {
			return err
		}
	}
	return nil
}

func writeNotice(conn *websocket.Conn, n domain.Notice) error {
	return conn.WriteJSON(Frame{Type: FrameNotice, Notice: &n})
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpinfra.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	msgs, err := h.chat.Transcript(r.Context(), sessionID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("session", sessionID).Str("request_id", httpinfra.RequestID(r)).Msg("webchat: list messages")
		httpinfra.WriteError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	httpinfra.WriteJSON(w, http.StatusOK, struct {
		SessionID string           `json:"sessionId"`
		Messages  []domain.Message `json:"messages"`
	}{SessionID: sessionID, Messages: msgs})
}
