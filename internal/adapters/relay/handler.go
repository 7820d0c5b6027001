package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	httpinfra "post-wizard-bot/internal/infra/http"
	"post-wizard-bot/internal/infra/metrics"
)

const (
	defaultMaxBody = 1 << 20

	errMethodNotAllowed = "Method not allowed"
	errProcessing       = "Failed to process request"
)

var errRemoteMissing = errors.New("relay: remote url is not configured")

// Config описывает релей.
type Config struct {
	RemoteURL string
	// CORS разрешает preflight OPTIONS и добавляет заголовки к ответам.
	CORS    bool
	Timeout time.Duration
	MaxBody int64
}

// Handler пересылает тело POST во внешний вебхук без изменений.
type Handler struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger
}

// NewHandler создаёт релей.
func NewHandler(cfg Config, log zerolog.Logger) *Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = defaultMaxBody
	}
	return &Handler{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// ServeHTTP обслуживает единственный маршрут релея.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.cfg.CORS {
		setCORSHeaders(w.Header())
	}
	switch {
	case r.Method == http.MethodOptions && h.cfg.CORS:
		w.WriteHeader(http.StatusOK)
		metrics.ObserveRelay(r.Method, http.StatusOK)
	case r.Method != http.MethodPost:
		h.fail(w, r, http.StatusMethodNotAllowed, errMethodNotAllowed)
	default:
		h.forward(w, r)
	}
}

func (h *Handler) forward(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, h.cfg.MaxBody+1))
	if err != nil {
		h.log.Error().Err(err).Str("request_id", httpinfra.RequestID(r)).Msg("relay: чтение тела")
		h.fail(w, r, http.StatusInternalServerError, errProcessing)
		return
	}
	if int64(len(body)) > h.cfg.MaxBody {
		h.log.Warn().Int64("limit", h.cfg.MaxBody).Msg("relay: тело запроса слишком большое")
		h.fail(w, r, http.StatusInternalServerError, errProcessing)
		return
	}
	h.log.Debug().Str("request_id", httpinfra.RequestID(r)).RawJSON("body", jsonOrNull(body)).Msg("relay: получен запрос")

	status, respBody, err := h.send(r.Context(), body)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", httpinfra.RequestID(r)).Msg("relay: ошибка пересылки")
		h.fail(w, r, http.StatusInternalServerError, errProcessing)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(respBody)
	metrics.ObserveRelay(r.Method, status)
}

func (h *Handler) send(ctx context.Context, body []byte) (int, []byte, error) {
	if h.cfg.RemoteURL == "" {
		return 0, nil, errRemoteMissing
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.RemoteURL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("relay", "forward", req.URL.Host, start, err)
		return 0, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, defaultMaxBody))
	if err == nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		err = fmt.Errorf("remote status %d", resp.StatusCode)
	}
	if err == nil && !json.Valid(respBody) {
		err = errors.New("remote body is not json")
	}
	metrics.ObserveNetworkRequest("relay", "forward", req.URL.Host, start, err)
	if err != nil {
		return 0, nil, err
	}
	h.log.Debug().Int("status", resp.StatusCode).Msg("relay: ответ вебхука")
	return resp.StatusCode, respBody, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	httpinfra.WriteError(w, status, msg)
	metrics.ObserveRelay(r.Method, status)
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")
	h.Set("Access-Control-Max-Age", "86400")
}

func jsonOrNull(body []byte) []byte {
	if json.Valid(body) {
		return body
	}
	return []byte("null")
}
