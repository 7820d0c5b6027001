package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"post-wizard-bot/internal/domain"
	"post-wizard-bot/internal/infra/metrics"
)

// ErrBusy возвращается, пока сессия обрабатывает предыдущее сообщение.
var ErrBusy = errors.New("wizard: session is busy")

// RestartPolicy определяет реакцию на /create-post при активном мастере.
type RestartPolicy string

const (
	// RestartOverwrite отбрасывает незавершённый пост и начинает заново.
	RestartOverwrite RestartPolicy = "overwrite"
	// RestartReject оставляет текущий мастер и сообщает об этом пользователю.
	RestartReject RestartPolicy = "reject"
)

// ParseRestartPolicy разбирает значение из конфига.
func ParseRestartPolicy(raw string) (RestartPolicy, error) {
	switch RestartPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RestartOverwrite:
		return RestartOverwrite, nil
	case RestartReject:
		return RestartReject, nil
	default:
		return "", fmt.Errorf("unknown restart policy %q", raw)
	}
}

// Policy задаёт спорные правила мастера.
type Policy struct {
	Restart RestartPolicy
	// AdvanceOnEnrichmentFailure: шаг 1 продвигается до запроса деталей и не
	// откатывается при ошибке. false — продвигаемся только после успешного ответа.
	AdvanceOnEnrichmentFailure bool
}

// DefaultPolicy воспроизводит исходное поведение чата.
func DefaultPolicy() Policy {
	return Policy{Restart: RestartOverwrite, AdvanceOnEnrichmentFailure: true}
}

// Reply — результат обработки одного ввода.
type Reply struct {
	Messages []domain.Message `json:"messages"`
	Notices  []domain.Notice  `json:"notices"`
}

// BotMessages возвращает только ответы бота.
func (r Reply) BotMessages() []domain.Message {
	out := make([]domain.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		if m.Origin == domain.OriginBot {
			out = append(out, m)
		}
	}
	return out
}

// Option настраивает Service.
type Option func(*Service)

// WithPostRepo сохраняет отправленные посты.
func WithPostRepo(repo domain.PostRepo) Option {
	return func(s *Service) { s.posts = repo }
}

// WithPublisher публикует события об отправленных постах.
func WithPublisher(pub domain.EventPublisher) Option {
	return func(s *Service) { s.events = pub }
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service — движок диалога: команды, шаги мастера и отправка поста.
type Service struct {
	submitter  domain.Submitter
	states     domain.StateStore
	transcript domain.TranscriptRepo
	posts      domain.PostRepo
	events     domain.EventPublisher
	log        zerolog.Logger
	policy     Policy
	now        func() time.Time

	mu   sync.Mutex
	busy map[string]struct{}
}

// NewService создаёт движок.
func NewService(submitter domain.Submitter, states domain.StateStore, transcript domain.TranscriptRepo, log zerolog.Logger, policy Policy, opts ...Option) *Service {
	if policy.Restart == "" {
		policy.Restart = RestartOverwrite
	}
	s := &Service{
		submitter:  submitter,
		states:     states,
		transcript: transcript,
		log:        log,
		policy:     policy,
		now:        time.Now,
		busy:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start возвращает приветствие. В журнал оно попадает только для пустой сессии.
func (s *Service) Start(ctx context.Context, sessionID string) (Reply, error) {
	if !s.acquire(sessionID) {
		return Reply{Notices: []domain.Notice{noticeBusy}}, ErrBusy
	}
	defer s.release(sessionID)

	count, err := s.transcript.Count(ctx, sessionID)
	if err != nil {
		return Reply{}, fmt.Errorf("подсчёт сообщений: %w", err)
	}
	t := s.newTurn(sessionID)
	t.bot(domain.WelcomeText())
	if count == 0 {
		if err := s.transcript.Append(ctx, sessionID, t.reply.Messages...); err != nil {
			return Reply{}, fmt.Errorf("сохранение приветствия: %w", err)
		}
	}
	return t.reply, nil
}

// Processing сообщает, занята ли сессия.
func (s *Service) Processing(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.busy[sessionID]
	return ok
}

// Transcript возвращает последние сообщения сессии.
func (s *Service) Transcript(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	return s.transcript.List(ctx, sessionID, limit)
}

// State возвращает состояние мастера; false — мастер не запущен.
func (s *Service) State(ctx context.Context, sessionID string) (domain.WizardState, bool, error) {
	state, err := s.states.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrStateNotFound) {
		return domain.WizardState{}, false, nil
	}
	if err != nil {
		return domain.WizardState{}, false, err
	}
	return state, true, nil
}

// HandleMessage обрабатывает ввод пользователя. Пустой ввод игнорируется.
func (s *Service) HandleMessage(ctx context.Context, sessionID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, nil
	}
	if !s.acquire(sessionID) {
		return Reply{Notices: []domain.Notice{noticeBusy}}, ErrBusy
	}
	defer s.release(sessionID)

	t := s.newTurn(sessionID)
	cmd, known := domain.ParseCommand(text)
	t.user(text, cmd)

	var err error
	switch {
	case known:
		err = s.handleCommand(ctx, t, cmd)
	case domain.IsCommand(text):
		t.notice(noticeUnknownCommand)
	default:
		err = s.handleInput(ctx, t, text)
	}

	if appendErr := s.transcript.Append(ctx, sessionID, t.reply.Messages...); appendErr != nil {
		err = errors.Join(err, fmt.Errorf("сохранение переписки: %w", appendErr))
	}
	return t.reply, err
}

func (s *Service) handleCommand(ctx context.Context, t *turn, cmd domain.Command) error {
	metrics.IncCommand(string(cmd))
	if cmd == domain.CommandCreatePost {
		current, active, err := s.State(ctx, t.sessionID)
		if err != nil {
			return fmt.Errorf("получение состояния: %w", err)
		}
		if active && s.policy.Restart == RestartReject {
			t.bot(msgAlreadyInProgress(current.Step))
			return nil
		}
		if active {
			s.log.Debug().Str("session", t.sessionID).Int("step", int(current.Step)).Msg("wizard: незавершённый пост отброшен")
		}
		if err := s.states.Put(ctx, t.sessionID, domain.NewWizardState()); err != nil {
			return fmt.Errorf("сохранение состояния: %w", err)
		}
		metrics.IncWizardStarted()
	}
	t.bot(cmd.Reply())
	return nil
}

func (s *Service) handleInput(ctx context.Context, t *turn, text string) error {
	state, active, err := s.State(ctx, t.sessionID)
	if err != nil {
		return fmt.Errorf("получение состояния: %w", err)
	}
	if !active {
		t.notice(noticeNoWizard)
		return nil
	}
	switch state.Step {
	case domain.StepPostType:
		return s.stepPostType(ctx, t, state, text)
	case domain.StepPostDetails:
		return s.stepPostDetails(ctx, t, state, text)
	case domain.StepPlatforms:
		return s.stepPlatforms(ctx, t, state, text)
	case domain.StepTemplate:
		return s.stepTemplate(ctx, t, state, text)
	case domain.StepTone:
		return s.stepTone(ctx, t, state, text)
	default:
		return fmt.Errorf("wizard: неизвестный шаг %d", state.Step)
	}
}

func (s *Service) stepPostType(ctx context.Context, t *turn, state domain.WizardState, text string) error {
	pt, err := ParsePostType(text)
	if err != nil {
		metrics.ObserveWizardStep(int(domain.StepPostType), false)
		t.bot(msgInvalidPostType())
		return nil
	}
	next := state
	next.PostType = pt
	next.Step = domain.StepPostDetails

	if s.policy.AdvanceOnEnrichmentFailure {
		if err := s.states.Put(ctx, t.sessionID, next); err != nil {
			return fmt.Errorf("сохранение состояния: %w", err)
		}
	}

	res, subErr := s.submit(ctx, "enrichment", domain.EnrichmentRequest{Prompt: EnrichmentPrompt(pt)})
	if subErr != nil {
		s.log.Warn().Err(subErr).Str("session", t.sessionID).Msg("wizard: не удалось получить детали поста")
		t.notice(noticeSubmitFailed)
		if !s.policy.AdvanceOnEnrichmentFailure {
			metrics.ObserveWizardStep(int(domain.StepPostType), false)
			return nil
		}
	} else {
		if !s.policy.AdvanceOnEnrichmentFailure {
			if err := s.states.Put(ctx, t.sessionID, next); err != nil {
				return fmt.Errorf("сохранение состояния: %w", err)
			}
		}
		details := res.Text("postDetails", "output", "text", "message")
		if details == "" {
			details = msgDetailsFallback
		}
		t.bot(details)
	}
	metrics.ObserveWizardStep(int(domain.StepPostType), true)
	t.bot(msgProvideDetails)
	return nil
}

func (s *Service) stepPostDetails(ctx context.Context, t *turn, state domain.WizardState, text string) error {
	details, err := ParsePostDetails(text)
	if err != nil {
		metrics.ObserveWizardStep(int(domain.StepPostDetails), false)
		t.bot(msgEmptyDetails)
		return nil
	}
	state.PostDetails = details
	state.Step = domain.StepPlatforms
	if err := s.states.Put(ctx, t.sessionID, state); err != nil {
		return fmt.Errorf("сохранение состояния: %w", err)
	}
	metrics.ObserveWizardStep(int(domain.StepPostDetails), true)
	t.bot(msgPlatformPrompt())
	return nil
}

func (s *Service) stepPlatforms(ctx context.Context, t *turn, state domain.WizardState, text string) error {
	platforms, err := ParsePlatforms(text)
	if err != nil {
		metrics.ObserveWizardStep(int(domain.StepPlatforms), false)
		var perr *PlatformError
		if errors.As(err, &perr) {
			t.bot(msgInvalidPlatforms(perr.Invalid))
		} else {
			t.bot(msgPlatformPrompt())
		}
		return nil
	}
	state.TargetPlatforms = platforms
	state.Step = domain.StepTemplate
	if err := s.states.Put(ctx, t.sessionID, state); err != nil {
		return fmt.Errorf("сохранение состояния: %w", err)
	}
	metrics.ObserveWizardStep(int(domain.StepPlatforms), true)
	t.bot(msgTemplatePrompt())
	return nil
}

func (s *Service) stepTemplate(ctx context.Context, t *turn, state domain.WizardState, text string) error {
	tmpl, err := ParseTemplateIndex(text)
	if err != nil {
		metrics.ObserveWizardStep(int(domain.StepTemplate), false)
		t.bot(msgInvalidTemplate())
		return nil
	}
	state.TemplateReference = tmpl.Reference
	state.Step = domain.StepTone
	if err := s.states.Put(ctx, t.sessionID, state); err != nil {
		return fmt.Errorf("сохранение состояния: %w", err)
	}
	metrics.ObserveWizardStep(int(domain.StepTemplate), true)
	t.bot(msgTonePrompt)
	return nil
}

func (s *Service) stepTone(ctx context.Context, t *turn, state domain.WizardState, text string) error {
	tone, err := ParseTone(text)
	if err != nil {
		metrics.ObserveWizardStep(int(domain.StepTone), false)
		t.bot(msgEmptyTone)
		return nil
	}
	req := state.PostRequest(tone)
	// сброс до отправки: принятый вебхуком пост не уходит повторно
	if err := s.states.Delete(ctx, t.sessionID); err != nil {
		return fmt.Errorf("сброс состояния: %w", err)
	}
	res, subErr := s.submit(ctx, "post", req)
	if subErr != nil {
		s.log.Warn().Err(subErr).Str("session", t.sessionID).Msg("wizard: не удалось отправить пост")
		t.notice(noticeSubmitFailed)
		if err := s.states.Put(ctx, t.sessionID, state); err != nil {
			return fmt.Errorf("восстановление состояния: %w", err)
		}
		return nil
	}
	metrics.ObserveWizardStep(int(domain.StepTone), true)

	confirmation := msgSubmitted
	if extra := res.Text("message"); extra != "" {
		confirmation += "\n\n" + extra
	}
	t.bot(confirmation)
	s.recordSubmitted(ctx, t.sessionID, req)
	return nil
}

func (s *Service) submit(ctx context.Context, kind string, payload any) (domain.SubmitResult, error) {
	res, err := s.submitter.Submit(ctx, payload)
	metrics.ObserveSubmission(kind, err)
	return res, err
}

// recordSubmitted сохраняет и публикует отправленный пост. Ошибки только логируются:
// пользователь уже получил подтверждение.
func (s *Service) recordSubmitted(ctx context.Context, sessionID string, req domain.PostRequest) {
	event := domain.PostSubmittedEvent{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Request:     req,
		SubmittedAt: s.now().UTC(),
	}
	if s.posts != nil {
		if err := s.posts.SaveSubmitted(ctx, event); err != nil {
			s.log.Error().Err(err).Str("session", sessionID).Msg("wizard: не удалось сохранить пост")
		}
	}
	if s.events != nil {
		if err := s.events.PublishPostSubmitted(ctx, event); err != nil {
			s.log.Error().Err(err).Str("session", sessionID).Msg("wizard: не удалось опубликовать событие")
		}
	}
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.busy[sessionID]; ok {
		return false
	}
	s.busy[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	delete(s.busy, sessionID)
	s.mu.Unlock()
}

type turn struct {
	sessionID string
	now       func() time.Time
	reply     Reply
}

func (s *Service) newTurn(sessionID string) *turn {
	return &turn{sessionID: sessionID, now: s.now}
}

func (t *turn) user(text string, cmd domain.Command) {
	t.append(domain.OriginUser, text, cmd)
}

func (t *turn) bot(text string) {
	t.append(domain.OriginBot, text, "")
}

func (t *turn) append(origin domain.Origin, text string, cmd domain.Command) {
	t.reply.Messages = append(t.reply.Messages, domain.Message{
		ID:        uuid.NewString(),
		Content:   text,
		Origin:    origin,
		Timestamp: t.now(),
		Command:   cmd,
	})
}

func (t *turn) notice(n domain.Notice) {
	t.reply.Notices = append(t.reply.Notices, n)
}
