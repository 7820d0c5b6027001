package domain

import "time"

// Origin показывает автора сообщения в переписке.
type Origin string

const (
	OriginUser Origin = "user"
	OriginBot  Origin = "bot"
)

// Message описывает одно сообщение переписки. После добавления не меняется.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Origin    Origin    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Command   Command   `json:"command,omitempty"`
}

// NoticeVariant задаёт оформление уведомления.
type NoticeVariant string

const (
	NoticeDefault     NoticeVariant = "default"
	NoticeDestructive NoticeVariant = "destructive"
)

// Notice — всплывающее уведомление. В переписку не попадает.
type Notice struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Variant     NoticeVariant `json:"variant"`
}

// WizardStep — номер шага мастера создания поста.
type WizardStep int

const (
	StepPostType WizardStep = iota + 1
	StepPostDetails
	StepPlatforms
	StepTemplate
	StepTone
)

// WizardState хранит незавершённый пост. Поля шагов ниже текущего заполнены,
// поля текущего и следующих шагов пусты.
type WizardState struct {
	Step              WizardStep `json:"step"`
	PostType          PostType   `json:"postType,omitempty"`
	PostDetails       string     `json:"postDetails,omitempty"`
	TargetPlatforms   []Platform `json:"targetPlatforms,omitempty"`
	TemplateReference string     `json:"templateReference,omitempty"`
	CompanyTone       string     `json:"companyTone,omitempty"`
}

// NewWizardState возвращает состояние первого шага.
func NewWizardState() WizardState {
	return WizardState{Step: StepPostType}
}

// PostRequest — итоговый запрос, который уходит во внешний вебхук.
type PostRequest struct {
	PostType          string   `json:"postType"`
	PostDetails       string   `json:"postDetails"`
	TargetPlatforms   []string `json:"targetPlatforms"`
	TemplateReference string   `json:"templateReference"`
	CompanyTone       string   `json:"companyTone"`
}

// PostRequest собирает запрос из накопленного состояния и тона с последнего шага.
func (s WizardState) PostRequest(tone string) PostRequest {
	platforms := make([]string, 0, len(s.TargetPlatforms))
	for _, p := range s.TargetPlatforms {
		platforms = append(platforms, string(p))
	}
	return PostRequest{
		PostType:          string(s.PostType),
		PostDetails:       s.PostDetails,
		TargetPlatforms:   platforms,
		TemplateReference: s.TemplateReference,
		CompanyTone:       tone,
	}
}

// EnrichmentRequest — запрос на генерацию деталей поста после первого шага.
type EnrichmentRequest struct {
	Prompt string `json:"prompt"`
}

// SubmitResult — разобранное JSON-тело ответа вебхука.
type SubmitResult map[string]any

// Text возвращает первое непустое строковое поле из перечисленных.
func (r SubmitResult) Text(keys ...string) string {
	for _, key := range keys {
		if v, ok := r[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// PostSubmittedEvent публикуется после успешной отправки поста.
type PostSubmittedEvent struct {
	ID          string      `json:"id"`
	SessionID   string      `json:"sessionId"`
	Request     PostRequest `json:"request"`
	SubmittedAt time.Time   `json:"submittedAt"`
}
