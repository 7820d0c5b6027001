package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"post-wizard-bot/internal/domain"
)

var (
	ErrEmptyInput      = errors.New("пустой ввод")
	ErrUnknownPostType = errors.New("неизвестный тип поста")
	ErrUnknownPlatform = errors.New("неизвестная платформа")
	ErrTemplateIndex   = errors.New("некорректный номер шаблона")
)

// PlatformError перечисляет отклонённые элементы списка платформ.
type PlatformError struct {
	Invalid []string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%v: %s", ErrUnknownPlatform, strings.Join(e.Invalid, ", "))
}

func (e *PlatformError) Unwrap() error { return ErrUnknownPlatform }

// ParsePostType разбирает ввод первого шага.
func ParsePostType(input string) (domain.PostType, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}
	pt, ok := domain.LookupPostType(input)
	if !ok {
		return "", ErrUnknownPostType
	}
	return pt, nil
}

// ParsePostDetails принимает любой непустой текст.
func ParsePostDetails(input string) (string, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return "", ErrEmptyInput
	}
	return text, nil
}

// ParsePlatforms разбирает список через запятую. Каждый элемент обязан быть известной
// платформой, иначе весь ввод отклоняется. Повторы схлопываются, порядок сохраняется.
func ParsePlatforms(input string) ([]domain.Platform, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}
	var (
		result  []domain.Platform
		invalid []string
		seen    = make(map[domain.Platform]struct{})
	)
	for _, part := range strings.Split(input, ",") {
		item := strings.TrimSpace(part)
		p, ok := domain.LookupPlatform(item)
		if !ok {
			if item == "" {
				item = `""`
			}
			invalid = append(invalid, item)
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}
	if len(invalid) > 0 {
		return nil, &PlatformError{Invalid: invalid}
	}
	return result, nil
}

// ParseTemplateIndex переводит номер с единицы в запись каталога.
func ParseTemplateIndex(input string) (domain.Template, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return domain.Template{}, ErrTemplateIndex
	}
	if n < 1 || n > len(domain.Templates) {
		return domain.Template{}, ErrTemplateIndex
	}
	return domain.Templates[n-1], nil
}

// ParseTone принимает любое непустое описание тона.
func ParseTone(input string) (string, error) {
	return ParsePostDetails(input)
}

// EnrichmentPrompt строит запрос на генерацию деталей поста.
func EnrichmentPrompt(pt domain.PostType) string {
	return fmt.Sprintf("Generate engaging social media post details for a %s post.", pt)
}
