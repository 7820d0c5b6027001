package telegram

import "strings"

// MessageLimit — максимальная длина сообщения Telegram в рунах.
const MessageLimit = 4096

// SplitMessage режет текст под лимит Telegram.
func SplitMessage(text string) []string {
	return SplitLimit(text, MessageLimit)
}

// SplitLimit режет текст на куски не длиннее limit рун, по возможности по переводам строк.
func SplitLimit(text string, limit int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	runes := []rune(trimmed)
	if limit <= 0 || len(runes) <= limit {
		return []string{trimmed}
	}

	var parts []string
	for start := 0; start < len(runes); {
		end := start + limit
		if end >= len(runes) {
			parts = appendChunk(parts, runes[start:])
			break
		}
		split := end
		for i := end; i > start; i-- {
			if runes[i-1] == '\n' {
				split = i
				break
			}
		}
		parts = appendChunk(parts, runes[start:split])
		start = split
		for start < len(runes) && runes[start] == '\n' {
			start++
		}
	}
	if len(parts) == 0 {
		return []string{trimmed}
	}
	return parts
}

func appendChunk(parts []string, chunk []rune) []string {
	if s := strings.Trim(string(chunk), "\n"); s != "" {
		return append(parts, s)
	}
	return parts
}
