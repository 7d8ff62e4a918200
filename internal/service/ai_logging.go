package service

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

const maxAILogSnippetRunes = 1024

// logAIExchange 输出 AI 请求与响应的关键信息，方便排查模型行为。
func logAIExchange(logger *slog.Logger, kind, phase, content string) {
	if logger == nil {
		logger = slog.Default()
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		logger.Debug("ai exchange", slog.String("kind", kind), slog.String("phase", phase), slog.Bool("empty", true))
		return
	}

	runeCount := utf8.RuneCountInString(trimmed)
	logger.Debug("ai exchange",
		slog.String("kind", kind),
		slog.String("phase", phase),
		slog.Int("runes", runeCount),
		slog.String("content", truncateRunes(trimmed, maxAILogSnippetRunes)),
	)
}

func truncateRunes(input string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(input)
	if len(runes) <= limit {
		return input
	}
	return string(runes[:limit]) + "…(truncated)"
}
