package logging

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger 返回输出 JSON 的 slog logger，并附带服务名。
func NewLogger(service string, level slog.Level) *slog.Logger {
	return newLogger(os.Stdout, service, level)
}

func newLogger(w io.Writer, service string, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true, Level: level})
	return slog.New(handler).With(slog.String("service", service))
}

// WithGroup 为日志附加群组标识，单机版群组为空时原样返回。
func WithGroup(logger *slog.Logger, group string) *slog.Logger {
	if group == "" {
		return logger
	}
	return logger.With(slog.String("group", group))
}
