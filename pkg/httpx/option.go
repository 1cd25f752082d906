package httpx

import "log/slog"

type Option func(*LoggingRoundTripper)

func WithLogFieldMaxLen(logFieldMaxLen int) Option {
	return func(rt *LoggingRoundTripper) {
		rt.logFieldMaxLen = logFieldMaxLen
	}
}

func WithSensitiveDataMasker(sensitiveDataMasker sensitiveDataMasker) Option {
	return func(rt *LoggingRoundTripper) {
		rt.sensitiveDataMasker = sensitiveDataMasker
	}
}

// WithLevel задает уровень, на котором пишутся дампы запросов и ответов.
func WithLevel(level slog.Level) Option {
	return func(rt *LoggingRoundTripper) {
		rt.level = level
	}
}

// WithAttrs добавляет атрибуты к каждой записи (например, прокси).
func WithAttrs(attrs ...slog.Attr) Option {
	return func(rt *LoggingRoundTripper) {
		rt.attrs = append(rt.attrs, attrs...)
	}
}
