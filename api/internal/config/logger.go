package config

import (
	"context"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

type ctxKey struct{}

// InitLogger настраивает общий логгер: уровень и формат ("json" | "text").
func InitLogger(level, format string) {
	Logger.SetOutput(os.Stdout)
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Logger.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// WithFields кладёт поля в контекст; WithContext их потом достанет.
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	merged := logrus.Fields{}
	if prev, ok := ctx.Value(ctxKey{}).(logrus.Fields); ok {
		for k, v := range prev {
			merged[k] = v
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	return context.WithValue(ctx, ctxKey{}, merged)
}

// WithContext: логгер с request_id от chi и полями из WithFields.
func WithContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(Logger)
	if ctx == nil {
		return entry
	}
	if id := middleware.GetReqID(ctx); id != "" {
		entry = entry.WithField("request_id", id)
	}
	if fields, ok := ctx.Value(ctxKey{}).(logrus.Fields); ok {
		entry = entry.WithFields(fields)
	}
	return entry
}
