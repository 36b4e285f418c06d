package ocr

import (
	"context"
	"errors"
	"strings"
)

// Options: параметры распознавания.
type Options struct {
	Langs []string // ["en","ru"]
	Model string   // перекрывает модель движка, если задана
}

// Recognizer извлекает текст со скана страницы.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, image []byte, opt Options) (string, error)
}

type Recognizers struct {
	Yandex Recognizer
	Gemini Recognizer
	OpenAI Recognizer
}

var ErrUnknownRecognizer = errors.New("unknown ocr engine; use 'yandex', 'gemini' or 'gpt'")

func (r *Recognizers) Get(name string) (Recognizer, error) {
	var rec Recognizer
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yandex":
		rec = r.Yandex
	case "gemini", "":
		rec = r.Gemini
	case "gpt", "openai":
		rec = r.OpenAI
	default:
		return nil, ErrUnknownRecognizer
	}
	if rec == nil {
		return nil, errors.New("ocr engine " + name + " is not configured")
	}
	return rec, nil
}
