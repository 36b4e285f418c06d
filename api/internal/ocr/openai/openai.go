package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"study-bot/api/internal/ocr"
	"study-bot/api/internal/util"
)

const transcribeInstruction = `You transcribe a PHOTO or SCAN of a study document.
Return ONLY the readable text of the page, in reading order, preserving paragraphs and line breaks.
Do not summarize, translate, explain or add anything. If there is no readable text, return an empty answer.`

type Engine struct {
	client *goopenai.Client
	apiKey string
	Model  string
}

// New; baseURL пустой: api.openai.com.
func New(apiKey, model, baseURL string) *Engine {
	apiKey = strings.TrimSpace(apiKey)
	cfg := goopenai.DefaultConfig(apiKey)
	if b := strings.TrimSpace(baseURL); b != "" {
		cfg.BaseURL = strings.TrimRight(b, "/")
	}
	return &Engine{
		client: goopenai.NewClientWithConfig(cfg),
		apiKey: apiKey,
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string { return "gpt" }

// Recognize: транскрипция картинки через vision chat completions.
// PDF модель по image_url не принимает.
func (e *Engine) Recognize(ctx context.Context, image []byte, opt ocr.Options) (string, error) {
	if e.apiKey == "" {
		return "", errors.New("OPENAI_API_KEY is empty")
	}
	if len(image) == 0 {
		return "", errors.New("openai ocr: empty image")
	}
	mime := util.PickMIME("", "", image)
	if !isImageMIME(mime) {
		return "", fmt.Errorf("openai ocr: unsupported file type %s", mime)
	}
	model := e.Model
	if opt.Model != "" {
		model = opt.Model
	}

	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
	resp, err := e.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: transcribeInstruction},
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{Type: goopenai.ChatMessagePartTypeText, Text: languageHint(opt.Langs)},
					{Type: goopenai.ChatMessagePartTypeImageURL, ImageURL: &goopenai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: goopenai.ImageURLDetailHigh,
					}},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai ocr: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return util.StripCodeFences(strings.TrimSpace(resp.Choices[0].Message.Content)), nil
}

func isImageMIME(m string) bool {
	switch m {
	case "image/jpeg", "image/png", "image/webp", "image/gif":
		return true
	}
	return false
}

func languageHint(langs []string) string {
	if len(langs) == 0 {
		return "Transcribe the page."
	}
	return "Transcribe the page. Expected languages: " + strings.Join(langs, ", ") + "."
}
