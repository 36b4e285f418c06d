package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	llmgemini "study-bot/api/internal/llm/gemini"
	"study-bot/api/internal/ocr"
	"study-bot/api/internal/util"
)

const transcribeInstruction = `You transcribe a PHOTO or SCAN of a study document.
Return ONLY the readable text of the page, in reading order, preserving paragraphs and line breaks.
Do not summarize, translate, explain or add anything. If there is no readable text, return an empty answer.`

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string { return "gemini" }

// Recognize: транскрипция картинки через vision-модель.
func (e *Engine) Recognize(ctx context.Context, image []byte, opt ocr.Options) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	if len(image) == 0 {
		return "", errors.New("gemini ocr: empty image")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	model := e.Model
	if opt.Model != "" {
		model = opt.Model
	}
	m := cl.GenerativeModel(model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{Temperature: ptrFloat32(0)}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(transcribeInstruction)}}

	resp, err := m.GenerateContent(ctx,
		genai.Text(languageHint(opt.Langs)),
		&genai.Blob{MIMEType: util.PickMIME("", "", image), Data: image},
	)
	if err != nil {
		return "", fmt.Errorf("gemini ocr: %w", err)
	}
	return util.StripCodeFences(llmgemini.FirstText(resp)), nil
}

func languageHint(langs []string) string {
	if len(langs) == 0 {
		return "Transcribe the page."
	}
	return "Transcribe the page. Expected languages: " + strings.Join(langs, ", ") + "."
}

func ptrFloat32(v float32) *float32 { return &v }
