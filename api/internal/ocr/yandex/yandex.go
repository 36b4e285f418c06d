package yandex

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"study-bot/api/internal/ocr"
	"study-bot/api/internal/util"
)

const defaultOCRURL = "https://ocr.api.cloud.yandex.net/ocr/v1/recognizeText"

type Engine struct {
	iamc     *IamClient
	folderID string
	url      string
	httpc    *http.Client
}

func New(oauth2Token, folderID string) *Engine {
	return &Engine{
		iamc:     NewIamClient(oauth2Token),
		folderID: folderID,
		url:      defaultOCRURL,
		httpc:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *Engine) Name() string { return "yandex" }

type request struct {
	Content       string   `json:"content"`
	MimeType      string   `json:"mimeType,omitempty"`      // "JPEG" | "PNG" | "PDF"
	LanguageCodes []string `json:"languageCodes,omitempty"` // ["ru","en"]
	Model         string   `json:"model,omitempty"`         // e.g. "page", "handwritten"
}

type textAnnotation struct {
	FullText string `json:"fullText,omitempty"`
	Blocks   []struct {
		Lines []struct {
			Text string `json:"text,omitempty"`
		} `json:"lines,omitempty"`
	} `json:"blocks,omitempty"`
}

type response struct {
	Result *struct {
		TextAnnotation *textAnnotation `json:"textAnnotation,omitempty"`
		Page           string          `json:"page,omitempty"`
	} `json:"result,omitempty"`
}

func (r *response) GetTextAnnotation() *textAnnotation {
	if r == nil || r.Result == nil {
		return nil
	}
	return r.Result.TextAnnotation
}

func (e *Engine) Recognize(ctx context.Context, image []byte, opt ocr.Options) (string, error) {
	if len(image) == 0 {
		return "", errors.New("yandex ocr: empty image")
	}
	reqBody := request{
		Content:       base64.StdEncoding.EncodeToString(image),
		MimeType:      util.SniffMimeForOCR(image),
		LanguageCodes: opt.Langs,
		Model:         "page",
	}
	if opt.Model != "" {
		reqBody.Model = opt.Model
	}
	payload, _ := json.Marshal(reqBody)

	resp, err := e.do(ctx, payload)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// один ретрай со свежим IAM
		resp.Body.Close()
		e.iamc.Invalidate()
		if resp, err = e.do(ctx, payload); err != nil {
			return "", err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("yandex ocr %d: %s", resp.StatusCode, string(x))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	ta := out.GetTextAnnotation()
	if ta == nil {
		return "", nil
	}
	if t := strings.TrimSpace(ta.FullText); t != "" {
		return t, nil
	}
	// fallback: строки из блоков
	var lines []string
	for _, b := range ta.Blocks {
		for _, l := range b.Lines {
			if s := strings.TrimSpace(l.Text); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (e *Engine) do(ctx context.Context, payload []byte) (*http.Response, error) {
	iamToken, err := e.iamc.Token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+iamToken)
	req.Header.Set("x-folder-id", e.folderID)
	return e.httpc.Do(req)
}
