package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"study-bot/api/internal/config"
	"study-bot/api/internal/ocr"
	"study-bot/api/internal/study"
)

var httpc = &http.Client{Timeout: 60 * time.Second}

// acceptScan распознаёт присланный скан и отдаёт текст в сессию.
func (r *Router) acceptScan(chatID int64, fileID string) {
	s := r.session(chatID)
	r.send(chatID, "📷 Scan received, recognizing text...")
	go r.recognize(chatID, fileID, s.ctrl.Recognized())
}

// recognize скачивает файл, распознаёт и вызывает onDone с текстом.
func (r *Router) recognize(chatID int64, fileID string, onDone study.RecognizedFunc) {
	ctx := config.WithFields(context.Background(), map[string]any{"chat_id": chatID})
	log := config.WithContext(ctx)

	if r.OCR == nil {
		r.send(chatID, "❌ Scanning is not configured.")
		return
	}
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		log.WithError(err).Warn("telegram: get file")
		r.send(chatID, "❌ Could not get the file: "+err.Error())
		return
	}

	dl := r.Download
	if dl == nil {
		dl = download
	}
	img, err := dl(ctx, url)
	if err != nil {
		log.WithError(err).Warn("telegram: download")
		r.send(chatID, "❌ Could not download the file: "+err.Error())
		return
	}

	text, err := r.OCR.Recognize(ctx, img, ocr.Options{Langs: r.OCRLangs})
	if err != nil {
		log.WithError(err).WithField("ocr", r.OCR.Name()).Warn("telegram: recognize")
		r.send(chatID, "❌ Could not recognize text: "+err.Error())
		return
	}
	if text == "" {
		r.send(chatID, "No text found on the image.")
		return
	}
	log.WithField("chars", len(text)).Info("telegram: text recognized")

	rctx, cancel := r.requestContext(chatID)
	defer cancel()
	for range onDone(rctx, text) {
	}
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
