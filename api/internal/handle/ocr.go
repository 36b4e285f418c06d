package handle

import (
	"encoding/json"
	"net/http"

	"study-bot/api/internal/config"
	"study-bot/api/internal/ocr"
	"study-bot/api/internal/util"
)

type OCRRequest struct {
	Engine string   `json:"engine"`
	Image  string   `json:"image"` // base64 или data URL
	Langs  []string `json:"langs,omitempty"`
	Model  string   `json:"model,omitempty"`
}

type OCRResponse struct {
	Text   string `json:"text"`
	Engine string `json:"engine"`
}

func (h *Handle) Recognize(w http.ResponseWriter, r *http.Request) {
	var req OCRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	img, _, err := util.DecodeBase64MaybeDataURL(req.Image)
	if err != nil || len(img) == 0 {
		http.Error(w, "bad image: base64 expected", http.StatusBadRequest)
		return
	}

	rec, err := h.recs.Get(req.Engine)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	text, err := rec.Recognize(ctx, img, ocr.Options{Langs: req.Langs, Model: req.Model})
	if err != nil {
		config.WithContext(ctx).WithError(err).WithField("ocr", rec.Name()).Warn("recognize failed")
		http.Error(w, "ocr error: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, OCRResponse{Text: text, Engine: rec.Name()})
}
