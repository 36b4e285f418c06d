package handle

import (
	"encoding/json"
	"net/http"
	"time"

	"study-bot/api/internal/llm"
	"study-bot/api/internal/ocr"
	"study-bot/api/internal/study"
)

type Handle struct {
	engs *llm.Engines
	def  llm.Engine
	recs *ocr.Recognizers

	policy  study.CommitPolicy
	timeout time.Duration
}

type Option func(*Handle)

func WithCommitPolicy(p study.CommitPolicy) Option {
	return func(h *Handle) { h.policy = p }
}

// WithTimeout ограничивает время генерации и распознавания; 0: без ограничения.
func WithTimeout(d time.Duration) Option {
	return func(h *Handle) { h.timeout = d }
}

func New(engs *llm.Engines, def llm.Engine, recs *ocr.Recognizers, opts ...Option) *Handle {
	h := &Handle{
		engs: engs,
		def:  def,
		recs: recs,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
