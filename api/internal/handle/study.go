package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"study-bot/api/internal/config"
	"study-bot/api/internal/llm"
	"study-bot/api/internal/study"
)

type PromptRequest struct {
	Topic   string        `json:"topic"`
	Toggles study.Toggles `json:"toggles"`
}

type PromptResponse struct {
	Outcome string `json:"outcome"`
	Prompt  string `json:"prompt,omitempty"`
}

// Prompt показывает, какую инструкцию получит модель.
func (h *Handle) Prompt(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	p := study.Build(req.Topic, req.Toggles)
	writeJSON(w, http.StatusOK, PromptResponse{Outcome: p.Outcome.String(), Prompt: p.Text})
}

type GenerateRequest struct {
	LLMName string        `json:"llm_name"`
	Topic   string        `json:"topic"`
	Toggles study.Toggles `json:"toggles"`
}

type GenerateResponse struct {
	Phase     string `json:"phase"`
	Text      string `json:"text"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// Generate прогоняет один запрос через свежий контроллер и ждёт итог.
func (h *Handle) Generate(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	eng, err := h.engine(req.LLMName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	ctrl := study.NewController(eng, study.WithCommitPolicy(h.policy))
	st, ok := <-ctrl.Submit(ctx, req.Topic, req.Toggles)
	if !ok {
		http.Error(w, "topic is empty", http.StatusBadRequest)
		return
	}

	resp := GenerateResponse{
		Phase:     st.Phase.String(),
		Text:      st.Text,
		ErrorKind: study.ErrorKind(st.Err),
	}
	code := http.StatusOK
	switch resp.ErrorKind {
	case "":
	case "validation":
		code = http.StatusUnprocessableEntity
	default:
		log.WithError(st.Err).WithField("engine", eng.Name()).Warn("generate failed")
		code = http.StatusBadGateway
	}
	writeJSON(w, code, resp)
}

func (h *Handle) engine(name string) (llm.Engine, error) {
	if strings.TrimSpace(name) == "" && h.def != nil {
		return h.def, nil
	}
	return h.engs.GetEngine(name)
}

func (h *Handle) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(ctx, h.timeout)
	}
	return context.WithCancel(ctx)
}
