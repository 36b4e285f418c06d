package handle

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"study-bot/api/internal/httpserver"
)

func Routes(h *Handle) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.Healthz("ok"))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/study/prompt", h.Prompt)
		r.Post("/study/generate", h.Generate)
		r.Post("/ocr/recognize", h.Recognize)
	})
	return r
}
