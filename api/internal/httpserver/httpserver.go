package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"study-bot/api/internal/config"
)

const shutdownTimeout = 10 * time.Second

func New(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run слушает addr до отмены ctx, затем мягко гасит сервер.
func Run(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		config.Logger.WithField("addr", srv.Addr).Info("http: listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	config.Logger.Info("http: shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return <-errc
}

// Healthz: простой обработчик для проверок живости.
func Healthz(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}
