package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"flag-quiz-service/internal/app"
)

// NewRouter wires health, REST and websocket endpoints.
func NewRouter(service *app.GameService, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", NewWSHandler(service, logger).ServeWS)
	NewRESTHandler(service, logger).Routes(r)
	return r
}
