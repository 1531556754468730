package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flag-quiz-service/internal/app"
	"flag-quiz-service/internal/domain"
)

// RESTHandler exposes the game use cases as JSON endpoints.
type RESTHandler struct {
	service *app.GameService
	logger  *zap.Logger
}

func NewRESTHandler(service *app.GameService, logger *zap.Logger) *RESTHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RESTHandler{service: service, logger: logger}
}

// Routes mounts the game endpoints on r.
func (h *RESTHandler) Routes(r chi.Router) {
	r.Post("/games", h.createGame)
	r.Route("/games/{gameID}", func(r chi.Router) {
		r.Get("/", h.getGame)
		r.Delete("/", h.endGame)
		r.Post("/answers", h.submitAnswer)
		r.Post("/continue", h.acknowledge)
		r.Post("/restart", h.restart)
	})
}

type createGameRequest struct {
	CatalogID string `json:"catalogId"`
}

type answerRequest struct {
	Choice *int `json:"choice"`
}

type answerResponse struct {
	Outcome  domain.Outcome  `json:"outcome"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

func (h *RESTHandler) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	snap, err := h.service.NewGame(r.Context(), req.CatalogID)
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusCreated, snap)
}

func (h *RESTHandler) getGame(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, snap)
}

func (h *RESTHandler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Choice == nil {
		Error(w, http.StatusBadRequest, "body must be {\"choice\": <0..2>}")
		return
	}
	outcome, snap, err := h.service.SubmitAnswer(r.Context(), chi.URLParam(r, "gameID"), *req.Choice)
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, answerResponse{Outcome: outcome, Snapshot: snap})
}

func (h *RESTHandler) acknowledge(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Acknowledge(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, snap)
}

func (h *RESTHandler) restart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Restart(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, snap)
}

func (h *RESTHandler) endGame(w http.ResponseWriter, r *http.Request) {
	if err := h.service.End(r.Context(), chi.URLParam(r, "gameID")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RESTHandler) fail(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	Error(w, status, err.Error())
}

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrGameNotFound), errors.Is(err, domain.ErrCatalogNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidChoice):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrResultPending), errors.Is(err, domain.ErrNoPendingResult):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
