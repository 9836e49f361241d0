package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/techquiz/internal/logging"
	"github.com/gokatarajesh/techquiz/internal/question"
	httperrors "github.com/gokatarajesh/techquiz/pkg/http/errors"
)

// ClientIDHeader carries the caller's opaque, browser-local identity.
const ClientIDHeader = "X-Client-ID"

// Catalog is the question side the handlers need besides sessions.
type Catalog interface {
	Drawer
	Catalog(ctx context.Context) (map[string][]string, error)
}

// HTTPHandlers provides REST endpoints for catalog, draws and sessions.
type HTTPHandlers struct {
	service   *Service
	questions Catalog
	logger    zerolog.Logger
}

func NewHTTPHandlers(service *Service, questions Catalog, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service:   service,
		questions: questions,
		logger:    logger.With().Str("component", "quiz_http").Logger(),
	}
}

// Register mounts the routes on r.
func (h *HTTPHandlers) Register(r *mux.Router) {
	r.HandleFunc("/v1/catalog", h.GetCatalog).Methods(http.MethodGet)
	r.HandleFunc("/v1/draw", h.Draw).Methods(http.MethodPost)
	r.HandleFunc("/v1/sessions", h.StartSession).Methods(http.MethodPost)
	r.HandleFunc("/v1/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/v1/sessions/{id}/next", h.NextQuestion).Methods(http.MethodPost)
	r.HandleFunc("/v1/sessions/{id}", h.ResetSession).Methods(http.MethodDelete)
	r.HandleFunc("/v1/progress", h.ResetProgress).Methods(http.MethodDelete)
}

type drawPayload struct {
	Selections []question.CategorySelection `json:"selections"`
	Limit      *int                         `json:"limit"`
}

// SessionResponse is the client view of a session. Unshown questions stay hidden.
type SessionResponse struct {
	ID        string             `json:"id"`
	Limit     int                `json:"limit"`
	Total     int                `json:"total"`
	Shown     int                `json:"shown"`
	Finished  bool               `json:"finished"`
	Shortfall int                `json:"shortfall"`
	Current   *question.Question `json:"current"`
}

type resetResponse struct {
	Missed int `json:"missed"`
}

// GetCatalog handles GET /v1/catalog
func (h *HTTPHandlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.questions.Catalog(r.Context())
	if err != nil {
		h.requestLogger(r).Error().Err(err).Msg("catalog fetch failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeCatalogFetchFailed, "Could not load the question catalog")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": catalog})
}

// Draw handles POST /v1/draw. The client id is optional here; without it the
// selection runs on store seeds only.
func (h *HTTPHandlers) Draw(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeDraw(w, r)
	if !ok {
		return
	}

	result, err := h.questions.Draw(r.Context(), question.DrawRequest{
		UserID:     clientID(r),
		Selections: payload.Selections,
		Limit:      *payload.Limit,
	})
	if err != nil {
		h.respondDrawError(w, r, err, httperrors.ErrCodeDrawFailed)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// StartSession handles POST /v1/sessions
func (h *HTTPHandlers) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireClientID(w, r)
	if !ok {
		return
	}
	payload, ok := h.decodeDraw(w, r)
	if !ok {
		return
	}

	session, err := h.service.Start(r.Context(), StartRequest{
		UserID:     userID,
		Selections: payload.Selections,
		Limit:      *payload.Limit,
	})
	if err != nil {
		h.respondDrawError(w, r, err, httperrors.ErrCodeSessionStartFailed)
		return
	}
	respondJSON(w, http.StatusCreated, toSessionResponse(session))
}

// GetSession handles GET /v1/sessions/{id}
func (h *HTTPHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionParams(w, r)
	if !ok {
		return
	}
	session, err := h.service.Get(r.Context(), id, userID)
	if err != nil {
		h.respondSessionError(w, r, err, httperrors.ErrCodeInternalError)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

// NextQuestion handles POST /v1/sessions/{id}/next. An exhausted session
// answers 200 with finished set and no current question.
func (h *HTTPHandlers) NextQuestion(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionParams(w, r)
	if !ok {
		return
	}
	session, err := h.service.Next(r.Context(), id, userID)
	if err != nil && !errors.Is(err, ErrSessionFinished) {
		h.respondSessionError(w, r, err, httperrors.ErrCodeNextFailed)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

// ResetSession handles DELETE /v1/sessions/{id}
func (h *HTTPHandlers) ResetSession(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionParams(w, r)
	if !ok {
		return
	}
	missed, err := h.service.Reset(r.Context(), id, userID)
	if err != nil {
		h.respondSessionError(w, r, err, httperrors.ErrCodeResetFailed)
		return
	}
	respondJSON(w, http.StatusOK, resetResponse{Missed: missed})
}

// ResetProgress handles DELETE /v1/progress
func (h *HTTPHandlers) ResetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireClientID(w, r)
	if !ok {
		return
	}
	if err := h.service.ForgetProgress(r.Context(), userID); err != nil {
		h.requestLogger(r).Error().Err(err).Str("user_id", userID).Msg("progress reset failed")
		httperrors.RespondInternalError(w, "Could not reset progress")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandlers) decodeDraw(w http.ResponseWriter, r *http.Request) (drawPayload, bool) {
	var payload drawPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return payload, false
	}
	if payload.Limit == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "limit is required", "limit")
		return payload, false
	}
	if *payload.Limit < 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "limit must not be negative", "limit")
		return payload, false
	}
	for _, sel := range payload.Selections {
		if strings.TrimSpace(sel.Category) == "" {
			httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "every selection needs a category", "selections")
			return payload, false
		}
	}
	return payload, true
}

func (h *HTTPHandlers) respondDrawError(w http.ResponseWriter, r *http.Request, err error, code string) {
	if errors.Is(err, question.ErrInvalidLimit) {
		httperrors.RespondValidationError(w, httperrors.ErrCodeLimitOutOfRange, err.Error(), "limit")
		return
	}
	h.requestLogger(r).Error().Err(err).Msg("draw failed")
	httperrors.RespondError(w, http.StatusBadGateway, code, "Could not load questions")
}

func (h *HTTPHandlers) respondSessionError(w http.ResponseWriter, r *http.Request, err error, code string) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
	case errors.Is(err, ErrSessionBusy):
		httperrors.RespondConflict(w, httperrors.ErrCodeSessionBusy, "Session is being updated, retry shortly")
	default:
		h.requestLogger(r).Error().Err(err).Msg("session operation failed")
		httperrors.RespondError(w, http.StatusInternalServerError, code, "Session operation failed")
	}
}

func toSessionResponse(s *Session) SessionResponse {
	resp := SessionResponse{
		ID:        s.ID.String(),
		Limit:     s.Limit,
		Total:     len(s.Questions),
		Shown:     s.Shown(),
		Finished:  s.Finished,
		Shortfall: s.Shortfall,
	}
	if q, ok := s.Current(); ok {
		resp.Current = &q
	}
	return resp
}

func clientID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(ClientIDHeader))
}

func requireClientID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := clientID(r)
	if id == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeClientIDRequired, ClientIDHeader+" header is required")
		return "", false
	}
	return id, true
}

func sessionParams(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	userID, ok := requireClientID(w, r)
	if !ok {
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidSessionID, "Invalid session id")
		return "", uuid.Nil, false
	}
	return userID, id, true
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// requestLogger prefers the request-scoped logger set by the server middleware.
func (h *HTTPHandlers) requestLogger(r *http.Request) *zerolog.Logger {
	logger := logging.FromContext(r.Context())
	if logger.GetLevel() == zerolog.Disabled {
		return &h.logger
	}
	return &logger
}
