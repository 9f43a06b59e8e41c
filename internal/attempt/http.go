package attempt

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/errs"
	httperrors "github.com/quizdeck/quizdeck/pkg/http/errors"
)

// HTTPHandlers provides the REST endpoints for the attempt lifecycle.
type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for attempt endpoints.
func NewHTTPHandlers(svc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, logger: logger}
}

type submitRequest struct {
	QuestionID       uuid.UUID  `json:"questionId"`
	SelectedOptionID *uuid.UUID `json:"selectedOptionId,omitempty"`
	TextAnswer       *string    `json:"textAnswer,omitempty"`
}

// Start handles POST /v1/quizzes/{id}/attempts.
func (h *HTTPHandlers) Start(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	a, err := h.svc.Start(r.Context(), userID, quizID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

// List handles GET /v1/attempts. Returns the caller's attempts, newest first.
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	attempts, err := h.svc.List(r.Context(), userID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, attempts)
}

// Get handles GET /v1/attempts/{id}.
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := h.ownAttempt(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// Next handles GET /v1/attempts/{id}/next.
func (h *HTTPHandlers) Next(w http.ResponseWriter, r *http.Request) {
	a, ok := h.ownAttempt(w, r)
	if !ok {
		return
	}

	next, err := h.svc.Next(r.Context(), a.ID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, next)
}

// Submit handles POST /v1/attempts/{id}/responses.
func (h *HTTPHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	a, ok := h.ownAttempt(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.QuestionID == uuid.Nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, "questionId is required")
		return
	}

	resp, err := h.svc.Submit(r.Context(), a.ID, req.QuestionID, req.SelectedOptionID, req.TextAnswer)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// Progress handles GET /v1/attempts/{id}/progress.
func (h *HTTPHandlers) Progress(w http.ResponseWriter, r *http.Request) {
	a, ok := h.ownAttempt(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Progress(r.Context(), a.ID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Finish handles POST /v1/attempts/{id}/finish.
func (h *HTTPHandlers) Finish(w http.ResponseWriter, r *http.Request) {
	a, ok := h.ownAttempt(w, r)
	if !ok {
		return
	}

	finished, err := h.svc.Finish(r.Context(), a.ID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, finished)
}

// Result handles GET /v1/attempts/{id}/result.
func (h *HTTPHandlers) Result(w http.ResponseWriter, r *http.Request) {
	a, ok := h.ownAttempt(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Result(r.Context(), a.ID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ownAttempt resolves the {id} path parameter and enforces that the attempt
// belongs to the caller.
func (h *HTTPHandlers) ownAttempt(w http.ResponseWriter, r *http.Request) (Attempt, bool) {
	attemptID, ok := pathUUID(w, r, "id")
	if !ok {
		return Attempt{}, false
	}

	a, err := h.svc.Get(r.Context(), attemptID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return Attempt{}, false
	}

	userID := auth.UserIDFromContext(r.Context())
	if a.UserID != userID {
		httperrors.RespondKind(w, errs.Forbiddenf("attempt %s does not belong to the caller", attemptID))
		return Attempt{}, false
	}
	return a, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, "Invalid "+name+" path parameter")
		return uuid.Nil, false
	}
	return id, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
