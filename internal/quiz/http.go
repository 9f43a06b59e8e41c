package quiz

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/authz"
	httperrors "github.com/quizdeck/quizdeck/pkg/http/errors"
)

// HTTPHandlers provides the REST endpoints for quiz authoring.
type HTTPHandlers struct {
	svc    *Service
	guard  *authz.Guard
	logger zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for quiz endpoints.
func NewHTTPHandlers(svc *Service, guard *authz.Guard, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, guard: guard, logger: logger}
}

type quizRequest struct {
	Title    string     `json:"title"`
	Desc     string     `json:"desc"`
	AuthorID *uuid.UUID `json:"authorId,omitempty"`
}

type questionRequest struct {
	Text           string          `json:"text"`
	Sequence       int32           `json:"sequence"`
	Points         float64         `json:"points"`
	QuestionTypeID uuid.UUID       `json:"questionTypeId"`
	AnswerOptions  []optionRequest `json:"answerOptions"`
}

type optionRequest struct {
	ID        *uuid.UUID `json:"id,omitempty"`
	Text      string     `json:"optionText"`
	Sequence  int32      `json:"sequence"`
	IsCorrect bool       `json:"isCorrect"`
}

func (q questionRequest) toInput() QuestionInput {
	input := QuestionInput{
		Text:     q.Text,
		Sequence: q.Sequence,
		Points:   q.Points,
		TypeID:   q.QuestionTypeID,
		Options:  make([]OptionInput, 0, len(q.AnswerOptions)),
	}
	for _, opt := range q.AnswerOptions {
		input.Options = append(input.Options, opt.toInput())
	}
	return input
}

func (o optionRequest) toInput() OptionInput {
	return OptionInput{ID: o.ID, Text: o.Text, Sequence: o.Sequence, IsCorrect: o.IsCorrect}
}

// CreateQuiz handles POST /v1/quizzes. The author defaults to the caller;
// an explicit authorId in the payload is honored and 404s when unknown.
func (h *HTTPHandlers) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	authorID := auth.UserIDFromContext(r.Context())
	if req.AuthorID != nil {
		authorID = *req.AuthorID
	}

	q, err := h.svc.CreateQuiz(r.Context(), authorID, req.Title, req.Desc)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, q)
}

// ListQuizzes handles GET /v1/quizzes.
func (h *HTTPHandlers) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.svc.ListQuizzes(r.Context())
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quizzes)
}

// ListMyQuizzes handles GET /v1/quizzes/my.
func (h *HTTPHandlers) ListMyQuizzes(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	quizzes, err := h.svc.ListMyQuizzes(r.Context(), userID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quizzes)
}

// GetQuiz handles GET /v1/quizzes/{id}. ?includeQuestions=true embeds the
// full question tree.
func (h *HTTPHandlers) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	includeQuestions := r.URL.Query().Get("includeQuestions") == "true"
	q, err := h.svc.GetQuiz(r.Context(), quizID, includeQuestions)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

// UpdateQuiz handles PUT /v1/quizzes/{id}. Owner only.
func (h *HTTPHandlers) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if err := h.guard.RequireQuizOwner(r.Context(), userID, authz.ActionUpdateQuiz, quizID); err != nil {
		httperrors.RespondKind(w, err)
		return
	}

	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	q, err := h.svc.UpdateQuiz(r.Context(), quizID, req.Title, req.Desc)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

// DeleteQuiz handles DELETE /v1/quizzes/{id}. Owner only.
func (h *HTTPHandlers) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if err := h.guard.RequireQuizOwner(r.Context(), userID, authz.ActionDeleteQuiz, quizID); err != nil {
		httperrors.RespondKind(w, err)
		return
	}

	if err := h.svc.DeleteQuiz(r.Context(), quizID); err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListQuestions handles GET /v1/quizzes/{id}/questions.
func (h *HTTPHandlers) ListQuestions(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	questions, err := h.svc.ListQuestions(r.Context(), quizID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

// CreateQuestion handles POST /v1/quizzes/{id}/questions. Owner only.
func (h *HTTPHandlers) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if err := h.guard.RequireQuizOwner(r.Context(), userID, authz.ActionEditQuestions, quizID); err != nil {
		httperrors.RespondKind(w, err)
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	q, err := h.svc.CreateQuestion(r.Context(), quizID, req.toInput())
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, q)
}

// UpdateQuestion handles PUT /v1/quizzes/{id}/questions/{questionId}. The
// payload's option set fully replaces the stored one: options with ids are
// updated, options without ids created, absent options deleted. Owner only.
func (h *HTTPHandlers) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	questionID, ok := pathUUID(w, r, "questionId")
	if !ok {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if err := h.guard.RequireQuizOwner(r.Context(), userID, authz.ActionEditQuestions, quizID); err != nil {
		httperrors.RespondKind(w, err)
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	q, err := h.svc.ReconcileQuestion(r.Context(), quizID, questionID, req.toInput())
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

// GetQuestion handles GET /v1/questions/{id}.
func (h *HTTPHandlers) GetQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	q, err := h.svc.GetQuestion(r.Context(), questionID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

// DeleteQuestion handles DELETE /v1/questions/{id}. Owner only.
func (h *HTTPHandlers) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	existing, err := h.svc.GetQuestion(r.Context(), questionID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if err := h.guard.RequireQuizOwner(r.Context(), userID, authz.ActionEditQuestions, existing.QuizID); err != nil {
		httperrors.RespondKind(w, err)
		return
	}

	if err := h.svc.DeleteQuestion(r.Context(), questionID); err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateOptions handles POST /v1/questions/{id}/options. Accepts a single
// option object or an array. Owner only.
func (h *HTTPHandlers) CreateOptions(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	opts, ok := h.decodeOptions(w, r)
	if !ok {
		return
	}

	if !h.requireQuestionOwner(w, r, questionID) {
		return
	}

	created, err := h.svc.CreateOptions(r.Context(), questionID, opts)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateOptions handles PUT /v1/questions/{id}/options. Every option in the
// payload must carry an id. Owner only.
func (h *HTTPHandlers) UpdateOptions(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	opts, ok := h.decodeOptions(w, r)
	if !ok {
		return
	}

	if !h.requireQuestionOwner(w, r, questionID) {
		return
	}

	updated, err := h.svc.UpdateOptions(r.Context(), questionID, opts)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// GetOption handles GET /v1/options/{id}.
func (h *HTTPHandlers) GetOption(w http.ResponseWriter, r *http.Request) {
	optionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	opt, err := h.svc.GetOption(r.Context(), optionID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, opt)
}

// UpdateOption handles PUT /v1/options/{id}. Owner only.
func (h *HTTPHandlers) UpdateOption(w http.ResponseWriter, r *http.Request) {
	optionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	existing, err := h.svc.GetOption(r.Context(), optionID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	if !h.requireQuestionOwner(w, r, existing.QuestionID) {
		return
	}

	var req optionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	opt, err := h.svc.UpdateOption(r.Context(), optionID, req.toInput())
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, opt)
}

// DeleteOption handles DELETE /v1/options/{id}. Owner only.
func (h *HTTPHandlers) DeleteOption(w http.ResponseWriter, r *http.Request) {
	optionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	existing, err := h.svc.GetOption(r.Context(), optionID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	if !h.requireQuestionOwner(w, r, existing.QuestionID) {
		return
	}

	if err := h.svc.DeleteOption(r.Context(), optionID); err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListQuestionTypes handles GET /v1/question-types.
func (h *HTTPHandlers) ListQuestionTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.ListQuestionTypes(r.Context())
	if err != nil {
		httperrors.RespondKind(w, err)
		return
	}
	respondJSON(w, http.StatusOK, types)
}

func (h *HTTPHandlers) requireQuestionOwner(w http.ResponseWriter, r *http.Request, questionID uuid.UUID) bool {
	existing, err := h.svc.GetQuestion(r.Context(), questionID)
	if err != nil {
		httperrors.RespondKind(w, err)
		return false
	}
	userID := auth.UserIDFromContext(r.Context())
	if err := h.guard.RequireQuizOwner(r.Context(), userID, authz.ActionEditQuestions, existing.QuizID); err != nil {
		httperrors.RespondKind(w, err)
		return false
	}
	return true
}

// decodeOptions accepts either one option object or an array of them.
func (h *HTTPHandlers) decodeOptions(w http.ResponseWriter, r *http.Request) ([]OptionInput, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return nil, false
	}

	var reqs []optionRequest
	if err := json.Unmarshal(raw, &reqs); err != nil {
		var single optionRequest
		if err := json.Unmarshal(raw, &single); err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
			return nil, false
		}
		reqs = []optionRequest{single}
	}

	opts := make([]OptionInput, 0, len(reqs))
	for _, req := range reqs {
		opts = append(opts, req.toInput())
	}
	return opts, true
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
