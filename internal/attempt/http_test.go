package attempt

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/auth/jwt"
	"github.com/quizdeck/quizdeck/internal/errs"
)

func authedRequest(method, target string, body string, userID uuid.UUID) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	claims := &jwt.Claims{UserID: userID}
	return r.WithContext(auth.ContextWithClaims(r.Context(), claims))
}

func TestStartHandlerCreatesAttempt(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandlers(f.svc, zerolog.Nop())

	sess := Session{ID: uuid.New(), UserID: f.userID}
	f.sessions.On("ActiveForUser", mock.Anything, f.userID, mock.Anything).Return(sess, nil)
	f.store.On("Create", mock.Anything, f.userID, f.quizID, sess.ID).
		Return(Attempt{ID: f.attemptID, UserID: f.userID, QuizID: f.quizID, SessionID: sess.ID}, nil)

	r := authedRequest(http.MethodPost, "/v1/quizzes/"+f.quizID.String()+"/attempts", "", f.userID)
	r.SetPathValue("id", f.quizID.String())
	w := httptest.NewRecorder()

	h.Start(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	var got Attempt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, f.attemptID, got.ID)
}

func TestStartHandlerRejectsMalformedQuizID(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandlers(f.svc, zerolog.Nop())

	r := authedRequest(http.MethodPost, "/v1/quizzes/not-a-uuid/attempts", "", f.userID)
	r.SetPathValue("id", "not-a-uuid")
	w := httptest.NewRecorder()

	h.Start(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitHandlerReportsConflictOnDuplicate(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandlers(f.svc, zerolog.Nop())

	f.store.On("CreateResponse", mock.Anything, mock.Anything).
		Return(Response{}, errs.Conflictf("duplicate key"))

	body := `{"questionId":"` + f.q1.ID.String() + `","selectedOptionId":"` + f.optA.ID.String() + `"}`
	r := authedRequest(http.MethodPost, "/v1/attempts/"+f.attemptID.String()+"/responses", body, f.userID)
	r.SetPathValue("id", f.attemptID.String())
	w := httptest.NewRecorder()

	h.Submit(w, r)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already answered")
}

func TestSubmitHandlerRequiresQuestionID(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandlers(f.svc, zerolog.Nop())

	r := authedRequest(http.MethodPost, "/v1/attempts/"+f.attemptID.String()+"/responses", `{}`, f.userID)
	r.SetPathValue("id", f.attemptID.String())
	w := httptest.NewRecorder()

	h.Submit(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttemptEndpointsForbidForeignAttempts(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandlers(f.svc, zerolog.Nop())

	stranger := uuid.New()
	r := authedRequest(http.MethodGet, "/v1/attempts/"+f.attemptID.String()+"/progress", "", stranger)
	r.SetPathValue("id", f.attemptID.String())
	w := httptest.NewRecorder()

	h.Progress(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNextHandlerReturnsDoneSentinel(t *testing.T) {
	f := newFixture(t)
	h := NewHTTPHandlers(f.svc, zerolog.Nop())

	f.store.On("ListResponses", mock.Anything, f.attemptID).
		Return([]Response{
			{QuestionID: f.q1.ID, Correctness: CorrectnessCorrect},
			{QuestionID: f.q2.ID, Correctness: CorrectnessIncorrect},
		}, nil)

	r := authedRequest(http.MethodGet, "/v1/attempts/"+f.attemptID.String()+"/next-question", "", f.userID)
	r.SetPathValue("id", f.attemptID.String())
	w := httptest.NewRecorder()

	h.Next(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var got NextQuestion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Done)
	assert.Nil(t, got.Question)
}
