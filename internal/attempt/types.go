package attempt

import (
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/quiz"
)

// Correctness is the grading state of a single response. Free-text answers
// stay Ungraded until a human grades them; there is no automatic grading for
// SHORT_TEXT or ESSAY questions.
type Correctness string

const (
	CorrectnessCorrect   Correctness = "correct"
	CorrectnessIncorrect Correctness = "incorrect"
	CorrectnessUngraded  Correctness = "ungraded"
)

// FromBoolPtr converts the nullable DB column into a Correctness.
func FromBoolPtr(b *bool) Correctness {
	switch {
	case b == nil:
		return CorrectnessUngraded
	case *b:
		return CorrectnessCorrect
	default:
		return CorrectnessIncorrect
	}
}

// BoolPtr converts a Correctness back to the nullable DB representation.
func (c Correctness) BoolPtr() *bool {
	switch c {
	case CorrectnessCorrect:
		v := true
		return &v
	case CorrectnessIncorrect:
		v := false
		return &v
	default:
		return nil
	}
}

// Attempt is one user's traversal of a quiz, from start to finish.
type Attempt struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	QuizID     uuid.UUID  `json:"quizId"`
	SessionID  uuid.UUID  `json:"sessionId"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt"`
	Score      *int32     `json:"score"`
}

// Summary is an attempt joined with its quiz metadata for listings.
type Summary struct {
	ID         uuid.UUID  `json:"id"`
	QuizID     uuid.UUID  `json:"quizId"`
	QuizTitle  string     `json:"quizTitle"`
	QuizDesc   string     `json:"quizDesc"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt"`
	Score      *int32     `json:"score"`
}

// Response is a user's submitted answer to one question within an attempt.
type Response struct {
	ID               uuid.UUID   `json:"id"`
	AttemptID        uuid.UUID   `json:"attemptId"`
	QuestionID       uuid.UUID   `json:"questionId"`
	SelectedOptionID *uuid.UUID  `json:"selectedOptionId"`
	TextAnswer       *string     `json:"textAnswer"`
	Correctness      Correctness `json:"correctness"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// Session associates attempts with a session identity. Created on demand with
// a fixed TTL when a user starts an attempt without an active session.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NextQuestion is the poll result for the next unanswered question. Done is
// the sentinel for an exhausted attempt; Question is nil in that case.
type NextQuestion struct {
	Done     bool           `json:"done"`
	Question *quiz.Question `json:"question,omitempty"`
}

// Progress counts an attempt's answered and correct responses.
type Progress struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// ReviewItem is one question's row in the post-attempt review.
type ReviewItem struct {
	QuestionID       uuid.UUID  `json:"questionId"`
	QuestionText     string     `json:"questionText"`
	SelectedOptionID *uuid.UUID `json:"selectedOptionId"`
	SelectedOption   *string    `json:"selectedOption"`
	IsCorrect        bool       `json:"isCorrect"`
	CorrectOptionID  *uuid.UUID `json:"correctOptionId"`
	CorrectOption    *string    `json:"correctOption"`
}

// Result is the full review of a finished (or in-flight) attempt.
type Result struct {
	Score        *int32       `json:"score"`
	FinishedAt   *time.Time   `json:"finishedAt"`
	PointsEarned float64      `json:"pointsEarned"`
	Results      []ReviewItem `json:"results"`
}
