package quiz

import (
	"time"

	"github.com/google/uuid"
)

// Question type codes seeded by db/migrations.
const (
	TypeMCQ       = "MCQ"
	TypeShortText = "SHORT_TEXT"
	TypeEssay     = "ESSAY"
)

// Quiz is an authored quiz owning an ordered set of questions.
type Quiz struct {
	ID        uuid.UUID  `json:"id"`
	AuthorID  uuid.UUID  `json:"authorId"`
	Title     string     `json:"title"`
	Desc      string     `json:"desc"`
	CreatedAt time.Time  `json:"createdAt"`
	Questions []Question `json:"questions,omitempty"`
}

// Question belongs to a quiz; Sequence orders it within the quiz.
type Question struct {
	ID       uuid.UUID      `json:"id"`
	QuizID   uuid.UUID      `json:"quizId"`
	TypeID   uuid.UUID      `json:"questionTypeId"`
	TypeCode string         `json:"questionTypeCode,omitempty"`
	Text     string         `json:"text"`
	Sequence int32          `json:"sequence"`
	Points   float64        `json:"points"`
	Options  []AnswerOption `json:"answerOptions"`
}

// AnswerOption is one selectable choice of a question.
type AnswerOption struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"questionId"`
	Text       string    `json:"optionText"`
	Sequence   int32     `json:"sequence"`
	IsCorrect  bool      `json:"isCorrect"`
}

// QuestionType is one of the seeded grading categories.
type QuestionType struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
}

// QuestionInput carries an incoming question create/update payload.
type QuestionInput struct {
	Text     string
	Sequence int32
	Points   float64
	TypeID   uuid.UUID
	Options  []OptionInput
}

// OptionInput carries an incoming option payload. A nil ID means create;
// during reconciliation an existing option absent from the payload is deleted.
type OptionInput struct {
	ID        *uuid.UUID
	Text      string
	Sequence  int32
	IsCorrect bool
}
