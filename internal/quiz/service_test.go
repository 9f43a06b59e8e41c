package quiz

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck/internal/errs"
)

type mockQuizStore struct {
	mock.Mock
}

func (m *mockQuizStore) Create(ctx context.Context, authorID uuid.UUID, title, desc string) (Quiz, error) {
	args := m.Called(ctx, authorID, title, desc)
	return args.Get(0).(Quiz), args.Error(1)
}

func (m *mockQuizStore) Get(ctx context.Context, quizID uuid.UUID) (Quiz, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).(Quiz), args.Error(1)
}

func (m *mockQuizStore) GetWithQuestions(ctx context.Context, quizID uuid.UUID) (Quiz, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).(Quiz), args.Error(1)
}

func (m *mockQuizStore) List(ctx context.Context) ([]Quiz, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Quiz), args.Error(1)
}

func (m *mockQuizStore) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]Quiz, error) {
	args := m.Called(ctx, authorID)
	return args.Get(0).([]Quiz), args.Error(1)
}

func (m *mockQuizStore) Update(ctx context.Context, quizID uuid.UUID, title, desc string) (Quiz, error) {
	args := m.Called(ctx, quizID, title, desc)
	return args.Get(0).(Quiz), args.Error(1)
}

func (m *mockQuizStore) Delete(ctx context.Context, quizID uuid.UUID) error {
	return m.Called(ctx, quizID).Error(0)
}

type mockQuestionStore struct {
	mock.Mock
}

func (m *mockQuestionStore) GetType(ctx context.Context, typeID uuid.UUID) (QuestionType, error) {
	args := m.Called(ctx, typeID)
	return args.Get(0).(QuestionType), args.Error(1)
}

func (m *mockQuestionStore) ListTypes(ctx context.Context) ([]QuestionType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]QuestionType), args.Error(1)
}

func (m *mockQuestionStore) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]Question, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).([]Question), args.Error(1)
}

func (m *mockQuestionStore) Get(ctx context.Context, questionID uuid.UUID) (Question, error) {
	args := m.Called(ctx, questionID)
	return args.Get(0).(Question), args.Error(1)
}

func (m *mockQuestionStore) Create(ctx context.Context, quizID uuid.UUID, input QuestionInput) (Question, error) {
	args := m.Called(ctx, quizID, input)
	return args.Get(0).(Question), args.Error(1)
}

func (m *mockQuestionStore) Reconcile(ctx context.Context, questionID uuid.UUID, input QuestionInput) (Question, error) {
	args := m.Called(ctx, questionID, input)
	return args.Get(0).(Question), args.Error(1)
}

func (m *mockQuestionStore) Delete(ctx context.Context, questionID uuid.UUID) error {
	return m.Called(ctx, questionID).Error(0)
}

func (m *mockQuestionStore) CreateOptions(ctx context.Context, questionID uuid.UUID, opts []OptionInput) ([]AnswerOption, error) {
	args := m.Called(ctx, questionID, opts)
	return args.Get(0).([]AnswerOption), args.Error(1)
}

func (m *mockQuestionStore) UpdateOptions(ctx context.Context, questionID uuid.UUID, opts []OptionInput) ([]AnswerOption, error) {
	args := m.Called(ctx, questionID, opts)
	return args.Get(0).([]AnswerOption), args.Error(1)
}

func (m *mockQuestionStore) GetOption(ctx context.Context, optionID uuid.UUID) (AnswerOption, error) {
	args := m.Called(ctx, optionID)
	return args.Get(0).(AnswerOption), args.Error(1)
}

func (m *mockQuestionStore) UpdateOption(ctx context.Context, optionID uuid.UUID, opt OptionInput) (AnswerOption, error) {
	args := m.Called(ctx, optionID, opt)
	return args.Get(0).(AnswerOption), args.Error(1)
}

func (m *mockQuestionStore) DeleteOption(ctx context.Context, optionID uuid.UUID) error {
	return m.Called(ctx, optionID).Error(0)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, quizID uuid.UUID) (*Quiz, error) {
	args := m.Called(ctx, quizID)
	if q := args.Get(0); q != nil {
		return q.(*Quiz), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, q Quiz) error {
	return m.Called(ctx, q).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, quizID uuid.UUID) error {
	return m.Called(ctx, quizID).Error(0)
}

func newTestService(quizzes *mockQuizStore, questions *mockQuestionStore, users *mockUserStore, cache TreeCacher) *Service {
	return NewService(quizzes, questions, users, cache, zerolog.Nop())
}

func TestCreateQuizRequiresExistingAuthor(t *testing.T) {
	quizzes := new(mockQuizStore)
	users := new(mockUserStore)
	svc := newTestService(quizzes, new(mockQuestionStore), users, nil)

	authorID := uuid.New()
	users.On("Exists", mock.Anything, authorID).Return(false, nil)

	_, err := svc.CreateQuiz(context.Background(), authorID, "Geography", "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	quizzes.AssertNotCalled(t, "Create")
}

func TestCreateQuizRejectsBlankTitle(t *testing.T) {
	svc := newTestService(new(mockQuizStore), new(mockQuestionStore), new(mockUserStore), nil)

	_, err := svc.CreateQuiz(context.Background(), uuid.New(), "   ", "")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestCreateQuizTrimsTitle(t *testing.T) {
	quizzes := new(mockQuizStore)
	users := new(mockUserStore)
	svc := newTestService(quizzes, new(mockQuestionStore), users, nil)

	authorID := uuid.New()
	users.On("Exists", mock.Anything, authorID).Return(true, nil)
	quizzes.On("Create", mock.Anything, authorID, "Geography", "capitals").
		Return(Quiz{ID: uuid.New(), AuthorID: authorID, Title: "Geography"}, nil)

	q, err := svc.CreateQuiz(context.Background(), authorID, "  Geography  ", "capitals")
	require.NoError(t, err)
	assert.Equal(t, "Geography", q.Title)
}

func TestQuizTreeServedFromCache(t *testing.T) {
	quizzes := new(mockQuizStore)
	cache := new(mockCache)
	svc := newTestService(quizzes, new(mockQuestionStore), new(mockUserStore), cache)

	quizID := uuid.New()
	cached := Quiz{ID: quizID, Title: "cached"}
	cache.On("Get", mock.Anything, quizID).Return(&cached, nil)

	q, err := svc.QuizTree(context.Background(), quizID)
	require.NoError(t, err)
	assert.Equal(t, "cached", q.Title)
	quizzes.AssertNotCalled(t, "GetWithQuestions")
}

func TestQuizTreeFillsCacheOnMiss(t *testing.T) {
	quizzes := new(mockQuizStore)
	cache := new(mockCache)
	svc := newTestService(quizzes, new(mockQuestionStore), new(mockUserStore), cache)

	quizID := uuid.New()
	stored := Quiz{ID: quizID, Title: "stored"}
	cache.On("Get", mock.Anything, quizID).Return(nil, nil)
	quizzes.On("GetWithQuestions", mock.Anything, quizID).Return(stored, nil)
	cache.On("Set", mock.Anything, stored).Return(nil)

	q, err := svc.QuizTree(context.Background(), quizID)
	require.NoError(t, err)
	assert.Equal(t, "stored", q.Title)
	cache.AssertExpectations(t)
}

func TestUpdateQuizInvalidatesCache(t *testing.T) {
	quizzes := new(mockQuizStore)
	cache := new(mockCache)
	svc := newTestService(quizzes, new(mockQuestionStore), new(mockUserStore), cache)

	quizID := uuid.New()
	quizzes.On("Update", mock.Anything, quizID, "New", "").
		Return(Quiz{ID: quizID, Title: "New"}, nil)
	cache.On("Invalidate", mock.Anything, quizID).Return(nil)

	_, err := svc.UpdateQuiz(context.Background(), quizID, "New", "")
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestCreateQuestionValidatesInput(t *testing.T) {
	svc := newTestService(new(mockQuizStore), new(mockQuestionStore), new(mockUserStore), nil)

	cases := []struct {
		name  string
		input QuestionInput
	}{
		{"blank text", QuestionInput{Text: " ", Points: 1, TypeID: uuid.New()}},
		{"zero points", QuestionInput{Text: "q", Points: 0, TypeID: uuid.New()}},
		{"negative points", QuestionInput{Text: "q", Points: -2, TypeID: uuid.New()}},
		{"blank option text", QuestionInput{
			Text: "q", Points: 1, TypeID: uuid.New(),
			Options: []OptionInput{{Text: ""}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateQuestion(context.Background(), uuid.New(), tc.input)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}
}

func TestCreateQuestionUnknownTypeIsValidation(t *testing.T) {
	quizzes := new(mockQuizStore)
	questions := new(mockQuestionStore)
	svc := newTestService(quizzes, questions, new(mockUserStore), nil)

	quizID := uuid.New()
	typeID := uuid.New()
	quizzes.On("Get", mock.Anything, quizID).Return(Quiz{ID: quizID}, nil)
	questions.On("GetType", mock.Anything, typeID).
		Return(QuestionType{}, errs.NotFoundf("question type"))

	_, err := svc.CreateQuestion(context.Background(), quizID, QuestionInput{
		Text: "q", Points: 1, TypeID: typeID,
	})
	assert.ErrorIs(t, err, errs.ErrValidation)
	questions.AssertNotCalled(t, "Create")
}

func TestCreateQuestionChecksSeededType(t *testing.T) {
	quizzes := new(mockQuizStore)
	questions := new(mockQuestionStore)
	cache := new(mockCache)
	svc := newTestService(quizzes, questions, new(mockUserStore), cache)

	quizID := uuid.New()
	typeID := uuid.New()
	input := QuestionInput{Text: "describe it", Points: 1, TypeID: typeID}

	quizzes.On("Get", mock.Anything, quizID).Return(Quiz{ID: quizID}, nil)
	questions.On("GetType", mock.Anything, typeID).
		Return(QuestionType{ID: typeID, Code: TypeShortText}, nil)
	questions.On("Create", mock.Anything, quizID, input).
		Return(Question{ID: uuid.New(), QuizID: quizID, TypeID: typeID, TypeCode: TypeShortText, Text: "describe it"}, nil)
	cache.On("Invalidate", mock.Anything, quizID).Return(nil)

	q, err := svc.CreateQuestion(context.Background(), quizID, input)
	require.NoError(t, err)
	assert.Equal(t, TypeShortText, q.TypeCode)
	cache.AssertExpectations(t)
}

func TestReconcileQuestionRejectsForeignQuiz(t *testing.T) {
	quizzes := new(mockQuizStore)
	questions := new(mockQuestionStore)
	svc := newTestService(quizzes, questions, new(mockUserStore), nil)

	questionID := uuid.New()
	questions.On("Get", mock.Anything, questionID).
		Return(Question{ID: questionID, QuizID: uuid.New()}, nil)

	_, err := svc.ReconcileQuestion(context.Background(), uuid.New(), questionID, QuestionInput{
		Text: "q", Points: 1, TypeID: uuid.New(),
	})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	questions.AssertNotCalled(t, "Reconcile")
}

func TestDeleteQuestionInvalidatesOwningQuizTree(t *testing.T) {
	questions := new(mockQuestionStore)
	cache := new(mockCache)
	svc := newTestService(new(mockQuizStore), questions, new(mockUserStore), cache)

	quizID := uuid.New()
	questionID := uuid.New()
	questions.On("Get", mock.Anything, questionID).
		Return(Question{ID: questionID, QuizID: quizID}, nil)
	questions.On("Delete", mock.Anything, questionID).Return(nil)
	cache.On("Invalidate", mock.Anything, quizID).Return(nil)

	err := svc.DeleteQuestion(context.Background(), questionID)
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestCreateOptionsRequiresPayload(t *testing.T) {
	svc := newTestService(new(mockQuizStore), new(mockQuestionStore), new(mockUserStore), nil)

	_, err := svc.CreateOptions(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, errs.ErrValidation)
}
