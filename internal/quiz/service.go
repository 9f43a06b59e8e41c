package quiz

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck/internal/errs"
)

// Store exposes the quiz-row operations the service needs.
type Store interface {
	Create(ctx context.Context, authorID uuid.UUID, title, desc string) (Quiz, error)
	Get(ctx context.Context, quizID uuid.UUID) (Quiz, error)
	GetWithQuestions(ctx context.Context, quizID uuid.UUID) (Quiz, error)
	List(ctx context.Context) ([]Quiz, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]Quiz, error)
	Update(ctx context.Context, quizID uuid.UUID, title, desc string) (Quiz, error)
	Delete(ctx context.Context, quizID uuid.UUID) error
}

// QuestionStore exposes question and option authoring operations.
type QuestionStore interface {
	GetType(ctx context.Context, typeID uuid.UUID) (QuestionType, error)
	ListTypes(ctx context.Context) ([]QuestionType, error)
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]Question, error)
	Get(ctx context.Context, questionID uuid.UUID) (Question, error)
	Create(ctx context.Context, quizID uuid.UUID, input QuestionInput) (Question, error)
	Reconcile(ctx context.Context, questionID uuid.UUID, input QuestionInput) (Question, error)
	Delete(ctx context.Context, questionID uuid.UUID) error
	CreateOptions(ctx context.Context, questionID uuid.UUID, opts []OptionInput) ([]AnswerOption, error)
	UpdateOptions(ctx context.Context, questionID uuid.UUID, opts []OptionInput) ([]AnswerOption, error)
	GetOption(ctx context.Context, optionID uuid.UUID) (AnswerOption, error)
	UpdateOption(ctx context.Context, optionID uuid.UUID, opt OptionInput) (AnswerOption, error)
	DeleteOption(ctx context.Context, optionID uuid.UUID) error
}

type userStore interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// TreeCacher caches full quiz question trees.
type TreeCacher interface {
	Get(ctx context.Context, quizID uuid.UUID) (*Quiz, error)
	Set(ctx context.Context, q Quiz) error
	Invalidate(ctx context.Context, quizID uuid.UUID) error
}

// Service orchestrates quiz/question/option authoring.
type Service struct {
	quizzes   Store
	questions QuestionStore
	users     userStore
	cache     TreeCacher
	logger    zerolog.Logger
}

// NewService creates the authoring service. cache may be nil.
func NewService(quizzes Store, questions QuestionStore, users userStore, cache TreeCacher, logger zerolog.Logger) *Service {
	return &Service{
		quizzes:   quizzes,
		questions: questions,
		users:     users,
		cache:     cache,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
	}
}

// CreateQuiz validates the author exists, then persists the quiz.
func (s *Service) CreateQuiz(ctx context.Context, authorID uuid.UUID, title, desc string) (Quiz, error) {
	if strings.TrimSpace(title) == "" {
		return Quiz{}, errs.Validationf("title cannot be empty")
	}
	ok, err := s.users.Exists(ctx, authorID)
	if err != nil {
		return Quiz{}, err
	}
	if !ok {
		return Quiz{}, errs.NotFoundf("author %s", authorID)
	}
	q, err := s.quizzes.Create(ctx, authorID, strings.TrimSpace(title), desc)
	if err != nil {
		return Quiz{}, err
	}
	s.logger.Info().Str("quiz_id", q.ID.String()).Str("author_id", authorID.String()).Msg("quiz created")
	return q, nil
}

// GetQuiz fetches a quiz, optionally with its question tree.
func (s *Service) GetQuiz(ctx context.Context, quizID uuid.UUID, includeQuestions bool) (Quiz, error) {
	if includeQuestions {
		return s.QuizTree(ctx, quizID)
	}
	return s.quizzes.Get(ctx, quizID)
}

// QuizTree returns a quiz with questions and options, served from cache when
// possible. The attempt lifecycle reads quizzes exclusively through this.
func (s *Service) QuizTree(ctx context.Context, quizID uuid.UUID) (Quiz, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, quizID); err == nil && cached != nil {
			return *cached, nil
		} else if err != nil {
			s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("quiz tree cache read failed")
		}
	}
	q, err := s.quizzes.GetWithQuestions(ctx, quizID)
	if err != nil {
		return Quiz{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, q); err != nil {
			s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("quiz tree cache write failed")
		}
	}
	return q, nil
}

// QuizOwner reports the author of a quiz.
func (s *Service) QuizOwner(ctx context.Context, quizID uuid.UUID) (uuid.UUID, error) {
	q, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return uuid.Nil, err
	}
	return q.AuthorID, nil
}

// ListQuizzes returns all quiz summaries.
func (s *Service) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	return s.quizzes.List(ctx)
}

// ListMyQuizzes returns quizzes authored by the given user.
func (s *Service) ListMyQuizzes(ctx context.Context, authorID uuid.UUID) ([]Quiz, error) {
	return s.quizzes.ListByAuthor(ctx, authorID)
}

// UpdateQuiz changes title/description.
func (s *Service) UpdateQuiz(ctx context.Context, quizID uuid.UUID, title, desc string) (Quiz, error) {
	if strings.TrimSpace(title) == "" {
		return Quiz{}, errs.Validationf("title cannot be empty")
	}
	q, err := s.quizzes.Update(ctx, quizID, strings.TrimSpace(title), desc)
	if err != nil {
		return Quiz{}, err
	}
	s.invalidate(ctx, quizID)
	return q, nil
}

// DeleteQuiz removes a quiz and everything under it.
func (s *Service) DeleteQuiz(ctx context.Context, quizID uuid.UUID) error {
	if err := s.quizzes.Delete(ctx, quizID); err != nil {
		return err
	}
	s.invalidate(ctx, quizID)
	s.logger.Info().Str("quiz_id", quizID.String()).Msg("quiz deleted")
	return nil
}

// ListQuestionTypes returns the seeded grading categories.
func (s *Service) ListQuestionTypes(ctx context.Context) ([]QuestionType, error) {
	return s.questions.ListTypes(ctx)
}

// ListQuestions returns a quiz's questions in play order.
func (s *Service) ListQuestions(ctx context.Context, quizID uuid.UUID) ([]Question, error) {
	if _, err := s.quizzes.Get(ctx, quizID); err != nil {
		return nil, err
	}
	return s.questions.ListByQuiz(ctx, quizID)
}

// GetQuestion fetches one question with its options.
func (s *Service) GetQuestion(ctx context.Context, questionID uuid.UUID) (Question, error) {
	return s.questions.Get(ctx, questionID)
}

// CreateQuestion validates the quiz and question type, then inserts the
// question and its options in one transaction.
func (s *Service) CreateQuestion(ctx context.Context, quizID uuid.UUID, input QuestionInput) (Question, error) {
	if err := validateQuestionInput(input); err != nil {
		return Question{}, err
	}
	if _, err := s.quizzes.Get(ctx, quizID); err != nil {
		return Question{}, err
	}
	if _, err := s.questions.GetType(ctx, input.TypeID); err != nil {
		return Question{}, errs.Validationf("question type %s does not exist", input.TypeID)
	}
	q, err := s.questions.Create(ctx, quizID, input)
	if err != nil {
		return Question{}, err
	}
	s.invalidate(ctx, quizID)
	return q, nil
}

// ReconcileQuestion applies a full question edit: fields updated, option set
// reconciled against the payload in a single transaction.
func (s *Service) ReconcileQuestion(ctx context.Context, quizID, questionID uuid.UUID, input QuestionInput) (Question, error) {
	if err := validateQuestionInput(input); err != nil {
		return Question{}, err
	}
	existing, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return Question{}, err
	}
	if existing.QuizID != quizID {
		return Question{}, errs.NotFoundf("question %s in quiz %s", questionID, quizID)
	}
	q, err := s.questions.Reconcile(ctx, questionID, input)
	if err != nil {
		return Question{}, err
	}
	s.invalidate(ctx, quizID)
	return q, nil
}

// DeleteQuestion removes a question and cascades its options.
func (s *Service) DeleteQuestion(ctx context.Context, questionID uuid.UUID) error {
	existing, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return err
	}
	if err := s.questions.Delete(ctx, questionID); err != nil {
		return err
	}
	s.invalidate(ctx, existing.QuizID)
	return nil
}

// CreateOptions appends one or more options to a question.
func (s *Service) CreateOptions(ctx context.Context, questionID uuid.UUID, opts []OptionInput) ([]AnswerOption, error) {
	if len(opts) == 0 {
		return nil, errs.Validationf("at least one option required")
	}
	for _, opt := range opts {
		if strings.TrimSpace(opt.Text) == "" {
			return nil, errs.Validationf("optionText must be a non-empty string")
		}
	}
	q, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}
	created, err := s.questions.CreateOptions(ctx, questionID, opts)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, q.QuizID)
	return created, nil
}

// UpdateOptions bulk-updates options, each scoped to the owning question.
func (s *Service) UpdateOptions(ctx context.Context, questionID uuid.UUID, opts []OptionInput) ([]AnswerOption, error) {
	if len(opts) == 0 {
		return nil, errs.Validationf("at least one option required")
	}
	q, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}
	updated, err := s.questions.UpdateOptions(ctx, questionID, opts)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, q.QuizID)
	return updated, nil
}

// GetOption fetches a single option.
func (s *Service) GetOption(ctx context.Context, optionID uuid.UUID) (AnswerOption, error) {
	return s.questions.GetOption(ctx, optionID)
}

// UpdateOption updates a single option.
func (s *Service) UpdateOption(ctx context.Context, optionID uuid.UUID, input OptionInput) (AnswerOption, error) {
	if strings.TrimSpace(input.Text) == "" {
		return AnswerOption{}, errs.Validationf("optionText must be a non-empty string")
	}
	updated, err := s.questions.UpdateOption(ctx, optionID, input)
	if err != nil {
		return AnswerOption{}, err
	}
	s.invalidateForOption(ctx, updated.QuestionID)
	return updated, nil
}

// DeleteOption removes a single option.
func (s *Service) DeleteOption(ctx context.Context, optionID uuid.UUID) error {
	existing, err := s.questions.GetOption(ctx, optionID)
	if err != nil {
		return err
	}
	if err := s.questions.DeleteOption(ctx, optionID); err != nil {
		return err
	}
	s.invalidateForOption(ctx, existing.QuestionID)
	return nil
}

func (s *Service) invalidateForOption(ctx context.Context, questionID uuid.UUID) {
	q, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return
	}
	s.invalidate(ctx, q.QuizID)
}

func (s *Service) invalidate(ctx context.Context, quizID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, quizID); err != nil {
		s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("quiz tree cache invalidation failed")
	}
}

func validateQuestionInput(input QuestionInput) error {
	if strings.TrimSpace(input.Text) == "" {
		return errs.Validationf("text is required and must be a non-empty string")
	}
	if input.Points <= 0 {
		return errs.Validationf("points must be a positive number")
	}
	for i, opt := range input.Options {
		if strings.TrimSpace(opt.Text) == "" {
			return errs.Validationf("optionText must be a non-empty string (error at index %d)", i)
		}
	}
	return nil
}
