package attempt

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck/internal/errs"
	"github.com/quizdeck/quizdeck/internal/quiz"
)

const defaultSessionTTL = 7 * 24 * time.Hour

// Store exposes the attempt/response persistence operations.
type Store interface {
	Create(ctx context.Context, userID, quizID, sessionID uuid.UUID) (Attempt, error)
	Get(ctx context.Context, attemptID uuid.UUID) (Attempt, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Summary, error)
	Finish(ctx context.Context, attemptID uuid.UUID, score int32, finishedAt time.Time) (Attempt, error)
	CreateResponse(ctx context.Context, resp Response) (Response, error)
	ListResponses(ctx context.Context, attemptID uuid.UUID) ([]Response, error)
}

// SessionStore resolves and creates attempt-session records.
type SessionStore interface {
	ActiveForUser(ctx context.Context, userID uuid.UUID, now time.Time) (Session, error)
	Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (Session, error)
}

// QuizSource serves quiz question trees; satisfied by quiz.Service, which
// fronts the repository with a Redis cache.
type QuizSource interface {
	QuizTree(ctx context.Context, quizID uuid.UUID) (quiz.Quiz, error)
}

// ServiceOptions configures the attempt service.
type ServiceOptions struct {
	SessionTTL time.Duration
}

// Service orchestrates the state machine of a single quiz attempt.
type Service struct {
	repo       Store
	sessions   SessionStore
	quizzes    QuizSource
	sessionTTL time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewService creates the attempt lifecycle service.
func NewService(repo Store, sessions SessionStore, quizzes QuizSource, opts ServiceOptions, logger zerolog.Logger) *Service {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Service{
		repo:       repo,
		sessions:   sessions,
		quizzes:    quizzes,
		sessionTTL: ttl,
		logger:     logger.With().Str("component", "attempt_service").Logger(),
		now:        time.Now,
	}
}

// Start creates a new attempt for the user on the given quiz, resolving or
// creating a session record to associate it with.
func (s *Service) Start(ctx context.Context, userID, quizID uuid.UUID) (Attempt, error) {
	if userID == uuid.Nil {
		return Attempt{}, fmt.Errorf("no user identity: %w", errs.ErrUnauthorized)
	}
	if _, err := s.quizzes.QuizTree(ctx, quizID); err != nil {
		return Attempt{}, err
	}

	sess, err := s.resolveSession(ctx, userID)
	if err != nil {
		return Attempt{}, err
	}

	a, err := s.repo.Create(ctx, userID, quizID, sess.ID)
	if err != nil {
		return Attempt{}, err
	}

	attemptsStarted.Inc()
	s.logger.Info().
		Str("attempt_id", a.ID.String()).
		Str("quiz_id", quizID.String()).
		Str("user_id", userID.String()).
		Msg("attempt started")
	return a, nil
}

// Get fetches a single attempt.
func (s *Service) Get(ctx context.Context, attemptID uuid.UUID) (Attempt, error) {
	return s.repo.Get(ctx, attemptID)
}

// Next returns the unanswered question with the lowest sequence (ties broken
// by question id), or the Done sentinel once every question has a response.
func (s *Service) Next(ctx context.Context, attemptID uuid.UUID) (NextQuestion, error) {
	a, err := s.repo.Get(ctx, attemptID)
	if err != nil {
		return NextQuestion{}, err
	}
	q, err := s.quizzes.QuizTree(ctx, a.QuizID)
	if err != nil {
		return NextQuestion{}, err
	}
	responses, err := s.repo.ListResponses(ctx, attemptID)
	if err != nil {
		return NextQuestion{}, err
	}

	answered := make(map[uuid.UUID]struct{}, len(responses))
	for _, r := range responses {
		answered[r.QuestionID] = struct{}{}
	}

	next := nextUnanswered(q.Questions, answered)
	if next == nil {
		return NextQuestion{Done: true}, nil
	}
	return NextQuestion{Question: next}, nil
}

// Submit records exactly one response for (attempt, question), evaluating
// correctness from the selected option. A duplicate submission surfaces as a
// conflict instead of a second row.
func (s *Service) Submit(ctx context.Context, attemptID, questionID uuid.UUID, selectedOptionID *uuid.UUID, textAnswer *string) (Response, error) {
	if selectedOptionID == nil && (textAnswer == nil || *textAnswer == "") {
		return Response{}, errs.Validationf("either selectedOptionId or textAnswer is required")
	}

	a, err := s.repo.Get(ctx, attemptID)
	if err != nil {
		return Response{}, err
	}
	q, err := s.quizzes.QuizTree(ctx, a.QuizID)
	if err != nil {
		return Response{}, err
	}

	question := findQuestion(q.Questions, questionID)
	if question == nil {
		return Response{}, errs.NotFoundf("question %s in quiz %s", questionID, a.QuizID)
	}

	resp := Response{
		AttemptID:        attemptID,
		QuestionID:       questionID,
		SelectedOptionID: selectedOptionID,
		TextAnswer:       textAnswer,
		Correctness:      grade(question, selectedOptionID),
	}

	created, err := s.repo.CreateResponse(ctx, resp)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return Response{}, errs.Conflictf("question %s already answered in attempt %s", questionID, attemptID)
		}
		return Response{}, err
	}

	responsesSubmitted.WithLabelValues(string(created.Correctness)).Inc()
	return created, nil
}

// Progress reports answered/correct counts for an attempt. Read-only.
func (s *Service) Progress(ctx context.Context, attemptID uuid.UUID) (Progress, error) {
	a, err := s.repo.Get(ctx, attemptID)
	if err != nil {
		return Progress{}, err
	}
	q, err := s.quizzes.QuizTree(ctx, a.QuizID)
	if err != nil {
		return Progress{}, err
	}
	responses, err := s.repo.ListResponses(ctx, attemptID)
	if err != nil {
		return Progress{}, err
	}

	p := Progress{Total: len(q.Questions), Answered: len(responses)}
	for _, r := range responses {
		if r.Correctness == CorrectnessCorrect {
			p.Correct++
		}
	}
	return p, nil
}

// Finish recomputes the score as the flat count of correct responses and
// stamps finishedAt. Calling it again with no new responses yields the same
// score; callers may finish before answering everything.
func (s *Service) Finish(ctx context.Context, attemptID uuid.UUID) (Attempt, error) {
	if _, err := s.repo.Get(ctx, attemptID); err != nil {
		return Attempt{}, err
	}
	responses, err := s.repo.ListResponses(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}

	var score int32
	for _, r := range responses {
		if r.Correctness == CorrectnessCorrect {
			score++
		}
	}

	a, err := s.repo.Finish(ctx, attemptID, score, s.now())
	if err != nil {
		return Attempt{}, err
	}

	attemptsFinished.Inc()
	s.logger.Info().
		Str("attempt_id", attemptID.String()).
		Int32("score", score).
		Msg("attempt finished")
	return a, nil
}

// Result builds the per-question review for an attempt. Pure read.
func (s *Service) Result(ctx context.Context, attemptID uuid.UUID) (Result, error) {
	a, err := s.repo.Get(ctx, attemptID)
	if err != nil {
		return Result{}, err
	}
	q, err := s.quizzes.QuizTree(ctx, a.QuizID)
	if err != nil {
		return Result{}, err
	}
	responses, err := s.repo.ListResponses(ctx, attemptID)
	if err != nil {
		return Result{}, err
	}

	byQuestion := make(map[uuid.UUID]Response, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}

	result := Result{
		Score:      a.Score,
		FinishedAt: a.FinishedAt,
		Results:    make([]ReviewItem, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		item := ReviewItem{
			QuestionID:   question.ID,
			QuestionText: question.Text,
		}
		resp, answered := byQuestion[question.ID]
		if answered {
			item.IsCorrect = resp.Correctness == CorrectnessCorrect
			if resp.SelectedOptionID != nil {
				if opt := findOption(question.Options, *resp.SelectedOptionID); opt != nil {
					id := opt.ID
					text := opt.Text
					item.SelectedOptionID = &id
					item.SelectedOption = &text
				}
			}
			if item.IsCorrect {
				result.PointsEarned += question.Points
			}
		}
		if correct := firstCorrectOption(question.Options); correct != nil {
			id := correct.ID
			text := correct.Text
			item.CorrectOptionID = &id
			item.CorrectOption = &text
		}
		result.Results = append(result.Results, item)
	}
	return result, nil
}

// List returns the user's attempts with quiz metadata, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Summary, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("no user identity: %w", errs.ErrUnauthorized)
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) resolveSession(ctx context.Context, userID uuid.UUID) (Session, error) {
	now := s.now()
	sess, err := s.sessions.ActiveForUser(ctx, userID, now)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return Session{}, err
	}

	token, err := newSessionToken()
	if err != nil {
		return Session{}, fmt.Errorf("generate session token: %w", err)
	}
	return s.sessions.Create(ctx, userID, token, now.Add(s.sessionTTL))
}

// nextUnanswered relies on questions being sorted by (sequence, id); the
// repository and cache both preserve that order.
func nextUnanswered(questions []quiz.Question, answered map[uuid.UUID]struct{}) *quiz.Question {
	for i := range questions {
		if _, ok := answered[questions[i].ID]; !ok {
			return &questions[i]
		}
	}
	return nil
}

// grade evaluates a selected option against the question it was submitted
// for. Only MCQ selections are auto-graded; SHORT_TEXT and ESSAY responses
// wait for manual review. An option id that does not belong to this question
// grades as ungraded, never correct.
func grade(question *quiz.Question, selectedOptionID *uuid.UUID) Correctness {
	if selectedOptionID == nil || question.TypeCode != quiz.TypeMCQ {
		return CorrectnessUngraded
	}
	opt := findOption(question.Options, *selectedOptionID)
	if opt == nil {
		return CorrectnessUngraded
	}
	if opt.IsCorrect {
		return CorrectnessCorrect
	}
	return CorrectnessIncorrect
}

func findQuestion(questions []quiz.Question, id uuid.UUID) *quiz.Question {
	for i := range questions {
		if questions[i].ID == id {
			return &questions[i]
		}
	}
	return nil
}

func findOption(options []quiz.AnswerOption, id uuid.UUID) *quiz.AnswerOption {
	for i := range options {
		if options[i].ID == id {
			return &options[i]
		}
	}
	return nil
}

func firstCorrectOption(options []quiz.AnswerOption) *quiz.AnswerOption {
	for i := range options {
		if options[i].IsCorrect {
			return &options[i]
		}
	}
	return nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}
