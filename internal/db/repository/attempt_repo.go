package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/attempt"
)

// AttemptRepository contains DB helpers for quiz attempts and responses.
type AttemptRepository struct {
	db DB
}

// NewAttemptRepository constructs a new attempt repository.
func NewAttemptRepository(db DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

const attemptColumns = `attempt_id, user_id, quiz_id, session_id, started_at, finished_at, score`

// Create persists a new attempt row with startedAt = now and no score.
func (r *AttemptRepository) Create(ctx context.Context, userID, quizID, sessionID uuid.UUID) (attempt.Attempt, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO quiz_attempts (user_id, quiz_id, session_id) VALUES ($1, $2, $3)
		 RETURNING `+attemptColumns,
		userID, quizID, sessionID)
	return scanAttempt(row)
}

// Get fetches an attempt by ID.
func (r *AttemptRepository) Get(ctx context.Context, attemptID uuid.UUID) (attempt.Attempt, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts WHERE attempt_id = $1`, attemptID)
	return scanAttempt(row)
}

// ListByUser returns a user's attempts joined with quiz metadata, newest first.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]attempt.Summary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.attempt_id, a.quiz_id, q.title, q.description, a.started_at, a.finished_at, a.score
		 FROM quiz_attempts a
		 JOIN quizzes q ON q.quiz_id = a.quiz_id
		 WHERE a.user_id = $1
		 ORDER BY a.started_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", translateErr(err))
	}
	defer rows.Close()

	summaries := []attempt.Summary{}
	for rows.Next() {
		var s attempt.Summary
		if err := rows.Scan(&s.ID, &s.QuizID, &s.QuizTitle, &s.QuizDesc, &s.StartedAt, &s.FinishedAt, &s.Score); err != nil {
			return nil, fmt.Errorf("scan attempt summary: %w", translateErr(err))
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", translateErr(err))
	}
	return summaries, nil
}

// Finish overwrites score and finishedAt. Safe to call repeatedly; the score
// is recomputed by the caller each time.
func (r *AttemptRepository) Finish(ctx context.Context, attemptID uuid.UUID, score int32, finishedAt time.Time) (attempt.Attempt, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE quiz_attempts SET score = $2, finished_at = $3 WHERE attempt_id = $1
		 RETURNING `+attemptColumns,
		attemptID, score, finishedAt)
	return scanAttempt(row)
}

const responseColumns = `response_id, attempt_id, question_id, selected_option_id, text_answer, is_correct, created_at`

// CreateResponse inserts exactly one response per (attempt, question); the
// unique constraint turns a second insert into a conflict.
func (r *AttemptRepository) CreateResponse(ctx context.Context, resp attempt.Response) (attempt.Response, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO question_responses (attempt_id, question_id, selected_option_id, text_answer, is_correct)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+responseColumns,
		resp.AttemptID, resp.QuestionID, resp.SelectedOptionID, resp.TextAnswer, resp.Correctness.BoolPtr())
	return scanResponse(row)
}

// ListResponses returns all responses recorded for an attempt.
func (r *AttemptRepository) ListResponses(ctx context.Context, attemptID uuid.UUID) ([]attempt.Response, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+responseColumns+` FROM question_responses WHERE attempt_id = $1
		 ORDER BY created_at`,
		attemptID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", translateErr(err))
	}
	defer rows.Close()

	responses := []attempt.Response{}
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", translateErr(err))
	}
	return responses, nil
}

func scanAttempt(row rowScanner) (attempt.Attempt, error) {
	var a attempt.Attempt
	if err := row.Scan(&a.ID, &a.UserID, &a.QuizID, &a.SessionID, &a.StartedAt, &a.FinishedAt, &a.Score); err != nil {
		return attempt.Attempt{}, fmt.Errorf("scan attempt: %w", translateErr(err))
	}
	return a, nil
}

func scanResponse(row rowScanner) (attempt.Response, error) {
	var (
		resp      attempt.Response
		isCorrect *bool
	)
	if err := row.Scan(&resp.ID, &resp.AttemptID, &resp.QuestionID, &resp.SelectedOptionID, &resp.TextAnswer, &isCorrect, &resp.CreatedAt); err != nil {
		return attempt.Response{}, fmt.Errorf("scan response: %w", translateErr(err))
	}
	resp.Correctness = attempt.FromBoolPtr(isCorrect)
	return resp, nil
}
