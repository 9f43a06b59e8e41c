package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quizdeck/quizdeck/internal/quiz"
)

// QuizRepository contains DB helpers for quizzes.
type QuizRepository struct {
	db DB
}

// NewQuizRepository constructs a new quiz repository.
func NewQuizRepository(db DB) *QuizRepository {
	return &QuizRepository{db: db}
}

const quizColumns = `quiz_id, author_id, title, description, created_at`

// Create persists a new quiz row.
func (r *QuizRepository) Create(ctx context.Context, authorID uuid.UUID, title, desc string) (quiz.Quiz, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO quizzes (author_id, title, description) VALUES ($1, $2, $3)
		 RETURNING `+quizColumns,
		authorID, title, desc)
	return scanQuiz(row)
}

// Get fetches a quiz by ID without its question tree.
func (r *QuizRepository) Get(ctx context.Context, quizID uuid.UUID) (quiz.Quiz, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE quiz_id = $1`, quizID)
	return scanQuiz(row)
}

// GetWithQuestions fetches a quiz including questions (ordered by sequence,
// then id) and their options.
func (r *QuizRepository) GetWithQuestions(ctx context.Context, quizID uuid.UUID) (quiz.Quiz, error) {
	q, err := r.Get(ctx, quizID)
	if err != nil {
		return quiz.Quiz{}, err
	}

	questions, err := listQuestionsByQuiz(ctx, r.db, quizID)
	if err != nil {
		return quiz.Quiz{}, err
	}
	q.Questions = questions
	return q, nil
}

// List returns all quiz summaries.
func (r *QuizRepository) List(ctx context.Context) ([]quiz.Quiz, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", translateErr(err))
	}
	return collectQuizzes(rows)
}

// ListByAuthor returns quiz summaries owned by a user.
func (r *QuizRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]quiz.Quiz, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE author_id = $1 ORDER BY created_at DESC`,
		authorID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes by author: %w", translateErr(err))
	}
	return collectQuizzes(rows)
}

// Update changes title/description of an existing quiz.
func (r *QuizRepository) Update(ctx context.Context, quizID uuid.UUID, title, desc string) (quiz.Quiz, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE quizzes SET title = $2, description = $3 WHERE quiz_id = $1
		 RETURNING `+quizColumns,
		quizID, title, desc)
	return scanQuiz(row)
}

// Delete removes a quiz; questions, options, attempts and responses cascade.
func (r *QuizRepository) Delete(ctx context.Context, quizID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quizzes WHERE quiz_id = $1`, quizID)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", translateErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete quiz: %w", pgxNoRows())
	}
	return nil
}

// Exists reports whether a quiz row exists.
func (r *QuizRepository) Exists(ctx context.Context, quizID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quizzes WHERE quiz_id = $1)`, quizID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("quiz exists: %w", translateErr(err))
	}
	return exists, nil
}

func listQuestionsByQuiz(ctx context.Context, db DB, quizID uuid.UUID) ([]quiz.Question, error) {
	rows, err := db.Query(ctx,
		`SELECT q.question_id, q.quiz_id, q.question_type_id, t.code, q.text, q.sequence, q.points
		 FROM questions q
		 JOIN question_types t ON t.question_type_id = q.question_type_id
		 WHERE q.quiz_id = $1
		 ORDER BY q.sequence, q.question_id`,
		quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", translateErr(err))
	}
	defer rows.Close()

	var questions []quiz.Question
	byID := map[uuid.UUID]int{}
	for rows.Next() {
		var q quiz.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.TypeID, &q.TypeCode, &q.Text, &q.Sequence, &q.Points); err != nil {
			return nil, fmt.Errorf("scan question: %w", translateErr(err))
		}
		q.Options = []quiz.AnswerOption{}
		byID[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", translateErr(err))
	}
	if len(questions) == 0 {
		return questions, nil
	}

	optRows, err := db.Query(ctx,
		`SELECT o.option_id, o.question_id, o.option_text, o.sequence, o.is_correct
		 FROM answer_options o
		 JOIN questions q ON q.question_id = o.question_id
		 WHERE q.quiz_id = $1
		 ORDER BY o.question_id, o.sequence, o.option_id`,
		quizID)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", translateErr(err))
	}
	defer optRows.Close()

	for optRows.Next() {
		var o quiz.AnswerOption
		if err := optRows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.Sequence, &o.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan option: %w", translateErr(err))
		}
		if idx, ok := byID[o.QuestionID]; ok {
			questions[idx].Options = append(questions[idx].Options, o)
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate options: %w", translateErr(err))
	}
	return questions, nil
}

func scanQuiz(row rowScanner) (quiz.Quiz, error) {
	var q quiz.Quiz
	if err := row.Scan(&q.ID, &q.AuthorID, &q.Title, &q.Desc, &q.CreatedAt); err != nil {
		return quiz.Quiz{}, fmt.Errorf("scan quiz: %w", translateErr(err))
	}
	return q, nil
}

func collectQuizzes(rows pgx.Rows) ([]quiz.Quiz, error) {
	defer rows.Close()
	quizzes := []quiz.Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quizzes: %w", translateErr(err))
	}
	return quizzes, nil
}

func pgxNoRows() error {
	return translateErr(pgx.ErrNoRows)
}
