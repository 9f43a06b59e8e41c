package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/errs"
	"github.com/quizdeck/quizdeck/internal/quiz"
)

// QuestionRepository contains DB helpers for questions and answer options.
// Multi-row authoring mutations run inside a single transaction so a
// partially-updated option set is never observable.
type QuestionRepository struct {
	db TxBeginner
}

// NewQuestionRepository constructs a new question repository.
func NewQuestionRepository(db TxBeginner) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// GetType fetches a question type by ID.
func (r *QuestionRepository) GetType(ctx context.Context, typeID uuid.UUID) (quiz.QuestionType, error) {
	var t quiz.QuestionType
	err := r.db.QueryRow(ctx,
		`SELECT question_type_id, code, description FROM question_types WHERE question_type_id = $1`,
		typeID).Scan(&t.ID, &t.Code, &t.Description)
	if err != nil {
		return quiz.QuestionType{}, fmt.Errorf("get question type: %w", translateErr(err))
	}
	return t, nil
}

// ListTypes returns all seeded question types.
func (r *QuestionRepository) ListTypes(ctx context.Context) ([]quiz.QuestionType, error) {
	rows, err := r.db.Query(ctx,
		`SELECT question_type_id, code, description FROM question_types ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list question types: %w", translateErr(err))
	}
	defer rows.Close()

	var types []quiz.QuestionType
	for rows.Next() {
		var t quiz.QuestionType
		if err := rows.Scan(&t.ID, &t.Code, &t.Description); err != nil {
			return nil, fmt.Errorf("scan question type: %w", translateErr(err))
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question types: %w", translateErr(err))
	}
	return types, nil
}

// ListByQuiz returns a quiz's questions with options, ordered by sequence
// then question id.
func (r *QuestionRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]quiz.Question, error) {
	return listQuestionsByQuiz(ctx, r.db, quizID)
}

// Get fetches a single question with its options.
func (r *QuestionRepository) Get(ctx context.Context, questionID uuid.UUID) (quiz.Question, error) {
	return getQuestion(ctx, r.db, questionID)
}

// Create inserts a question and its initial options atomically.
func (r *QuestionRepository) Create(ctx context.Context, quizID uuid.UUID, input quiz.QuestionInput) (quiz.Question, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return quiz.Question{}, err
	}
	defer tx.Rollback(ctx)

	var questionID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO questions (quiz_id, question_type_id, text, sequence, points)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING question_id`,
		quizID, input.TypeID, input.Text, input.Sequence, input.Points).Scan(&questionID)
	if err != nil {
		return quiz.Question{}, fmt.Errorf("insert question: %w", translateErr(err))
	}

	for _, opt := range input.Options {
		if _, err := tx.Exec(ctx,
			`INSERT INTO answer_options (question_id, option_text, sequence, is_correct)
			 VALUES ($1, $2, $3, $4)`,
			questionID, opt.Text, opt.Sequence, opt.IsCorrect); err != nil {
			return quiz.Question{}, fmt.Errorf("insert option: %w", translateErr(err))
		}
	}

	q, err := getQuestion(ctx, tx, questionID)
	if err != nil {
		return quiz.Question{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return quiz.Question{}, fmt.Errorf("commit create question: %w", err)
	}
	return q, nil
}

// Reconcile updates a question and reconciles its option set against the
// payload: options absent from the payload are deleted, present-with-id are
// updated (scoped to this question), present-without-id are created.
func (r *QuestionRepository) Reconcile(ctx context.Context, questionID uuid.UUID, input quiz.QuestionInput) (quiz.Question, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return quiz.Question{}, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE questions SET text = $2, sequence = $3, points = $4, question_type_id = $5
		 WHERE question_id = $1`,
		questionID, input.Text, input.Sequence, input.Points, input.TypeID)
	if err != nil {
		return quiz.Question{}, fmt.Errorf("update question: %w", translateErr(err))
	}
	if tag.RowsAffected() == 0 {
		return quiz.Question{}, fmt.Errorf("update question: %w", pgxNoRows())
	}

	keep := make([]uuid.UUID, 0, len(input.Options))
	for _, opt := range input.Options {
		if opt.ID != nil {
			keep = append(keep, *opt.ID)
		}
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM answer_options WHERE question_id = $1 AND NOT (option_id = ANY($2))`,
		questionID, keep); err != nil {
		return quiz.Question{}, fmt.Errorf("delete removed options: %w", translateErr(err))
	}

	for _, opt := range input.Options {
		if opt.ID != nil {
			if _, err := tx.Exec(ctx,
				`UPDATE answer_options SET option_text = $3, sequence = $4, is_correct = $5
				 WHERE option_id = $1 AND question_id = $2`,
				*opt.ID, questionID, opt.Text, opt.Sequence, opt.IsCorrect); err != nil {
				return quiz.Question{}, fmt.Errorf("update option: %w", translateErr(err))
			}
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO answer_options (question_id, option_text, sequence, is_correct)
			 VALUES ($1, $2, $3, $4)`,
			questionID, opt.Text, opt.Sequence, opt.IsCorrect); err != nil {
			return quiz.Question{}, fmt.Errorf("insert option: %w", translateErr(err))
		}
	}

	q, err := getQuestion(ctx, tx, questionID)
	if err != nil {
		return quiz.Question{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return quiz.Question{}, fmt.Errorf("commit reconcile: %w", err)
	}
	return q, nil
}

// Delete removes a question; its options and responses cascade.
func (r *QuestionRepository) Delete(ctx context.Context, questionID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM questions WHERE question_id = $1`, questionID)
	if err != nil {
		return fmt.Errorf("delete question: %w", translateErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete question: %w", pgxNoRows())
	}
	return nil
}

// CreateOptions inserts one or more options for a question atomically.
func (r *QuestionRepository) CreateOptions(ctx context.Context, questionID uuid.UUID, opts []quiz.OptionInput) ([]quiz.AnswerOption, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created := make([]quiz.AnswerOption, 0, len(opts))
	for _, opt := range opts {
		var o quiz.AnswerOption
		err := tx.QueryRow(ctx,
			`INSERT INTO answer_options (question_id, option_text, sequence, is_correct)
			 VALUES ($1, $2, $3, $4)
			 RETURNING option_id, question_id, option_text, sequence, is_correct`,
			questionID, opt.Text, opt.Sequence, opt.IsCorrect).
			Scan(&o.ID, &o.QuestionID, &o.Text, &o.Sequence, &o.IsCorrect)
		if err != nil {
			return nil, fmt.Errorf("insert option: %w", translateErr(err))
		}
		created = append(created, o)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create options: %w", err)
	}
	return created, nil
}

// UpdateOptions applies a bulk option update, each row scoped to the owning
// question, in a single transaction.
func (r *QuestionRepository) UpdateOptions(ctx context.Context, questionID uuid.UUID, opts []quiz.OptionInput) ([]quiz.AnswerOption, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	updated := make([]quiz.AnswerOption, 0, len(opts))
	for _, opt := range opts {
		if opt.ID == nil {
			return nil, errs.Validationf("bulk option update requires option ids")
		}
		var o quiz.AnswerOption
		err := tx.QueryRow(ctx,
			`UPDATE answer_options SET option_text = $3, sequence = $4, is_correct = $5
			 WHERE option_id = $1 AND question_id = $2
			 RETURNING option_id, question_id, option_text, sequence, is_correct`,
			*opt.ID, questionID, opt.Text, opt.Sequence, opt.IsCorrect).
			Scan(&o.ID, &o.QuestionID, &o.Text, &o.Sequence, &o.IsCorrect)
		if err != nil {
			return nil, fmt.Errorf("update option %s: %w", opt.ID, translateErr(err))
		}
		updated = append(updated, o)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update options: %w", err)
	}
	return updated, nil
}

// GetOption fetches a single option.
func (r *QuestionRepository) GetOption(ctx context.Context, optionID uuid.UUID) (quiz.AnswerOption, error) {
	var o quiz.AnswerOption
	err := r.db.QueryRow(ctx,
		`SELECT option_id, question_id, option_text, sequence, is_correct
		 FROM answer_options WHERE option_id = $1`,
		optionID).Scan(&o.ID, &o.QuestionID, &o.Text, &o.Sequence, &o.IsCorrect)
	if err != nil {
		return quiz.AnswerOption{}, fmt.Errorf("get option: %w", translateErr(err))
	}
	return o, nil
}

// UpdateOption updates a single option.
func (r *QuestionRepository) UpdateOption(ctx context.Context, optionID uuid.UUID, opt quiz.OptionInput) (quiz.AnswerOption, error) {
	var o quiz.AnswerOption
	err := r.db.QueryRow(ctx,
		`UPDATE answer_options SET option_text = $2, sequence = $3, is_correct = $4
		 WHERE option_id = $1
		 RETURNING option_id, question_id, option_text, sequence, is_correct`,
		optionID, opt.Text, opt.Sequence, opt.IsCorrect).
		Scan(&o.ID, &o.QuestionID, &o.Text, &o.Sequence, &o.IsCorrect)
	if err != nil {
		return quiz.AnswerOption{}, fmt.Errorf("update option: %w", translateErr(err))
	}
	return o, nil
}

// DeleteOption removes a single option.
func (r *QuestionRepository) DeleteOption(ctx context.Context, optionID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM answer_options WHERE option_id = $1`, optionID)
	if err != nil {
		return fmt.Errorf("delete option: %w", translateErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete option: %w", pgxNoRows())
	}
	return nil
}

func getQuestion(ctx context.Context, db DB, questionID uuid.UUID) (quiz.Question, error) {
	var q quiz.Question
	err := db.QueryRow(ctx,
		`SELECT q.question_id, q.quiz_id, q.question_type_id, t.code, q.text, q.sequence, q.points
		 FROM questions q
		 JOIN question_types t ON t.question_type_id = q.question_type_id
		 WHERE q.question_id = $1`,
		questionID).Scan(&q.ID, &q.QuizID, &q.TypeID, &q.TypeCode, &q.Text, &q.Sequence, &q.Points)
	if err != nil {
		return quiz.Question{}, fmt.Errorf("get question: %w", translateErr(err))
	}

	rows, err := db.Query(ctx,
		`SELECT option_id, question_id, option_text, sequence, is_correct
		 FROM answer_options WHERE question_id = $1
		 ORDER BY sequence, option_id`,
		questionID)
	if err != nil {
		return quiz.Question{}, fmt.Errorf("list options: %w", translateErr(err))
	}
	defer rows.Close()

	q.Options = []quiz.AnswerOption{}
	for rows.Next() {
		var o quiz.AnswerOption
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.Sequence, &o.IsCorrect); err != nil {
			return quiz.Question{}, fmt.Errorf("scan option: %w", translateErr(err))
		}
		q.Options = append(q.Options, o)
	}
	if err := rows.Err(); err != nil {
		return quiz.Question{}, fmt.Errorf("iterate options: %w", translateErr(err))
	}
	return q, nil
}
