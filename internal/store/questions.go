package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// QuestionFilter narrows ListQuestions. Zero values are unfiltered.
type QuestionFilter struct {
	Category   string
	Difficulty string
	Limit      int
}

// CreateQuestion inserts a question. Options are stored JSON-encoded.
func (s *Store) CreateQuestion(ctx context.Context, q *Question) (*Question, error) {
	id, err := generateID()
	if err != nil {
		return nil, err
	}
	optionsJSON, err := json.Marshal(q.Options)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	now := time.Now().UTC()

	query := s.bind(`
INSERT INTO questions(id, prompt, options, correct_answer, category, difficulty, question_type, source, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		id, q.Prompt, string(optionsJSON), q.CorrectAnswer,
		q.Category, q.Difficulty, q.QuestionType, q.Source, now,
	); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	created := *q
	created.ID = id
	created.CreatedAt = now
	return &created, nil
}

// GetQuestion retrieves a question by ID.
func (s *Store) GetQuestion(ctx context.Context, id string) (*Question, error) {
	query := s.bind(`
SELECT id, prompt, options, correct_answer, category, difficulty, question_type, source, created_at
FROM questions
WHERE id = ?`)

	var (
		q           Question
		optionsJSON string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&q.ID, &q.Prompt, &optionsJSON, &q.CorrectAnswer,
		&q.Category, &q.Difficulty, &q.QuestionType, &q.Source, &q.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return &q, nil
}

// ListQuestions returns questions matching the filter, newest first.
func (s *Store) ListQuestions(ctx context.Context, filter QuestionFilter) ([]*Question, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Difficulty != "" {
		conds = append(conds, "difficulty = ?")
		args = append(args, filter.Difficulty)
	}

	query := `
SELECT id, prompt, options, correct_answer, category, difficulty, question_type, source, created_at
FROM questions`
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	query += "\nORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf("\nLIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.bind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	questions := make([]*Question, 0)
	for rows.Next() {
		var (
			q           Question
			optionsJSON string
		)
		if err := rows.Scan(
			&q.ID, &q.Prompt, &optionsJSON, &q.CorrectAnswer,
			&q.Category, &q.Difficulty, &q.QuestionType, &q.Source, &q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
		questions = append(questions, &q)
	}
	return questions, rows.Err()
}

// CountQuestions returns the total number of stored questions.
func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// CategoryCount is one row of the question-bank breakdown.
type CategoryCount struct {
	Category   string
	Difficulty string
	Count      int
}

// QuestionBreakdown returns question counts grouped by category and
// difficulty, largest group first.
func (s *Store) QuestionBreakdown(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT category, difficulty, COUNT(*)
FROM questions
GROUP BY category, difficulty
ORDER BY COUNT(*) DESC, category, difficulty`)
	if err != nil {
		return nil, fmt.Errorf("question breakdown: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make([]CategoryCount, 0)
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Difficulty, &c.Count); err != nil {
			return nil, fmt.Errorf("scan breakdown: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
