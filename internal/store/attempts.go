package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateAttempt starts a new quiz attempt for a user.
func (s *Store) CreateAttempt(ctx context.Context, userID, topic string, questionCount int) (*Attempt, error) {
	id, err := generateID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	q := s.bind(`
INSERT INTO attempts(id, user_id, topic, question_count, correct_count, score, started_at, completed_at)
VALUES(?, ?, ?, ?, 0, 0, ?, NULL)`)
	if _, err := s.db.ExecContext(ctx, q, id, userID, topic, questionCount, now); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	return &Attempt{
		ID:            id,
		UserID:        userID,
		Topic:         topic,
		QuestionCount: questionCount,
		StartedAt:     now,
	}, nil
}

// GetAttempt retrieves an attempt by ID.
func (s *Store) GetAttempt(ctx context.Context, id string) (*Attempt, error) {
	q := s.bind(`
SELECT id, user_id, topic, question_count, correct_count, score, started_at, completed_at
FROM attempts
WHERE id = ?`)
	return s.scanAttempt(s.db.QueryRowContext(ctx, q, id))
}

// ListAttempts returns a user's attempts, newest first.
func (s *Store) ListAttempts(ctx context.Context, userID string, limit int) ([]*Attempt, error) {
	query := `
SELECT id, user_id, topic, question_count, correct_count, score, started_at, completed_at
FROM attempts
WHERE user_id = ?
ORDER BY started_at DESC`
	if limit > 0 {
		query += fmt.Sprintf("\nLIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, s.bind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	attempts := make([]*Attempt, 0)
	for rows.Next() {
		var (
			a         Attempt
			completed sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Topic, &a.QuestionCount, &a.CorrectCount, &a.Score, &a.StartedAt, &completed); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			a.CompletedAt = &t
		}
		attempts = append(attempts, &a)
	}
	return attempts, rows.Err()
}

// CompleteAttempt marks an attempt finished and records its final score.
func (s *Store) CompleteAttempt(ctx context.Context, id string, correctCount int, score float64) (*Attempt, error) {
	now := time.Now().UTC()
	q := s.bind(`UPDATE attempts SET correct_count = ?, score = ?, completed_at = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, q, correctCount, score, now, id)
	if err != nil {
		return nil, fmt.Errorf("complete attempt: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetAttempt(ctx, id)
}

// CreateResponse records one answered question within an attempt.
func (s *Store) CreateResponse(ctx context.Context, r *Response) (*Response, error) {
	id, err := generateID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	q := s.bind(`
INSERT INTO responses(id, attempt_id, question_id, answer, correct, confidence, time_taken_seconds, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q,
		id, r.AttemptID, r.QuestionID, r.Answer, r.Correct, r.Confidence, r.TimeTakenSeconds, now,
	); err != nil {
		return nil, fmt.Errorf("create response: %w", err)
	}

	created := *r
	created.ID = id
	created.CreatedAt = now
	return &created, nil
}

// ListResponses returns an attempt's responses in answer order.
func (s *Store) ListResponses(ctx context.Context, attemptID string) ([]*Response, error) {
	q := s.bind(`
SELECT id, attempt_id, question_id, answer, correct, confidence, time_taken_seconds, created_at
FROM responses
WHERE attempt_id = ?
ORDER BY created_at ASC`)

	rows, err := s.db.QueryContext(ctx, q, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	responses := make([]*Response, 0)
	for rows.Next() {
		var r Response
		if err := rows.Scan(&r.ID, &r.AttemptID, &r.QuestionID, &r.Answer, &r.Correct, &r.Confidence, &r.TimeTakenSeconds, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		responses = append(responses, &r)
	}
	return responses, rows.Err()
}

// AttemptStats aggregates an attempt's recorded responses.
func (s *Store) AttemptStats(ctx context.Context, attemptID string) (*AttemptStats, error) {
	q := s.bind(`
SELECT
	COUNT(*),
	COALESCE(SUM(CASE WHEN correct THEN 1 ELSE 0 END), 0),
	COALESCE(AVG(confidence), 0),
	COALESCE(AVG(time_taken_seconds), 0)
FROM responses
WHERE attempt_id = ?`)

	var stats AttemptStats
	if err := s.db.QueryRowContext(ctx, q, attemptID).Scan(
		&stats.Total, &stats.Correct, &stats.AvgConfidence, &stats.AvgTimeSeconds,
	); err != nil {
		return nil, fmt.Errorf("attempt stats: %w", err)
	}
	if stats.Total > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(stats.Total) * 100
	}
	return &stats, nil
}

func (s *Store) scanAttempt(row *sql.Row) (*Attempt, error) {
	var (
		a         Attempt
		completed sql.NullTime
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Topic, &a.QuestionCount, &a.CorrectCount, &a.Score, &a.StartedAt, &completed)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan attempt: %w", err)
	}
	if completed.Valid {
		t := completed.Time
		a.CompletedAt = &t
	}
	return &a, nil
}
