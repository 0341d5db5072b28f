package store

import "time"

// Roles assignable to a user account.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Question is a quiz question. Options maps answer letters (A-D, or
// True/False for boolean questions) to their display text.
type Question struct {
	ID            string            `json:"id"`
	Prompt        string            `json:"prompt"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	Category      string            `json:"category"`
	Difficulty    string            `json:"difficulty"`
	QuestionType  string            `json:"question_type"`
	Source        string            `json:"source"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Attempt is one quiz session by a user. Score stays zero until the
// attempt is completed.
type Attempt struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Topic         string     `json:"topic"`
	QuestionCount int        `json:"question_count"`
	CorrectCount  int        `json:"correct_count"`
	Score         float64    `json:"score"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Response is one answered question within an attempt. Confidence is the
// student's self-reported certainty, 0 to 100.
type Response struct {
	ID               string    `json:"id"`
	AttemptID        string    `json:"attempt_id"`
	QuestionID       string    `json:"question_id"`
	Answer           string    `json:"answer"`
	Correct          bool      `json:"correct"`
	Confidence       int       `json:"confidence"`
	TimeTakenSeconds float64   `json:"time_taken_seconds"`
	CreatedAt        time.Time `json:"created_at"`
}

// AttemptStats is a per-attempt rollup over its recorded responses.
type AttemptStats struct {
	Total          int     `json:"total"`
	Correct        int     `json:"correct"`
	Accuracy       float64 `json:"accuracy_percent"`
	AvgConfidence  float64 `json:"avg_confidence"`
	AvgTimeSeconds float64 `json:"avg_time_seconds"`
}
