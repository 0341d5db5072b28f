package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skepesis/skepesis/internal/analysis"
	"github.com/skepesis/skepesis/internal/auth"
	"github.com/skepesis/skepesis/internal/logging"
	"github.com/skepesis/skepesis/internal/metrics"
	"github.com/skepesis/skepesis/internal/store"
)

type createAttemptRequest struct {
	Topic         string `json:"topic"`
	QuestionCount int    `json:"question_count"`
}

func (s *server) handleCreateAttempt(w http.ResponseWriter, r *http.Request) {
	var req createAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}
	if req.QuestionCount <= 0 {
		writeError(w, http.StatusBadRequest, "question_count must be positive", "invalid_request")
		return
	}

	claims, _ := auth.ClaimsFromContext(r.Context())
	attempt, err := s.store.CreateAttempt(r.Context(), claims.UserID, req.Topic, req.QuestionCount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create attempt", "internal_error")
		return
	}
	writeJSON(w, http.StatusCreated, attempt)
}

func (s *server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	attempts, err := s.store.ListAttempts(r.Context(), claims.UserID, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list attempts", "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempts": attempts, "count": len(attempts)})
}

func (s *server) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, ok := s.loadOwnedAttempt(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

type submitResponseRequest struct {
	QuestionID       string  `json:"question_id"`
	Answer           string  `json:"answer"`
	Confidence       int     `json:"confidence"`
	TimeTakenSeconds float64 `json:"time_taken_seconds"`
}

func (s *server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	attempt, ok := s.loadOwnedAttempt(w, r)
	if !ok {
		return
	}
	if attempt.CompletedAt != nil {
		writeError(w, http.StatusConflict, "attempt is already completed", "attempt_completed")
		return
	}

	var req submitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}
	if req.Confidence < 0 || req.Confidence > 100 {
		writeError(w, http.StatusBadRequest, "confidence must be between 0 and 100", "invalid_confidence")
		return
	}

	question, err := s.store.GetQuestion(r.Context(), req.QuestionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "question not found", "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load question", "internal_error")
		return
	}

	correct := req.Answer == question.CorrectAnswer
	response, err := s.store.CreateResponse(r.Context(), &store.Response{
		AttemptID:        attempt.ID,
		QuestionID:       req.QuestionID,
		Answer:           req.Answer,
		Correct:          correct,
		Confidence:       req.Confidence,
		TimeTakenSeconds: req.TimeTakenSeconds,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not record response", "internal_error")
		return
	}

	result := "incorrect"
	if correct {
		result = "correct"
	}
	metrics.ResponsesRecorded.WithLabelValues(result).Inc()

	writeJSON(w, http.StatusCreated, response)
}

func (s *server) handleCompleteAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, ok := s.loadOwnedAttempt(w, r)
	if !ok {
		return
	}
	if attempt.CompletedAt != nil {
		writeError(w, http.StatusConflict, "attempt is already completed", "attempt_completed")
		return
	}

	answers, err := s.attemptAnswers(r, attempt.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load responses", "internal_error")
		return
	}
	if len(answers) == 0 {
		writeError(w, http.StatusConflict, "attempt has no recorded responses", "no_responses")
		return
	}

	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	score := analysis.WeightedScore(answers)

	completed, err := s.store.CompleteAttempt(r.Context(), attempt.ID, correct, score)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not complete attempt", "internal_error")
		return
	}

	logging.FromContext(r.Context()).Info("attempt completed",
		"attempt_id", attempt.ID,
		"correct", correct,
		"score", score,
	)
	writeJSON(w, http.StatusOK, completed)
}

// attemptResults is the full post-quiz analysis payload.
type attemptResults struct {
	Attempt       *store.Attempt             `json:"attempt"`
	Stats         *store.AttemptStats        `json:"stats"`
	WeightedScore float64                    `json:"weighted_score"`
	Curiosity     float64                    `json:"curiosity_score"`
	Alignment     float64                    `json:"confidence_alignment"`
	Calibration   float64                    `json:"calibration_score"`
	Patterns      *analysis.LearningPatterns `json:"patterns"`
	Gaps          *analysis.LearningGaps     `json:"gaps"`
}

func (s *server) handleAttemptResults(w http.ResponseWriter, r *http.Request) {
	attempt, ok := s.loadOwnedAttempt(w, r)
	if !ok {
		return
	}

	stats, err := s.store.AttemptStats(r.Context(), attempt.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not compute stats", "internal_error")
		return
	}
	answers, err := s.attemptAnswers(r, attempt.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load responses", "internal_error")
		return
	}

	writeJSON(w, http.StatusOK, attemptResults{
		Attempt:       attempt,
		Stats:         stats,
		WeightedScore: analysis.WeightedScore(answers),
		Curiosity:     analysis.CuriosityScore(answers),
		Alignment:     analysis.ConfidenceAlignment(answers),
		Calibration:   analysis.CalibrationScore(answers),
		Patterns:      analysis.Patterns(answers),
		Gaps:          analysis.Gaps(answers),
	})
}

// loadOwnedAttempt fetches the attempt in the URL and enforces that it
// belongs to the caller (admins may read any attempt).
func (s *server) loadOwnedAttempt(w http.ResponseWriter, r *http.Request) (*store.Attempt, bool) {
	attempt, err := s.store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "attempt not found", "not_found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "could not load attempt", "internal_error")
		return nil, false
	}

	claims, _ := auth.ClaimsFromContext(r.Context())
	if attempt.UserID != claims.UserID && claims.Role != store.RoleAdmin {
		writeError(w, http.StatusForbidden, "attempt belongs to another user", "forbidden")
		return nil, false
	}
	return attempt, true
}
