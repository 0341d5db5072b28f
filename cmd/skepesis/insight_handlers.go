package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skepesis/skepesis/insight"
	"github.com/skepesis/skepesis/internal/analysis"
	"github.com/skepesis/skepesis/internal/logging"
)

type insightRequest struct {
	// Data is the learning data or context to analyze.
	Data string `json:"data"`
	// Type selects the cognitive analysis; defaults to "analyze".
	Type string `json:"type,omitempty"`
	// Length overrides the type's default response length.
	Length string `json:"length,omitempty"`
	// BypassCache forces a fresh analysis.
	BypassCache bool `json:"bypass_cache,omitempty"`
}

type insightResponse struct {
	Insight string `json:"insight"`
	Type    string `json:"type"`
}

func (s *server) handleGenerateInsight(w http.ResponseWriter, r *http.Request) {
	var req insightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}
	if req.Type == "" {
		req.Type = string(analysis.InsightAnalyze)
	}

	template, length, ok := analysis.TemplateFor(analysis.InsightType(req.Type))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid insight type", "invalid_type")
		return
	}
	if req.Length != "" {
		length = insight.Length(req.Length)
	}

	result, err := s.engine.Generate(r.Context(), req.Data, insight.Options{
		Template:    template,
		Length:      length,
		BypassCache: req.BypassCache,
	})
	if err != nil {
		mapEngineError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, insightResponse{Insight: result, Type: req.Type})
}

// handleAttemptInsight turns a completed attempt's answers into learning
// data and asks the engine for the requested analysis.
func (s *server) handleAttemptInsight(w http.ResponseWriter, r *http.Request) {
	attemptID := chi.URLParam(r, "attemptID")
	insightType := analysis.InsightType(r.URL.Query().Get("type"))
	if insightType == "" {
		insightType = analysis.InsightSummary
	}
	template, length, ok := analysis.TemplateFor(insightType)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid insight type", "invalid_type")
		return
	}

	attempt, ok := s.loadOwnedAttempt(w, r)
	if !ok {
		return
	}

	answers, err := s.attemptAnswers(r, attemptID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load responses", "internal_error")
		return
	}
	if len(answers) == 0 {
		writeError(w, http.StatusConflict, "attempt has no recorded responses yet", "no_responses")
		return
	}

	narrative := analysis.AttemptNarrative(attempt.Topic, answers)
	result, err := s.engine.Generate(r.Context(), narrative, insight.Options{
		Template:       template,
		Length:         length,
		SkipValidation: true, // narrative is produced locally, not user input
	})
	if err != nil {
		mapEngineError(r, w, err)
		return
	}

	writeJSON(w, http.StatusOK, insightResponse{Insight: result, Type: string(insightType)})
}

// attemptAnswers joins an attempt's responses with their question metadata.
func (s *server) attemptAnswers(r *http.Request, attemptID string) ([]analysis.Answer, error) {
	responses, err := s.store.ListResponses(r.Context(), attemptID)
	if err != nil {
		return nil, err
	}

	answers := make([]analysis.Answer, 0, len(responses))
	for _, resp := range responses {
		answer := analysis.Answer{
			QuestionID: resp.QuestionID,
			Correct:    resp.Correct,
			Confidence: resp.Confidence,
			Seconds:    resp.TimeTakenSeconds,
		}
		if question, err := s.store.GetQuestion(r.Context(), resp.QuestionID); err == nil {
			answer.Question = question.Prompt
			answer.Category = question.Category
			answer.Difficulty = question.Difficulty
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func (s *server) handleInsightTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, analysis.InsightTypes())
}

func (s *server) handleInsightStatus(w http.ResponseWriter, r *http.Request) {
	ready := s.engine.HealthCheck(r.Context())
	status := "ready"
	if !ready {
		status = "unavailable"
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status, "ready": ready})
}

func (s *server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.CacheStats())
}

func (s *server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.engine.ClearCache()
	logging.FromContext(r.Context()).Info("insight cache cleared")
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// mapEngineError translates engine errors into HTTP responses. Full error
// detail stays in the logs; clients get a stable code.
func mapEngineError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case insight.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
	case errors.Is(err, insight.ErrBusy):
		writeError(w, http.StatusServiceUnavailable, "analysis service busy, try again shortly", "busy")
	case errors.Is(err, insight.ErrBackendUnavailable), errors.Is(err, insight.ErrBackendTimeout), errors.Is(err, insight.ErrBackendStatus):
		writeError(w, http.StatusServiceUnavailable, "analysis temporarily unavailable", "backend_unavailable")
	default:
		logging.FromContext(r.Context()).Error("insight generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "internal_error")
	}
}
