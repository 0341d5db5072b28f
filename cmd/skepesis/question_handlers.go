package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/skepesis/skepesis/internal/logging"
	"github.com/skepesis/skepesis/internal/metrics"
	"github.com/skepesis/skepesis/internal/store"
	"github.com/skepesis/skepesis/trivia"
)

func (s *server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	filter := store.QuestionFilter{
		Category:   r.URL.Query().Get("category"),
		Difficulty: r.URL.Query().Get("difficulty"),
		Limit:      50,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit <= 200 {
			filter.Limit = limit
		}
	}

	questions, err := s.store.ListQuestions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list questions", "internal_error")
		return
	}

	// Students should not see the answer key while quizzing.
	for _, q := range questions {
		q.CorrectAnswer = ""
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions, "count": len(questions)})
}

func (s *server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := s.store.GetQuestion(r.Context(), chi.URLParam(r, "questionID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "question not found", "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load question", "internal_error")
		return
	}
	question.CorrectAnswer = ""
	writeJSON(w, http.StatusOK, question)
}

type createQuestionRequest struct {
	Prompt        string            `json:"prompt"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Category      string            `json:"category"`
	Difficulty    string            `json:"difficulty"`
	QuestionType  string            `json:"question_type"`
}

func (s *server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}
	if req.Prompt == "" || len(req.Options) == 0 {
		writeError(w, http.StatusBadRequest, "prompt and options are required", "invalid_request")
		return
	}
	if _, ok := req.Options[req.CorrectAnswer]; !ok {
		writeError(w, http.StatusBadRequest, "correct_answer must be one of the option keys", "invalid_request")
		return
	}
	if req.QuestionType == "" {
		req.QuestionType = trivia.TypeMultipleChoice
	}
	if req.Category == "" {
		req.Category = "General Knowledge"
	}
	if req.Difficulty == "" {
		req.Difficulty = "beginner"
	}

	created, err := s.store.CreateQuestion(r.Context(), &store.Question{
		Prompt:        req.Prompt,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		QuestionType:  req.QuestionType,
		Source:        "manual",
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create question", "internal_error")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type importTriviaRequest struct {
	Amount     int    `json:"amount"`
	CategoryID int    `json:"category_id"`
	Difficulty string `json:"difficulty"`
	Type       string `json:"type"`
}

func (s *server) handleImportTrivia(w http.ResponseWriter, r *http.Request) {
	var req importTriviaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}

	fetched, err := s.trivia.FetchQuestions(r.Context(), trivia.FetchOptions{
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
		Difficulty: req.Difficulty,
		Type:       req.Type,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "could not fetch questions from the trivia source", "upstream_error")
		return
	}

	imported := 0
	for _, q := range fetched {
		if _, err := s.store.CreateQuestion(r.Context(), q); err != nil {
			logging.FromContext(r.Context()).Warn("question import failed", "error", err)
			continue
		}
		imported++
	}
	metrics.QuestionsImported.Add(float64(imported))

	logging.FromContext(r.Context()).Info("trivia import complete", "fetched", len(fetched), "imported", imported)
	writeJSON(w, http.StatusOK, map[string]int{"fetched": len(fetched), "imported": imported})
}
