package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	skepesis "github.com/skepesis/skepesis"
	"github.com/skepesis/skepesis/backends"
	"github.com/skepesis/skepesis/insight"
	"github.com/skepesis/skepesis/internal/auth"
	"github.com/skepesis/skepesis/internal/store"
	"github.com/skepesis/skepesis/trivia"
)

// stubBackend answers every generation with a canned insight.
type stubBackend struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
}

func (b *stubBackend) Name() string  { return "stub" }
func (b *stubBackend) Model() string { return "stub-model" }
func (b *stubBackend) Close()        {}

func (b *stubBackend) Health(ctx context.Context) bool { return true }

func (b *stubBackend) Generate(ctx context.Context, req backends.GenerateRequest) (*backends.GenerateResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	reply := b.reply
	if reply == "" {
		reply = "Accuracy tracks confidence closely in this session."
	}
	return &backends.GenerateResult{Text: reply, Done: true}, nil
}

func (b *stubBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type testEnv struct {
	server  *httptest.Server
	store   *store.Store
	backend *stubBackend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	backend := &stubBackend{}
	engine := insight.NewEngine(backend, insight.EngineConfig{})
	t.Cleanup(engine.Close)

	issuer, err := auth.NewTokenIssuer("test-secret-0123456789", time.Hour)
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}

	cfg := skepesis.DefaultConfig()
	cfg.Server.RateLimitPerMinute = 0 // exercised separately

	srv := newServer(cfg, db, engine, issuer, trivia.NewClient(""))
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, store: db, backend: backend}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

// register creates an account over the API and returns its session token.
func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	resp, body := e.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"username": strings.Split(email, "@")[0],
		"password": "correct horse battery",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d: %s", resp.StatusCode, body)
	}
	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return session.Token
}

// adminToken creates an admin account directly in the store and a token for it.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	hash, err := auth.HashPassword("admin password 123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin, err := e.store.CreateUser(context.Background(), "admin@example.com", "admin", hash, store.RoleAdmin)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	issuer, _ := auth.NewTokenIssuer("test-secret-0123456789", time.Hour)
	token, err := issuer.Issue(admin.ID, admin.Email, admin.Role)
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}
	return token
}

func TestHealthAndStatus(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK || string(body) != "OK" {
		t.Errorf("health: status %d body %q", resp.StatusCode, body)
	}

	resp, body = env.request(t, http.MethodGet, "/api/insights/status", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var status struct {
		Ready bool `json:"ready"`
	}
	if err := json.Unmarshal(body, &status); err != nil || !status.Ready {
		t.Errorf("status body = %s (err %v)", body, err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada@example.com")

	// Duplicate registration is rejected.
	resp, _ := env.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "ada@example.com", "username": "ada2", "password": "another password 9",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate register: status %d, want 409", resp.StatusCode)
	}

	resp, body := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "correct horse battery",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d: %s", resp.StatusCode, body)
	}
	var session struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(body, &session)

	resp, body = env.request(t, http.MethodGet, "/api/auth/me", session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "ada@example.com") {
		t.Errorf("me body = %s", body)
	}

	resp, _ = env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong password!!",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login: status %d, want 401", resp.StatusCode)
	}
}

func TestQuestionsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodGet, "/api/questions/", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous list: status %d, want 401", resp.StatusCode)
	}
}

func TestQuestionLifecycleHidesAnswerKey(t *testing.T) {
	env := newTestEnv(t)
	student := env.register(t, "ada@example.com")
	admin := env.adminToken(t)

	// Students may not create questions.
	resp, _ := env.request(t, http.MethodPost, "/api/questions/", student, map[string]any{
		"prompt": "x", "options": map[string]string{"A": "a"}, "correct_answer": "A",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("student create: status %d, want 403", resp.StatusCode)
	}

	resp, body := env.request(t, http.MethodPost, "/api/questions/", admin, map[string]any{
		"prompt":         "Capital of France?",
		"options":        map[string]string{"A": "Paris", "B": "Lyon"},
		"correct_answer": "A",
		"category":       "geography",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d: %s", resp.StatusCode, body)
	}

	resp, body = env.request(t, http.MethodGet, "/api/questions/?category=geography", student, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d", resp.StatusCode)
	}
	if strings.Contains(string(body), `"correct_answer":"A"`) {
		t.Errorf("answer key leaked to students: %s", body)
	}
	if !strings.Contains(string(body), "Capital of France?") {
		t.Errorf("question missing from list: %s", body)
	}
}

func TestAttemptFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	question, err := env.store.CreateQuestion(context.Background(), &store.Question{
		Prompt:        "Capital of France?",
		Options:       map[string]string{"A": "Paris", "B": "Lyon"},
		CorrectAnswer: "A",
		Category:      "geography",
		Difficulty:    "beginner",
		QuestionType:  "multiple_choice",
		Source:        "manual",
	})
	if err != nil {
		t.Fatalf("seed question: %v", err)
	}

	resp, body := env.request(t, http.MethodPost, "/api/attempts/", token, map[string]any{
		"topic": "geography", "question_count": 1,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create attempt: status %d: %s", resp.StatusCode, body)
	}
	var attempt store.Attempt
	_ = json.Unmarshal(body, &attempt)

	resp, body = env.request(t, http.MethodPost, fmt.Sprintf("/api/attempts/%s/responses", attempt.ID), token, map[string]any{
		"question_id": question.ID, "answer": "A", "confidence": 80, "time_taken_seconds": 12.5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit response: status %d: %s", resp.StatusCode, body)
	}
	var recorded store.Response
	_ = json.Unmarshal(body, &recorded)
	if !recorded.Correct {
		t.Error("correct answer graded as incorrect")
	}

	resp, body = env.request(t, http.MethodPost, fmt.Sprintf("/api/attempts/%s/complete", attempt.ID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete: status %d: %s", resp.StatusCode, body)
	}

	// Completing twice conflicts.
	resp, _ = env.request(t, http.MethodPost, fmt.Sprintf("/api/attempts/%s/complete", attempt.ID), token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("double complete: status %d, want 409", resp.StatusCode)
	}

	resp, body = env.request(t, http.MethodGet, fmt.Sprintf("/api/attempts/%s/results", attempt.ID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("results: status %d", resp.StatusCode)
	}
	var results struct {
		WeightedScore float64 `json:"weighted_score"`
		Stats         struct {
			Total   int `json:"total"`
			Correct int `json:"correct"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if results.Stats.Total != 1 || results.Stats.Correct != 1 {
		t.Errorf("stats = %+v", results.Stats)
	}
	if results.WeightedScore != 100 {
		t.Errorf("weighted score = %.2f, want 100 (confident and correct)", results.WeightedScore)
	}
}

func TestAttemptOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "ada@example.com")
	intruder := env.register(t, "eve@example.com")

	resp, body := env.request(t, http.MethodPost, "/api/attempts/", owner, map[string]any{
		"topic": "geography", "question_count": 1,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create attempt: status %d", resp.StatusCode)
	}
	var attempt store.Attempt
	_ = json.Unmarshal(body, &attempt)

	resp, _ = env.request(t, http.MethodGet, "/api/attempts/"+attempt.ID, intruder, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("foreign attempt read: status %d, want 403", resp.StatusCode)
	}
}

func TestGenerateInsight(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	resp, body := env.request(t, http.MethodPost, "/api/insights/generate", token, map[string]any{
		"data": "Student answered 8 of 10 geography questions correctly with high confidence",
		"type": "summary",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate: status %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Insight string `json:"insight"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Type != "summary" || out.Insight == "" {
		t.Errorf("response = %+v", out)
	}

	// Identical request is served from cache, no second downstream call.
	before := env.backend.callCount()
	resp, _ = env.request(t, http.MethodPost, "/api/insights/generate", token, map[string]any{
		"data": "Student answered 8 of 10 geography questions correctly with high confidence",
		"type": "summary",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cached generate: status %d", resp.StatusCode)
	}
	if env.backend.callCount() != before {
		t.Error("identical request hit the backend again")
	}

	resp, _ = env.request(t, http.MethodPost, "/api/insights/generate", token, map[string]any{
		"data": "Student answered 8 of 10 geography questions correctly", "type": "bogus",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bogus type: status %d, want 400", resp.StatusCode)
	}

	resp, _ = env.request(t, http.MethodPost, "/api/insights/generate", token, map[string]any{
		"data": "short", "type": "summary",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("short data: status %d, want 400", resp.StatusCode)
	}
}

func TestAttemptInsight(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	resp, body := env.request(t, http.MethodPost, "/api/attempts/", token, map[string]any{
		"topic": "geography", "question_count": 2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create attempt: status %d", resp.StatusCode)
	}
	var attempt store.Attempt
	_ = json.Unmarshal(body, &attempt)

	// No responses yet.
	resp, _ = env.request(t, http.MethodGet, "/api/insights/attempts/"+attempt.ID, token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("empty attempt insight: status %d, want 409", resp.StatusCode)
	}

	for _, qid := range []string{"q1", "q2"} {
		if _, err := env.store.CreateResponse(context.Background(), &store.Response{
			AttemptID: attempt.ID, QuestionID: qid, Answer: "A", Correct: qid == "q1",
			Confidence: 85, TimeTakenSeconds: 10,
		}); err != nil {
			t.Fatalf("seed response: %v", err)
		}
	}

	resp, body = env.request(t, http.MethodGet, "/api/insights/attempts/"+attempt.ID+"?type=card", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("attempt insight: status %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Insight string `json:"insight"`
		Type    string `json:"type"`
	}
	_ = json.Unmarshal(body, &out)
	if out.Type != "card" || out.Insight == "" {
		t.Errorf("response = %+v", out)
	}
}

func TestCacheAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)
	student := env.register(t, "ada@example.com")
	admin := env.adminToken(t)

	resp, _ := env.request(t, http.MethodGet, "/api/insights/cache/stats", student, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("student cache stats: status %d, want 403", resp.StatusCode)
	}

	resp, body := env.request(t, http.MethodGet, "/api/insights/cache/stats", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin cache stats: status %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "capacity") {
		t.Errorf("stats body = %s", body)
	}

	resp, body = env.request(t, http.MethodPost, "/api/insights/cache/clear", admin, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "true") {
		t.Errorf("cache clear: status %d body %s", resp.StatusCode, body)
	}
}

func TestBackendFailureMapsTo503(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	env.backend.err = backends.ErrUnavailable

	resp, body := env.request(t, http.MethodPost, "/api/insights/generate", token, map[string]any{
		"data": "Student answered 8 of 10 geography questions correctly with high confidence",
	})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("backend failure: status %d, want 503: %s", resp.StatusCode, body)
	}
}

func TestRateLimitOnGeneration(t *testing.T) {
	env := newTestEnv(t)

	// Second server over the same store, with a tight limit.
	engine := insight.NewEngine(env.backend, insight.EngineConfig{})
	t.Cleanup(engine.Close)
	issuer, _ := auth.NewTokenIssuer("test-secret-0123456789", time.Hour)
	cfg := skepesis.DefaultConfig()
	cfg.Server.RateLimitPerMinute = 2
	limited := httptest.NewServer(newServer(cfg, env.store, engine, issuer, trivia.NewClient("")).routes())
	t.Cleanup(limited.Close)

	token := env.register(t, "ada@example.com")

	sawRejection := false
	for i := 0; i < 5; i++ {
		payload, _ := json.Marshal(map[string]any{
			"data":         fmt.Sprintf("Student answered %d of 10 geography questions correctly today", i),
			"bypass_cache": true,
		})
		req, _ := http.NewRequest(http.MethodPost, limited.URL+"/api/insights/generate", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			sawRejection = true
		}
		_ = resp.Body.Close()
	}
	if !sawRejection {
		t.Error("no request was rate limited despite the tight cap")
	}
}
