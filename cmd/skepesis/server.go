package main

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	skepesis "github.com/skepesis/skepesis"
	"github.com/skepesis/skepesis/insight"
	"github.com/skepesis/skepesis/internal/auth"
	"github.com/skepesis/skepesis/internal/logging"
	"github.com/skepesis/skepesis/internal/metrics"
	"github.com/skepesis/skepesis/internal/ratelimit"
	"github.com/skepesis/skepesis/internal/store"
	"github.com/skepesis/skepesis/trivia"
	"github.com/skepesis/skepesis/web"
)

// server bundles the wired application dependencies behind the router.
type server struct {
	cfg     skepesis.Config
	store   *store.Store
	engine  *insight.Engine
	issuer  *auth.TokenIssuer
	trivia  *trivia.Client
	limiter *ratelimit.Store
}

func newServer(cfg skepesis.Config, db *store.Store, engine *insight.Engine, issuer *auth.TokenIssuer, triviaClient *trivia.Client) *server {
	var limiter *ratelimit.Store
	if cfg.Server.RateLimitPerMinute > 0 {
		perSecond := float64(cfg.Server.RateLimitPerMinute) / 60
		limiter = ratelimit.NewStore(perSecond, float64(cfg.Server.RateLimitPerMinute))
	}
	return &server{
		cfg:     cfg,
		store:   db,
		engine:  engine,
		issuer:  issuer,
		trivia:  triviaClient,
		limiter: limiter,
	}
}

// routes builds the HTTP router.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware(s.cfg.Server.CORSOrigins...))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.With(auth.Middleware(s.issuer)).Get("/me", s.handleMe)
		})

		r.Route("/questions", func(r chi.Router) {
			r.Use(auth.Middleware(s.issuer))
			r.Get("/", s.handleListQuestions)
			r.Get("/{questionID}", s.handleGetQuestion)
			r.With(auth.RequireRole(store.RoleAdmin)).Post("/", s.handleCreateQuestion)
			r.With(auth.RequireRole(store.RoleAdmin)).Post("/import", s.handleImportTrivia)
		})

		r.Route("/attempts", func(r chi.Router) {
			r.Use(auth.Middleware(s.issuer))
			r.Post("/", s.handleCreateAttempt)
			r.Get("/", s.handleListAttempts)
			r.Get("/{attemptID}", s.handleGetAttempt)
			r.Post("/{attemptID}/responses", s.handleSubmitResponse)
			r.Post("/{attemptID}/complete", s.handleCompleteAttempt)
			r.Get("/{attemptID}/results", s.handleAttemptResults)
		})

		r.Route("/insights", func(r chi.Router) {
			r.Get("/types", s.handleInsightTypes)
			r.Get("/status", s.handleInsightStatus)
			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(s.issuer))
				r.With(s.rateLimit).Post("/generate", s.handleGenerateInsight)
				r.With(s.rateLimit).Get("/attempts/{attemptID}", s.handleAttemptInsight)
			})
			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(s.issuer))
				r.Use(auth.RequireRole(store.RoleAdmin))
				r.Get("/cache/stats", s.handleCacheStats)
				r.Post("/cache/clear", s.handleCacheClear)
			})
		})
	})

	return r
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := web.Templates.ReadFile("index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// rateLimit caps generation traffic per authenticated user, falling back to
// the caller's IP for anonymous requests.
func (s *server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := "ip:" + remoteIP(r)
		keyType := "ip"
		if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
			key = "user:" + claims.UserID
			keyType = "user"
		}

		if !s.limiter.Allow(key) {
			metrics.RateLimitRejections.WithLabelValues(keyType).Inc()
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, slow down", "rate_limited")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes a unified JSON error response:
//
//	{"error":{"message":"...","code":"..."}}
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"message": message,
			"code":    code,
		},
	})
}
