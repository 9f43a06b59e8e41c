// Package server assembles the HTTP surface: routing, CORS, auth middleware,
// and the operational endpoints.
package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck/internal/attempt"
	"github.com/quizdeck/quizdeck/internal/auth"
	"github.com/quizdeck/quizdeck/internal/config"
	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/quiz"
)

// Handlers groups the per-domain HTTP handler sets the router mounts.
type Handlers struct {
	Auth    *auth.HTTPHandlers
	Quiz    *quiz.HTTPHandlers
	Attempt *attempt.HTTPHandlers
}

// NewHTTPServer wires all routes and middleware into an http.Server.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, rdb *redis.Client, authSvc *auth.Service, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, rdb); err != nil {
			reqLogger := logging.FromContext(r.Context())
			reqLogger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Auth
	mux.HandleFunc("POST /v1/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /v1/auth/login", h.Auth.Login)
	mux.HandleFunc("GET /v1/auth/session", h.Auth.Session)
	mux.HandleFunc("GET /v1/oauth/{provider}/start", h.Auth.OAuthStart)
	mux.HandleFunc("GET /v1/oauth/{provider}/callback", h.Auth.OAuthCallback)

	// Quiz authoring
	mux.HandleFunc("GET /v1/quizzes", h.Quiz.ListQuizzes)
	mux.Handle("POST /v1/quizzes", requireAuth(h.Quiz.CreateQuiz))
	mux.Handle("GET /v1/quizzes/my", requireAuth(h.Quiz.ListMyQuizzes))
	mux.HandleFunc("GET /v1/quizzes/{id}", h.Quiz.GetQuiz)
	mux.Handle("PUT /v1/quizzes/{id}", requireAuth(h.Quiz.UpdateQuiz))
	mux.Handle("DELETE /v1/quizzes/{id}", requireAuth(h.Quiz.DeleteQuiz))
	mux.HandleFunc("GET /v1/quizzes/{id}/questions", h.Quiz.ListQuestions)
	mux.Handle("POST /v1/quizzes/{id}/questions", requireAuth(h.Quiz.CreateQuestion))
	mux.Handle("PUT /v1/quizzes/{id}/questions/{questionId}", requireAuth(h.Quiz.UpdateQuestion))
	mux.HandleFunc("GET /v1/questions/{id}", h.Quiz.GetQuestion)
	mux.Handle("DELETE /v1/questions/{id}", requireAuth(h.Quiz.DeleteQuestion))
	mux.Handle("POST /v1/questions/{id}/options", requireAuth(h.Quiz.CreateOptions))
	mux.Handle("PUT /v1/questions/{id}/options", requireAuth(h.Quiz.UpdateOptions))
	mux.HandleFunc("GET /v1/options/{id}", h.Quiz.GetOption)
	mux.Handle("PUT /v1/options/{id}", requireAuth(h.Quiz.UpdateOption))
	mux.Handle("DELETE /v1/options/{id}", requireAuth(h.Quiz.DeleteOption))
	mux.HandleFunc("GET /v1/question-types", h.Quiz.ListQuestionTypes)

	// Attempt lifecycle
	mux.Handle("POST /v1/quizzes/{id}/attempts", requireAuth(h.Attempt.Start))
	mux.Handle("GET /v1/attempts", requireAuth(h.Attempt.List))
	mux.Handle("GET /v1/attempts/{id}", requireAuth(h.Attempt.Get))
	mux.Handle("GET /v1/attempts/{id}/next-question", requireAuth(h.Attempt.Next))
	mux.Handle("POST /v1/attempts/{id}/responses", requireAuth(h.Attempt.Submit))
	mux.Handle("GET /v1/attempts/{id}/progress", requireAuth(h.Attempt.Progress))
	mux.Handle("POST /v1/attempts/{id}/finish", requireAuth(h.Attempt.Finish))
	mux.Handle("GET /v1/attempts/{id}/result", requireAuth(h.Attempt.Result))

	var handler http.Handler = mux
	handler = auth.AuthMiddleware(authSvc, logger)(handler)
	handler = requestLoggerMiddleware(logger)(handler)
	handler = corsMiddleware(cfg.CORS)(handler)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}
}

func requireAuth(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(h)
}

// requestLoggerMiddleware stamps a per-request logger into the request
// context so handlers deep in the stack can log with route metadata.
func requestLoggerMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := logger.With().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()
			next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))
		})
	}
}

func corsMiddleware(cfg config.CORS) func(http.Handler) http.Handler {
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = struct{}{}
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if _, ok := origins[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, rdb *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	return rdb.Ping(ctx).Err()
}
