package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	config "github.com/taehun/board/internal/config/board-api"
	"github.com/taehun/board/internal/obs"
	authsvc "github.com/taehun/board/internal/services/board-api/auth"
)

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, d *deps) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.HTTPMetrics)
	r.Use(cors)
	r.Use(authsvc.Middleware(d.tokens, cfg.Auth.ExcludePaths, logger))

	// Public surface: registration, login, token exchange, mail
	// verification, and the read-only user probes.
	r.Post("/registers", d.userH.Register)
	r.Post("/logins", d.authH.Login)
	r.Post("/refresh", d.authH.Refresh)
	r.Route("/mail", func(r chi.Router) {
		r.Post("/send", d.mailH.SendCode)
		r.Post("/check", d.mailH.VerifyCode)
	})
	r.Get("/users", d.userH.List)
	r.Get("/users/{email}/{id}", d.userH.Exists)

	// Everything below needs the identity attached by the admission
	// middleware.
	r.Group(func(r chi.Router) {
		r.Use(authsvc.RequireAuth)

		r.Get("/logout", d.authH.Logout)
		r.Patch("/password", d.userH.ResetPassword)

		r.Get("/users/profile", d.userH.Profile)
		r.Patch("/users/profile", d.userH.UpdateProfile)
		r.Put("/profiles", d.userH.UpdateProfile)
		r.Get("/profiles/statistics", d.userH.Statistics)
		r.Delete("/users", d.userH.Delete)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", d.boardH.ListPosts)
		r.Get("/{id}", d.boardH.GetPost)
		r.Get("/{id}/comments", d.boardH.ListComments)

		r.Group(func(r chi.Router) {
			r.Use(authsvc.RequireAuth)
			r.Post("/", d.boardH.CreatePost)
			r.Put("/{id}", d.boardH.UpdatePost)
			r.Delete("/{id}", d.boardH.DeletePost)
			r.Post("/{id}/comments", d.boardH.AddComment)
		})
	})
	r.With(authsvc.RequireAuth).Delete("/comments/{id}", d.boardH.DeleteComment)

	handler := otelhttp.NewHandler(r, "board-api")

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

func serveHTTP(srv *http.Server, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
	return srv.ListenAndServe()
}

// cors mirrors the browser policy the frontend expects: any origin,
// credentials allowed, Authorization readable by the client.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Expose-Headers", "Authorization")
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
