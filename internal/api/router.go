package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/soaringjerry/Sanctuary/internal/config"
	"github.com/soaringjerry/Sanctuary/internal/metrics"
	"github.com/soaringjerry/Sanctuary/internal/middleware"
	"github.com/soaringjerry/Sanctuary/internal/models"
	"github.com/soaringjerry/Sanctuary/internal/utils"
)

type Router struct {
	svc *Services
	cfg *config.Config
}

func NewRouter(svc *Services, cfg *config.Config) *Router {
	return &Router{svc: svc, cfg: cfg}
}

// Handler builds the full chi tree with the middleware stack applied.
// Extra mounts (static frontend) go on "/" via mountRoot when non-nil.
func (rt *Router) Handler(mountRoot http.Handler) http.Handler {
	sec := rt.cfg.Security
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Observe)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(sec.CORSOrigins))
	r.Use(middleware.LocaleMiddleware)

	r.Get("/health", rt.handleHealth)
	r.Get("/version", rt.handleVersion)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.RateLimit(sec.RateLimitRequests, sec.RateLimitWindow))
		r.Use(middleware.WithAuth)
		rt.Register(r)
	})

	if mountRoot != nil {
		r.Handle("/*", mountRoot)
	}
	return r
}

// Register attaches the /api routes to r.
func (rt *Router) Register(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", rt.handleSignup)
		r.With(middleware.RateLimit(rt.cfg.Security.LoginLimit, time.Minute)).Post("/login", rt.handleLogin)
		r.Post("/check-email", rt.handleCheckEmail)
		r.With(middleware.RateLimit(rt.cfg.Security.LoginLimit, time.Minute)).Post("/forgot-password", rt.handleForgotPassword)
		r.With(middleware.RateLimit(rt.cfg.Security.LoginLimit, time.Minute)).Post("/reset-password", rt.handleResetPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/me", rt.handleMe)
		r.Get("/me/preferences", rt.handleGetPreferences)
		r.Put("/me/preferences", rt.handlePutPreferences)
		r.Get("/me/likes", rt.handleLikedTracks)
		r.Post("/me/likes/{trackID}", rt.handleToggleLike)

		r.Get("/tracks", rt.handleListTracks)
		r.Get("/player/queue", rt.handlePlayerQueue)
		r.Get("/recommendations", rt.handleRecommendations)

		r.Route("/mood", func(r chi.Router) {
			r.With(middleware.MaxAge(time.Hour)).Get("/questions", rt.handleQuestions)
			r.Post("/assessments", rt.handleSubmitAssessment)
			r.Get("/latest", rt.handleLatest)
			r.Get("/status", rt.handleStatus)
			r.Get("/history", rt.handleHistory)
			r.Get("/history/export", rt.handleExportHistory)
			r.Delete("/history", rt.handleDeleteHistory)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(models.RoleAdmin))
		r.Get("/tracks", rt.handleListTracks)
		r.Post("/tracks", rt.handleAddTrack)
		r.Delete("/tracks/{id}", rt.handleDeleteTrack)
		r.Get("/totals", rt.handleTotals)
	})
}

// GET /health
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"name":       "Sanctuary API",
		"locale":     locale,
		"msg":        utils.T(locale, "health.ok"),
		"commit":     rt.cfg.Server.Commit,
		"build_time": rt.cfg.Server.BuildTime,
	})
}

// GET /version
func (rt *Router) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"commit":     rt.cfg.Server.Commit,
		"build_time": rt.cfg.Server.BuildTime,
	})
}

// currentUser returns the authenticated user id. Routes behind RequireAuth
// always have one.
func currentUser(r *http.Request) string {
	uid, _ := middleware.UserIDFromContext(r.Context())
	return uid
}

func actor(r *http.Request) string {
	if c, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return c.Email
	}
	return "anonymous"
}
