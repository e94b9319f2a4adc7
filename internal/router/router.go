package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"deckgen-backend/internal/config"
	"deckgen-backend/internal/handlers"
	"deckgen-backend/internal/middleware"
)

func New(deckHandler *handlers.DeckHandler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// ──── Global Middleware ────
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowOrigins))

	// ──── Rate Limiters ────
	generateLimiter := middleware.NewRateLimiter(cfg.GenerateRatePerMin, time.Minute)

	// ──── Health Check ────
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── API v1 Routes ────
	r.Route("/api/v1", func(r chi.Router) {
		// ──── Deck Routes ────
		r.Route("/decks", func(r chi.Router) {
			r.Post("/outline", deckHandler.Outline)
			r.With(generateLimiter.Middleware).Post("/generate", deckHandler.Generate)
		})
	})

	return r
}
