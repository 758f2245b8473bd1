package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/internal/conversation"
	httpmiddleware "github.com/riverline/collections-platform/internal/http/middleware"
	"github.com/riverline/collections-platform/internal/ops"
	"github.com/riverline/collections-platform/internal/payments"
	"github.com/riverline/collections-platform/internal/promises"
	"github.com/riverline/collections-platform/internal/settlements"
	"github.com/riverline/collections-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	BorrowersHandler    *borrowers.Handler
	PromisesHandler     *promises.Handler
	SettlementsHandler  *settlements.Handler
	PaymentsHandler     *payments.Handler
	ConversationHandler *conversation.Handler
	OpsHandler          *ops.Handler
	CoachHub            *ops.CoachHub
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// SupervisorJWTSecret gates the ops and reporting surface. Empty
	// disables those routes entirely.
	SupervisorJWTSecret string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", handleHealth)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.ConversationHandler != nil {
			public.Post("/api/twilio/voice", cfg.ConversationHandler.Voice)
		}
		if cfg.CoachHub != nil {
			public.Get("/ops/coach/stream", cfg.CoachHub.HandleStream)
		}
	})

	// Collections API
	r.Group(func(api chi.Router) {
		api.Use(httpmiddleware.RateLimit(25, 50))

		if cfg.BorrowersHandler != nil {
			api.Route("/borrowers", func(r chi.Router) {
				r.Post("/", cfg.BorrowersHandler.Create)
				r.Get("/", cfg.BorrowersHandler.List)
				r.Get("/{id}", cfg.BorrowersHandler.Get)
				r.Patch("/{id}/flags", cfg.BorrowersHandler.SetFlags)
				r.Post("/{id}/persona", cfg.BorrowersHandler.RecomputePersona)
			})
		}

		if cfg.PromisesHandler != nil {
			api.Route("/promises", func(r chi.Router) {
				r.Get("/", cfg.PromisesHandler.List)
				r.Post("/", cfg.PromisesHandler.Create)
				r.Post("/{id}/kept", cfg.PromisesHandler.MarkKept)
				r.Post("/{id}/broken", cfg.PromisesHandler.MarkBroken)
				r.Post("/{id}/cancel", cfg.PromisesHandler.Cancel)
			})
		}

		if cfg.SettlementsHandler != nil {
			api.Route("/settlements", func(r chi.Router) {
				r.Get("/{borrowerID}/recommendation", cfg.SettlementsHandler.Recommend)
				r.Post("/{borrowerID}/offers", cfg.SettlementsHandler.CreateOffer)
				r.Get("/{borrowerID}/offers", cfg.SettlementsHandler.ListOffers)
				r.Post("/offers/{id}/accept", cfg.SettlementsHandler.Accept)
			})
		}

		if cfg.PaymentsHandler != nil {
			api.Route("/payments", func(r chi.Router) {
				r.Post("/", cfg.PaymentsHandler.Collect)
				r.Get("/", cfg.PaymentsHandler.ListByBorrower)
			})
		}

		if cfg.ConversationHandler != nil {
			api.Route("/conversations", func(r chi.Router) {
				r.Post("/start", cfg.ConversationHandler.Start)
				r.Post("/utter", cfg.ConversationHandler.Utter)
				r.Post("/outcome", cfg.ConversationHandler.SetOutcome)
				r.Post("/followup", cfg.ConversationHandler.ScheduleFollowup)
				r.Get("/{id}", cfg.ConversationHandler.Get)
				r.Get("/{id}/summary", cfg.ConversationHandler.Summary)
			})
		}
	})

	// Ops routes (supervisor surface)
	if cfg.SupervisorJWTSecret != "" && cfg.OpsHandler != nil {
		r.Group(func(sup chi.Router) {
			sup.Use(httpmiddleware.SupervisorJWT(cfg.SupervisorJWTSecret))

			sup.Route("/ops", func(r chi.Router) {
				r.Get("/queue", cfg.OpsHandler.Queue)
				r.Get("/queue/today", cfg.OpsHandler.TodayQueue)
				r.Get("/recovery/{id}", cfg.OpsHandler.Recovery)
				r.Get("/dashboard", cfg.OpsHandler.Dashboard)
				r.Get("/leaderboard", cfg.OpsHandler.Leaderboard)
				r.Get("/compliance", cfg.OpsHandler.Compliance)
				r.Post("/call/{id}", cfg.OpsHandler.StartCall)
			})
			sup.Get("/reports/eod", cfg.OpsHandler.EODReport)
		})
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
