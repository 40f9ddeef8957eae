package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes builds the router. allowedOrigins feeds CORS; empty allows any
// origin without credentials.
func SetupRoutes(h *Handlers, health *HealthChecker, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	origins := allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: len(allowedOrigins) > 0,
		MaxAge:           300,
	}))

	if health != nil {
		r.Get("/health", health.HandleHealth)
	} else {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	}

	r.Get("/email-preview/{type}", h.EmailPreview)

	r.Route("/api", func(r chi.Router) {
		r.Post("/schedule-reminders", h.ScheduleReminders)
		r.Get("/reminder-runs", h.ListReminderRuns)

		r.Post("/send-email", h.SendEmail)
		r.Post("/submit-enrollment", h.SubmitEnrollment)
		r.Post("/enrollments/{enrollmentID}/payment-status", h.UpdatePaymentStatus)

		r.Get("/counselors", h.ListCounselors)
		r.Get("/pricing", h.GetPricing)
	})

	return r
}
