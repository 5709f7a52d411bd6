package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brightpath-crm/notify-backend/api/controllers"
	"github.com/brightpath-crm/notify-backend/api/middleware"
	"github.com/brightpath-crm/notify-backend/internal/notifications"
	"github.com/brightpath-crm/notify-backend/internal/reminders"
	"github.com/brightpath-crm/notify-backend/pkg/config"
	"github.com/brightpath-crm/notify-backend/pkg/db"
	"github.com/brightpath-crm/notify-backend/pkg/logger"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Notifications notifications.Service
	Processor     controllers.NotificationProcessor
	Reminders     reminders.Service
	Metrics       prometheus.Gatherer
}

// NewRouter assembles the API routes.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(params.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(params.Notifications, logg))
			r.Patch("/", controllers.MarkNotificationsRead(params.Notifications, logg))
			r.Post("/demo", controllers.CreateDemoNotification(params.Notifications, logg))
			r.Route("/process", func(r chi.Router) {
				r.Post("/", controllers.ProcessNotifications(params.Processor, logg))
				r.Put("/", controllers.StartProcessor(params.Processor, logg))
				r.Delete("/", controllers.StopProcessor(params.Processor, logg))
			})
		})

		r.Route("/follow-up-reminders", func(r chi.Router) {
			r.Get("/", controllers.ListReminders(params.Reminders, logg))
			r.Post("/", controllers.CreateReminder(params.Reminders, logg))
			r.Put("/", controllers.UpdateReminder(params.Reminders, logg))
			r.Delete("/", controllers.DeleteReminder(params.Reminders, logg))
		})
	})

	return r
}
