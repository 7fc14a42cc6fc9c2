package http

import (
	"net/http"

	"appointment-system/internal/delivery/http/handler"
	"appointment-system/internal/delivery/http/middleware"
	"appointment-system/internal/observability/metrics"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	doctorHandler      *handler.DoctorHandler
	appointmentHandler *handler.AppointmentHandler
	chatHandler        *handler.ChatHandler
	auditLogHandler    *handler.AuditLogHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	rateLimiter        *middleware.RateLimiter
	log                *logrus.Logger
	metrics            *metrics.Metrics
	metricsHandler     http.Handler
	requireAdmin       bool
}

func NewRouter(
	authHandler *handler.AuthHandler,
	doctorHandler *handler.DoctorHandler,
	appointmentHandler *handler.AppointmentHandler,
	chatHandler *handler.ChatHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimiter *middleware.RateLimiter,
	log *logrus.Logger,
	metrics *metrics.Metrics,
	metricsHandler http.Handler,
	requireAdmin bool,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		doctorHandler:      doctorHandler,
		appointmentHandler: appointmentHandler,
		chatHandler:        chatHandler,
		auditLogHandler:    auditLogHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		rateLimiter:        rateLimiter,
		log:                log,
		metrics:            metrics,
		metricsHandler:     metricsHandler,
		requireAdmin:       requireAdmin,
	}
}

// Setup registers every route and returns the root handler. CORS wraps the
// router so preflight requests are answered before route matching.
func (r *Router) Setup() http.Handler {
	r.router.Use(middleware.RequestLogger(r.log, r.metrics))
	// A valid token only attaches the caller for auditing; anonymous requests pass.
	r.router.Use(r.authMiddleware.Optional)

	r.router.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)
	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)
	}

	// Auth
	r.router.Handle("/register", r.limited(r.authHandler.Register)).Methods(http.MethodPost)
	r.router.Handle("/login", r.limited(r.authHandler.Login)).Methods(http.MethodPost)
	r.router.Handle("/logout", r.authMiddleware.Authenticate(http.HandlerFunc(r.authHandler.Logout))).Methods(http.MethodPost)
	r.router.Handle("/me", r.authMiddleware.Authenticate(http.HandlerFunc(r.authHandler.GetCurrentUser))).Methods(http.MethodGet)

	// Doctor directory
	r.router.HandleFunc("/doctors", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	r.router.HandleFunc("/doctors/search", r.doctorHandler.SearchDoctors).Methods(http.MethodGet)
	r.router.Handle("/doctors", r.admin(r.doctorHandler.CreateDoctor)).Methods(http.MethodPost)
	r.router.Handle("/doctors", r.admin(r.doctorHandler.DeleteDoctor)).Methods(http.MethodDelete)

	// Appointments; availability must be registered before {id}
	r.router.HandleFunc("/appointments/availability", r.appointmentHandler.GetAvailability).Methods(http.MethodGet)
	r.router.HandleFunc("/appointments", r.appointmentHandler.GetPatientAppointments).Methods(http.MethodGet)
	r.router.HandleFunc("/appointments", r.appointmentHandler.BookAppointment).Methods(http.MethodPost)
	r.router.HandleFunc("/appointments/{id}", r.appointmentHandler.CancelAppointment).Methods(http.MethodDelete)
	r.router.Handle("/adminappointments", r.admin(r.appointmentHandler.GetAllAppointments)).Methods(http.MethodGet)

	// Chat
	r.router.Handle("/chat", r.limited(r.chatHandler.Chat)).Methods(http.MethodPost)
	r.router.HandleFunc("/chat/{conversation_id}", r.chatHandler.GetConversation).Methods(http.MethodGet)

	// Audit logs are always admin-only.
	auditLogs := r.router.PathPrefix("/auditlogs").Subrouter()
	auditLogs.Use(r.authMiddleware.Authenticate)
	auditLogs.Use(middleware.RequireAdmin)
	auditLogs.HandleFunc("", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	auditLogs.HandleFunc("/{id:[0-9]+}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	return r.corsMiddleware.Handle(r.router)
}

// admin guards directory and admin views when admin enforcement is enabled.
func (r *Router) admin(h http.HandlerFunc) http.Handler {
	if !r.requireAdmin {
		return h
	}
	return r.authMiddleware.Authenticate(middleware.RequireAdmin(h))
}

func (r *Router) limited(h http.HandlerFunc) http.Handler {
	if r.rateLimiter == nil {
		return h
	}
	return r.rateLimiter.Handle(h)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
