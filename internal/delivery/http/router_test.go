package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"appointment-system/config"
	"appointment-system/internal/delivery/dto"
	"appointment-system/internal/delivery/http/handler"
	"appointment-system/internal/delivery/http/middleware"
	"appointment-system/internal/usecase"
	"appointment-system/pkg/jwt"
	"appointment-system/pkg/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// Embedded interfaces leave unused methods nil; tests only hit the overridden ones.
type stubAppointments struct {
	usecase.AppointmentUsecase
	cancelled string
}

func (s *stubAppointments) AvailableSlots(ctx context.Context, doctorCode, date string) (*dto.AvailabilityResponse, error) {
	return &dto.AvailabilityResponse{AvailableSlots: []string{"09:00"}}, nil
}

func (s *stubAppointments) CancelAppointment(ctx context.Context, id string) error {
	s.cancelled = id
	return nil
}

func (s *stubAppointments) ListAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	return &dto.AppointmentListResponse{}, nil
}

type stubDoctors struct{ usecase.DoctorUsecase }

func (stubDoctors) ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	return &dto.DoctorListResponse{}, nil
}

func newTestRouter(t *testing.T, requireAdmin bool) (http.Handler, *stubAppointments) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	v := validator.NewValidator()
	appointments := &stubAppointments{}

	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour})
	r := NewRouter(
		handler.NewAuthHandler(nil, v),
		handler.NewDoctorHandler(stubDoctors{}, v),
		handler.NewAppointmentHandler(appointments, v),
		handler.NewChatHandler(nil, 0),
		handler.NewAuditLogHandler(nil, v),
		middleware.NewAuthMiddleware(jwtService, client),
		middleware.NewCORSMiddleware(""),
		nil,
		log,
		nil,
		nil,
		requireAdmin,
	)
	return r.Setup(), appointments
}

func TestRouterHealth(t *testing.T) {
	router, _ := newTestRouter(t, false)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouterAvailabilityIsNotAnAppointmentID(t *testing.T) {
	router, appointments := newTestRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments/availability?doctorId=D1&date=2030-01-02", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/appointments/abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", appointments.cancelled)
}

func TestRouterAdminGate(t *testing.T) {
	open, _ := newTestRouter(t, false)
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/adminappointments", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	guarded, _ := newTestRouter(t, true)
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/adminappointments", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Reads of the directory stay public either way.
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctors", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterAuditLogsRequireToken(t *testing.T) {
	router, _ := newTestRouter(t, false)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auditlogs", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterPreflight(t *testing.T) {
	router, _ := newTestRouter(t, false)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/chat", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
