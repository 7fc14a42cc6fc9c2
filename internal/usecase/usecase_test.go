package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"appointment-system/internal/domain/entity"
	"appointment-system/internal/domain/gateway"
	"appointment-system/internal/domain/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newMockDB backs gorm with sqlmock so tests can assert transaction boundaries.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

type auditCall struct {
	actor    *uuid.UUID
	action   string
	entityID string
}

type fakeAuditService struct {
	calls []auditCall
	err   error
}

func (f *fakeAuditService) LogCreate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	f.calls = append(f.calls, auditCall{actor: userID, action: action, entityID: entityID})
	return f.err
}

func (f *fakeAuditService) LogDelete(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue interface{}) error {
	f.calls = append(f.calls, auditCall{actor: userID, action: action, entityID: entityID})
	return f.err
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (f *fakeUserRepo) Create(db *gorm.DB, user *entity.User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	return f.users[email], nil
}

func (f *fakeUserRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// fakeDoctorRepo serves the directory from memory. Search tiers return the
// configured results and record which tiers were asked.
type fakeDoctorRepo struct {
	doctors    map[string]*entity.Doctor
	createErrs []error

	exact, byName, byField []entity.Doctor
	searchErr              error
	tiers                  []string
	tokens                 []string
}

func newFakeDoctorRepo(doctors ...entity.Doctor) *fakeDoctorRepo {
	f := &fakeDoctorRepo{doctors: map[string]*entity.Doctor{}}
	for i := range doctors {
		d := doctors[i]
		f.doctors[d.Code] = &d
	}
	return f
}

func (f *fakeDoctorRepo) Create(db *gorm.DB, doctor *entity.Doctor) error {
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	f.doctors[doctor.Code] = doctor
	return nil
}

func (f *fakeDoctorRepo) FindByCode(db *gorm.DB, code string) (*entity.Doctor, error) {
	return f.doctors[code], nil
}

func (f *fakeDoctorRepo) FindAll(db *gorm.DB) ([]entity.Doctor, error) {
	f.tiers = append(f.tiers, "all")
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	codes := make([]string, 0, len(f.doctors))
	for code := range f.doctors {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	doctors := make([]entity.Doctor, 0, len(codes))
	for _, code := range codes {
		doctors = append(doctors, *f.doctors[code])
	}
	return doctors, nil
}

func (f *fakeDoctorRepo) DeleteByCode(db *gorm.DB, code string) (int64, error) {
	if _, ok := f.doctors[code]; !ok {
		return 0, nil
	}
	delete(f.doctors, code)
	return 1, nil
}

func (f *fakeDoctorRepo) MaxCodeNumber(db *gorm.DB) (int64, error) {
	return 0, nil
}

func (f *fakeDoctorRepo) FindByExactName(db *gorm.DB, name string) ([]entity.Doctor, error) {
	f.tiers = append(f.tiers, "exact")
	return f.exact, f.searchErr
}

func (f *fakeDoctorRepo) FindByNameTokens(db *gorm.DB, tokens []string) ([]entity.Doctor, error) {
	f.tiers = append(f.tiers, "name")
	f.tokens = tokens
	return f.byName, f.searchErr
}

func (f *fakeDoctorRepo) FindByAnyField(db *gorm.DB, tokens []string) ([]entity.Doctor, error) {
	f.tiers = append(f.tiers, "field")
	return f.byField, f.searchErr
}

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*entity.Appointment
	createErr    error
	locked       []string
}

func newFakeAppointmentRepo(appointments ...entity.Appointment) *fakeAppointmentRepo {
	f := &fakeAppointmentRepo{appointments: map[uuid.UUID]*entity.Appointment{}}
	for i := range appointments {
		a := appointments[i]
		f.appointments[a.ID] = &a
	}
	return f
}

func (f *fakeAppointmentRepo) Create(db *gorm.DB, appointment *entity.Appointment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.appointments[appointment.ID] = appointment
	return nil
}

func (f *fakeAppointmentRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	return f.appointments[id], nil
}

func (f *fakeAppointmentRepo) FindByPatientEmail(db *gorm.DB, email string) ([]entity.Appointment, error) {
	var result []entity.Appointment
	for _, a := range f.appointments {
		if a.PatientEmail == email {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (f *fakeAppointmentRepo) FindAll(db *gorm.DB) ([]entity.Appointment, error) {
	var result []entity.Appointment
	for _, a := range f.appointments {
		result = append(result, *a)
	}
	return result, nil
}

func (f *fakeAppointmentRepo) FindByDoctorAndDate(db *gorm.DB, doctorCode, date string) ([]entity.Appointment, error) {
	var result []entity.Appointment
	for _, a := range f.appointments {
		if a.DoctorCode == doctorCode && a.Date == date {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (f *fakeAppointmentRepo) FindOverlapping(db *gorm.DB, doctorCode, date string, start, end time.Time) (*entity.Appointment, error) {
	for _, a := range f.appointments {
		if a.DoctorCode == doctorCode && a.Date == date && a.Overlaps(start, end) {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAppointmentRepo) DeleteByID(db *gorm.DB, id uuid.UUID) (int64, error) {
	if _, ok := f.appointments[id]; !ok {
		return 0, nil
	}
	delete(f.appointments, id)
	return 1, nil
}

func (f *fakeAppointmentRepo) LockDoctorDay(db *gorm.DB, doctorCode, date string) error {
	f.locked = append(f.locked, doctorCode+"|"+date)
	return nil
}

// stubLLM answers every completion with text or err and records the requests.
type stubLLM struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []gateway.LLMRequest
	deadline bool
}

func (s *stubLLM) Complete(ctx context.Context, req gateway.LLMRequest) (gateway.LLMResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	_, s.deadline = ctx.Deadline()
	if s.err != nil {
		return gateway.LLMResponse{}, s.err
	}
	return gateway.LLMResponse{Text: s.text}, nil
}

func (s *stubLLM) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return ""
	}
	msgs := s.requests[len(s.requests)-1].Messages
	return msgs[len(msgs)-1].Content
}

func (s *stubLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

var (
	_ repository.UserRepository        = (*fakeUserRepo)(nil)
	_ repository.DoctorRepository      = (*fakeDoctorRepo)(nil)
	_ repository.AppointmentRepository = (*fakeAppointmentRepo)(nil)
	_ gateway.LLMClient                = (*stubLLM)(nil)
)
