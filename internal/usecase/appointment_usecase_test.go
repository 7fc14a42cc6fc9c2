package usecase

import (
	"context"
	"testing"
	"time"

	"appointment-system/internal/delivery/dto"
	"appointment-system/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cardiologist = entity.Doctor{
	Code:       "D1",
	Name:       "Dr. Jane Smith",
	Speciality: "Cardiologist",
	Hospital:   "City Hospital",
}

type appointmentFixture struct {
	mock         sqlmock.Sqlmock
	appointments *fakeAppointmentRepo
	audit        *fakeAuditService
	usecase      *appointmentUsecase
}

func newAppointmentFixture(t *testing.T, loc *time.Location, now time.Time, existing ...entity.Appointment) *appointmentFixture {
	t.Helper()
	db, mock := newMockDB(t)
	f := &appointmentFixture{
		mock:         mock,
		appointments: newFakeAppointmentRepo(existing...),
		audit:        &fakeAuditService{},
	}
	uc := NewAppointmentUsecase(db, quietLogger(), f.appointments, newFakeDoctorRepo(cardiologist), f.audit, nil, loc).(*appointmentUsecase)
	uc.now = func() time.Time { return now }
	f.usecase = uc
	return f
}

func bookedAt(t *testing.T, date, clock string) entity.Appointment {
	t.Helper()
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.UTC)
	require.NoError(t, err)
	return entity.Appointment{
		ID:         uuid.New(),
		DoctorCode: "D1",
		Date:       date,
		Time:       clock,
		StartAt:    start,
		EndAt:      start.Add(time.Hour),
	}
}

func bookingRequest(date, clock string) *dto.BookAppointmentRequest {
	return &dto.BookAppointmentRequest{
		PatientEmail:     "pat@example.com",
		PatientName:      "Pat",
		DoctorID:         "D1",
		DoctorName:       "Someone Else",
		DoctorSpeciality: "Dermatologist",
		DoctorHospital:   "Elsewhere",
		Date:             date,
		Time:             clock,
		Issue:            "chest pain",
	}
}

var monday = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

func TestAppointmentUsecase_BookStoresDirectorySnapshot(t *testing.T) {
	f := newAppointmentFixture(t, time.UTC, monday)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.usecase.BookAppointment(context.Background(), bookingRequest("2025-03-04", "09:30"))
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	stored := f.appointments.appointments[id]
	require.NotNil(t, stored)

	assert.Equal(t, "Dr. Jane Smith", stored.DoctorName)
	assert.Equal(t, "Cardiologist", stored.DoctorSpeciality)
	assert.Equal(t, "City Hospital", stored.DoctorHospital)
	assert.Equal(t, "09:30", stored.Time)
	assert.Equal(t, time.Hour, stored.EndAt.Sub(stored.StartAt))
	assert.Equal(t, []string{"D1|2025-03-04"}, f.appointments.locked)

	require.Len(t, f.audit.calls, 1)
	assert.Equal(t, entity.AuditActionAppointmentCreate, f.audit.calls[0].action)
}

func TestAppointmentUsecase_BookRejectsOverlap(t *testing.T) {
	f := newAppointmentFixture(t, time.UTC, monday, bookedAt(t, "2025-03-04", "09:00"))
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.usecase.BookAppointment(context.Background(), bookingRequest("2025-03-04", "09:30"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.NoError(t, f.mock.ExpectationsWereMet())
	assert.Empty(t, f.audit.calls)
}

func TestAppointmentUsecase_BookAdjacentSlotIsFree(t *testing.T) {
	f := newAppointmentFixture(t, time.UTC, monday, bookedAt(t, "2025-03-04", "09:00"))
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.usecase.BookAppointment(context.Background(), bookingRequest("2025-03-04", "10:00"))
	assert.NoError(t, err)
}

func TestAppointmentUsecase_BookOtherDoctorOrDayIsFree(t *testing.T) {
	other := bookedAt(t, "2025-03-04", "09:00")
	other.DoctorCode = "D2"
	f := newAppointmentFixture(t, time.UTC, monday, other, bookedAt(t, "2025-03-05", "09:00"))
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.usecase.BookAppointment(context.Background(), bookingRequest("2025-03-04", "09:00"))
	assert.NoError(t, err)
}

func TestAppointmentUsecase_BookValidation(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		clock   string
		wantErr error
	}{
		{name: "malformed date", date: "04/03/2025", clock: "09:00", wantErr: ErrInvalidDate},
		{name: "past date", date: "2025-03-02", clock: "09:00", wantErr: ErrAppointmentDateInPast},
		{name: "malformed time", date: "2025-03-04", clock: "9am", wantErr: ErrInvalidTime},
		{name: "out of range time", date: "2025-03-04", clock: "25:00", wantErr: ErrInvalidTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppointmentFixture(t, time.UTC, monday)

			_, err := f.usecase.BookAppointment(context.Background(), bookingRequest(tt.date, tt.clock))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestAppointmentUsecase_BookTodayIsAllowed(t *testing.T) {
	f := newAppointmentFixture(t, time.UTC, monday)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.usecase.BookAppointment(context.Background(), bookingRequest("2025-03-03", "15:00"))
	assert.NoError(t, err)
}

func TestAppointmentUsecase_TodayFollowsConfiguredZone(t *testing.T) {
	// 20:00 UTC on the 3rd is already the 4th at UTC+7.
	zone := time.FixedZone("UTC+7", 7*60*60)
	f := newAppointmentFixture(t, zone, time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC))

	_, err := f.usecase.BookAppointment(context.Background(), bookingRequest("2025-03-03", "15:00"))
	assert.ErrorIs(t, err, ErrAppointmentDateInPast)
}

func TestAppointmentUsecase_BookUnknownDoctor(t *testing.T) {
	f := newAppointmentFixture(t, time.UTC, monday)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	req := bookingRequest("2025-03-04", "09:00")
	req.DoctorID = "D404"
	_, err := f.usecase.BookAppointment(context.Background(), req)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAppointmentUsecase_BookUniqueViolationIsUnavailable(t *testing.T) {
	f := newAppointmentFixture(t, time.UTC, monday)
	f.appointments.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "uq_appointments_doctor_slot"}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.usecase.BookAppointment(context.Background(), bookingRequest("2025-03-04", "09:00"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestAppointmentUsecase_AvailableSlots(t *testing.T) {
	f := newAppointmentFixture(t, time.UTC, monday,
		bookedAt(t, "2025-03-04", "09:30"),
		bookedAt(t, "2025-03-04", "13:00"),
	)

	resp, err := f.usecase.AvailableSlots(context.Background(), "D1", "2025-03-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"11:00", "12:00", "14:00", "15:00", "16:00", "17:00"}, resp.AvailableSlots)
}

func TestAppointmentUsecase_AvailableSlotsEmptyDay(t *testing.T) {
	f := newAppointmentFixture(t, time.UTC, monday)

	resp, err := f.usecase.AvailableSlots(context.Background(), "D1", "2025-03-04")
	require.NoError(t, err)
	assert.Len(t, resp.AvailableSlots, 9)
	assert.Equal(t, "09:00", resp.AvailableSlots[0])
	assert.Equal(t, "17:00", resp.AvailableSlots[8])
}

func TestAppointmentUsecase_AvailableSlotsErrors(t *testing.T) {
	f := newAppointmentFixture(t, time.UTC, monday)
	ctx := context.Background()

	_, err := f.usecase.AvailableSlots(ctx, "", "2025-03-04")
	assert.ErrorIs(t, err, ErrMissingParams)

	_, err = f.usecase.AvailableSlots(ctx, "D1", "")
	assert.ErrorIs(t, err, ErrMissingParams)

	_, err = f.usecase.AvailableSlots(ctx, "D1", "2025-13-40")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = f.usecase.AvailableSlots(ctx, "D404", "2025-03-04")
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestAppointmentUsecase_CancelAppointment(t *testing.T) {
	existing := bookedAt(t, "2025-03-04", "09:00")
	f := newAppointmentFixture(t, time.UTC, monday, existing)
	ctx := context.Background()

	assert.ErrorIs(t, f.usecase.CancelAppointment(ctx, "not-a-uuid"), ErrInvalidAppointmentID)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	assert.ErrorIs(t, f.usecase.CancelAppointment(ctx, uuid.NewString()), ErrAppointmentNotFound)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	require.NoError(t, f.usecase.CancelAppointment(ctx, existing.ID.String()))
	require.NoError(t, f.mock.ExpectationsWereMet())

	assert.Empty(t, f.appointments.appointments)
	require.Len(t, f.audit.calls, 1)
	assert.Equal(t, entity.AuditActionAppointmentCancel, f.audit.calls[0].action)

	// The slot opens up again.
	resp, err := f.usecase.AvailableSlots(ctx, "D1", "2025-03-04")
	require.NoError(t, err)
	assert.Contains(t, resp.AvailableSlots, "09:00")
}

func TestAppointmentUsecase_ListPatientAppointments(t *testing.T) {
	mine := bookedAt(t, "2025-03-04", "09:00")
	mine.PatientEmail = "pat@example.com"
	theirs := bookedAt(t, "2025-03-04", "11:00")
	theirs.PatientEmail = "other@example.com"
	f := newAppointmentFixture(t, time.UTC, monday, mine, theirs)

	_, err := f.usecase.ListPatientAppointments(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmailRequired)

	resp, err := f.usecase.ListPatientAppointments(context.Background(), "pat@example.com")
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, mine.ID.String(), resp.Appointments[0].ID)

	all, err := f.usecase.ListAllAppointments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)
}
