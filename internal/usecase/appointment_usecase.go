package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"appointment-system/internal/converter"
	"appointment-system/internal/delivery/dto"
	"appointment-system/internal/domain/entity"
	"appointment-system/internal/domain/repository"
	"appointment-system/internal/observability/metrics"
	"appointment-system/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	firstSlotHour = 9
	lastSlotHour  = 17
)

var (
	ErrInvalidDate           = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrInvalidTime           = errors.New("invalid time format, expected HH:MM")
	ErrAppointmentDateInPast = errors.New("appointment date cannot be in the past")
	ErrSlotUnavailable       = errors.New("this time slot is already booked or overlaps with another appointment")
	ErrMissingParams         = errors.New("doctor id and date are required")
	ErrInvalidAppointmentID  = errors.New("invalid appointment id")
	ErrAppointmentNotFound   = errors.New("appointment not found")
	ErrEmailRequired         = errors.New("email parameter is required")
)

// Booking outcomes reported to metrics.
const (
	bookingBooked   = "booked"
	bookingConflict = "conflict"
	bookingRejected = "rejected"
	bookingFailed   = "error"
)

type AppointmentUsecase interface {
	BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.CreatedResponse, error)
	AvailableSlots(ctx context.Context, doctorCode, date string) (*dto.AvailabilityResponse, error)
	CancelAppointment(ctx context.Context, id string) error
	ListPatientAppointments(ctx context.Context, email string) (*dto.AppointmentListResponse, error)
	ListAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	auditService    service.AuditService
	metrics         *metrics.Metrics
	location        *time.Location
	now             func() time.Time
}

// NewAppointmentUsecase interprets dates and times in location; "today" is
// also evaluated there.
func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
	metrics *metrics.Metrics,
	location *time.Location,
) AppointmentUsecase {
	if location == nil {
		location = time.UTC
	}
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		auditService:    auditService,
		metrics:         metrics,
		location:        location,
		now:             time.Now,
	}
}

func (u *appointmentUsecase) BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.CreatedResponse, error) {
	day, err := u.parseDate(req.Date)
	if err != nil {
		u.metrics.ObserveBooking(bookingRejected)
		return nil, err
	}
	if day.Before(u.today()) {
		u.metrics.ObserveBooking(bookingRejected)
		return nil, ErrAppointmentDateInPast
	}

	clock, err := time.Parse(timeLayout, strings.TrimSpace(req.Time))
	if err != nil {
		u.metrics.ObserveBooking(bookingRejected)
		return nil, ErrInvalidTime
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, u.location)
	end := start.Add(entity.AppointmentDuration)
	date := day.Format(dateLayout)
	doctorCode := strings.TrimSpace(req.DoctorID)

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByCode(tx, doctorCode)
	if err != nil {
		u.log.Warnf("Failed to find doctor by code: %+v", err)
		u.metrics.ObserveBooking(bookingFailed)
		return nil, err
	}
	if doctor == nil {
		u.metrics.ObserveBooking(bookingRejected)
		return nil, ErrDoctorNotFound
	}

	if err := u.appointmentRepo.LockDoctorDay(tx, doctorCode, date); err != nil {
		u.log.Warnf("Failed to lock doctor day: %+v", err)
		u.metrics.ObserveBooking(bookingFailed)
		return nil, err
	}

	existing, err := u.appointmentRepo.FindOverlapping(tx, doctorCode, date, start, end)
	if err != nil {
		u.log.Warnf("Failed to check overlapping appointments: %+v", err)
		u.metrics.ObserveBooking(bookingFailed)
		return nil, err
	}
	if existing != nil {
		u.metrics.ObserveBooking(bookingConflict)
		return nil, ErrSlotUnavailable
	}

	appointment := &entity.Appointment{
		ID:               uuid.New(),
		PatientEmail:     strings.TrimSpace(req.PatientEmail),
		PatientName:      strings.TrimSpace(req.PatientName),
		DoctorCode:       doctor.Code,
		DoctorName:       doctor.Name,
		DoctorSpeciality: doctor.Speciality,
		DoctorHospital:   doctor.Hospital,
		Date:             date,
		Time:             start.Format(timeLayout),
		Issue:            strings.TrimSpace(req.Issue),
		StartAt:          start,
		EndAt:            end,
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		if isDuplicateKeyError(err, "doctor_slot") {
			u.metrics.ObserveBooking(bookingConflict)
			return nil, ErrSlotUnavailable
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		u.metrics.ObserveBooking(bookingFailed)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), converter.AppointmentToResponse(appointment)); err != nil {
		u.metrics.ObserveBooking(bookingFailed)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		u.metrics.ObserveBooking(bookingFailed)
		return nil, err
	}

	u.metrics.ObserveBooking(bookingBooked)
	return &dto.CreatedResponse{ID: appointment.ID.String()}, nil
}

// AvailableSlots lists the hourly starts between 09:00 and 17:00 whose whole
// hour is free of existing appointments.
func (u *appointmentUsecase) AvailableSlots(ctx context.Context, doctorCode, date string) (*dto.AvailabilityResponse, error) {
	doctorCode = strings.TrimSpace(doctorCode)
	if doctorCode == "" || strings.TrimSpace(date) == "" {
		return nil, ErrMissingParams
	}

	day, err := u.parseDate(date)
	if err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)
	doctor, err := u.doctorRepo.FindByCode(db, doctorCode)
	if err != nil {
		u.log.Warnf("Failed to find doctor by code: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	booked, err := u.appointmentRepo.FindByDoctorAndDate(db, doctorCode, day.Format(dateLayout))
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor: %+v", err)
		return nil, err
	}

	return &dto.AvailabilityResponse{AvailableSlots: freeSlots(day, booked)}, nil
}

func freeSlots(day time.Time, booked []entity.Appointment) []string {
	slots := make([]string, 0, lastSlotHour-firstSlotHour+1)
	for hour := firstSlotHour; hour <= lastSlotHour; hour++ {
		start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
		end := start.Add(entity.AppointmentDuration)

		taken := false
		for i := range booked {
			if booked[i].Overlaps(start, end) {
				taken = true
				break
			}
		}
		if !taken {
			slots = append(slots, start.Format(timeLayout))
		}
	}
	return slots
}

func (u *appointmentUsecase) CancelAppointment(ctx context.Context, id string) error {
	appointmentID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return ErrInvalidAppointmentID
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	rows, err := u.appointmentRepo.DeleteByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to delete appointment: %+v", err)
		return err
	}
	if rows == 0 {
		return ErrAppointmentNotFound
	}

	if err := u.auditService.LogDelete(ctx, tx, actorFromContext(ctx), entity.AuditActionAppointmentCancel, "appointment", appointmentID.String(), converter.AppointmentToResponse(appointment)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

func (u *appointmentUsecase) ListPatientAppointments(ctx context.Context, email string) (*dto.AppointmentListResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	appointments, err := u.appointmentRepo.FindByPatientEmail(u.db.WithContext(ctx), email)
	if err != nil {
		u.log.Warnf("Failed to find appointments by email: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) ListAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) parseDate(value string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), u.location)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return day, nil
}

// today is midnight of the current date in the configured location.
func (u *appointmentUsecase) today() time.Time {
	now := u.now().In(u.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, u.location)
}
