package repository

import (
	"time"

	"appointment-system/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByPatientEmail(db *gorm.DB, email string) ([]entity.Appointment, error)
	FindAll(db *gorm.DB) ([]entity.Appointment, error)
	FindByDoctorAndDate(db *gorm.DB, doctorCode, date string) ([]entity.Appointment, error)
	// FindOverlapping returns the first appointment of the doctor on date whose
	// interval intersects [start, end), or nil.
	FindOverlapping(db *gorm.DB, doctorCode, date string, start, end time.Time) (*entity.Appointment, error)
	DeleteByID(db *gorm.DB, id uuid.UUID) (int64, error)
	// LockDoctorDay takes a transaction-scoped advisory lock for one doctor and date.
	// db must be a transaction.
	LockDoctorDay(db *gorm.DB, doctorCode, date string) error
}
