package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentDuration is the fixed length of every booking.
const AppointmentDuration = time.Hour

// Appointment is a booked one-hour slot with a doctor. Doctor fields are a
// snapshot taken at booking time and are not re-joined on read.
type Appointment struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientEmail     string    `gorm:"type:varchar(255);not null;index" json:"patientEmail"`
	PatientName      string    `gorm:"type:varchar(255);not null" json:"patientName"`
	DoctorCode       string    `gorm:"column:doctor_id;type:varchar(20);not null;uniqueIndex:uq_appointments_doctor_slot,priority:1" json:"doctorId"`
	DoctorName       string    `gorm:"type:varchar(255);not null" json:"doctorName"`
	DoctorSpeciality string    `gorm:"type:varchar(255)" json:"doctorSpeciality"`
	DoctorHospital   string    `gorm:"type:varchar(255)" json:"doctorHospital"`
	Date             string    `gorm:"type:varchar(10);not null;uniqueIndex:uq_appointments_doctor_slot,priority:2" json:"date"`
	Time             string    `gorm:"type:varchar(5);not null;uniqueIndex:uq_appointments_doctor_slot,priority:3" json:"time"`
	Issue            string    `gorm:"type:text" json:"issue"`
	StartAt          time.Time `gorm:"not null" json:"startDateTime"`
	EndAt            time.Time `gorm:"not null" json:"endDateTime"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// Overlaps reports whether the half-open intervals [a.StartAt, a.EndAt) and [start, end) intersect.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartAt.Before(end) && a.EndAt.After(start)
}
