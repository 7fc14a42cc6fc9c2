package dto

import "time"

// Request DTOs

// BookAppointmentRequest keeps the doctor snapshot fields for client
// compatibility; the stored snapshot is read from the directory.
type BookAppointmentRequest struct {
	PatientEmail     string `json:"patientEmail" validate:"required"`
	PatientName      string `json:"patientName" validate:"required"`
	DoctorID         string `json:"doctorId" validate:"required"`
	DoctorName       string `json:"doctorName" validate:"required"`
	DoctorSpeciality string `json:"doctorSpeciality" validate:"required"`
	DoctorHospital   string `json:"doctorHospital" validate:"required"`
	Date             string `json:"date" validate:"required"`
	Time             string `json:"time" validate:"required"`
	Issue            string `json:"issue" validate:"required"`
}

// Response DTOs

type AppointmentResponse struct {
	ID               string    `json:"id"`
	PatientEmail     string    `json:"patientEmail"`
	PatientName      string    `json:"patientName"`
	DoctorID         string    `json:"doctorId"`
	DoctorName       string    `json:"doctorName"`
	DoctorSpeciality string    `json:"doctorSpeciality"`
	DoctorHospital   string    `json:"doctorHospital"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Issue            string    `json:"issue"`
	StartDateTime    time.Time `json:"startDateTime"`
	EndDateTime      time.Time `json:"endDateTime"`
	CreatedAt        time.Time `json:"createdAt"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type AvailabilityResponse struct {
	AvailableSlots []string `json:"availableSlots"`
}
