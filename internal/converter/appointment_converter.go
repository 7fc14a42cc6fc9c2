package converter

import (
	"appointment-system/internal/delivery/dto"
	"appointment-system/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := appointmentResponse(*appointment)
	return &response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i, appointment := range appointments {
		responses[i] = appointmentResponse(appointment)
	}
	return responses
}

func appointmentResponse(appointment entity.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:               appointment.ID.String(),
		PatientEmail:     appointment.PatientEmail,
		PatientName:      appointment.PatientName,
		DoctorID:         appointment.DoctorCode,
		DoctorName:       appointment.DoctorName,
		DoctorSpeciality: appointment.DoctorSpeciality,
		DoctorHospital:   appointment.DoctorHospital,
		Date:             appointment.Date,
		Time:             appointment.Time,
		Issue:            appointment.Issue,
		StartDateTime:    appointment.StartAt,
		EndDateTime:      appointment.EndAt,
		CreatedAt:        appointment.CreatedAt,
	}
}
