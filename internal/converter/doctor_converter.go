package converter

import (
	"appointment-system/internal/delivery/dto"
	"appointment-system/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO.
// The internal key is never exposed; the code is the public id.
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	response := doctorResponse(*doctor)
	return &response
}

// DoctorsToResponses converts a slice of Doctor entities to slice of DoctorResponse DTOs
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i, doctor := range doctors {
		responses[i] = doctorResponse(doctor)
	}
	return responses
}

func doctorResponse(doctor entity.Doctor) dto.DoctorResponse {
	availability := map[string]interface{}(doctor.Availability)
	if availability == nil {
		availability = map[string]interface{}{}
	}

	return dto.DoctorResponse{
		ID:           doctor.Code,
		Name:         doctor.Name,
		Hospital:     doctor.Hospital,
		Speciality:   doctor.Speciality,
		Availability: availability,
		ProfilePhoto: doctor.ProfilePhoto,
	}
}
