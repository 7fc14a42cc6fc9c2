package dto

// Request DTOs

type CreateDoctorRequest struct {
	Name         string                 `json:"name" validate:"required"`
	Hospital     string                 `json:"hospital" validate:"required"`
	Speciality   string                 `json:"speciality" validate:"required"`
	Availability map[string]interface{} `json:"availability"`
	ProfilePhoto *string                `json:"profilePhoto"`
}

// Response DTOs

type DoctorResponse struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Hospital     string                 `json:"hospital"`
	Speciality   string                 `json:"speciality"`
	Availability map[string]interface{} `json:"availability"`
	ProfilePhoto *string                `json:"profilePhoto"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}
