package handler

import (
	"encoding/json"
	"net/http"

	"appointment-system/internal/delivery/dto"
	"appointment-system/internal/usecase"
	"appointment-system/pkg/response"
	"appointment-system/pkg/validator"

	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Missing required fields", h.validator.FormatValidationErrors(err))
		return
	}

	created, err := h.appointmentUsecase.BookAppointment(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidDate, usecase.ErrInvalidTime, usecase.ErrAppointmentDateInPast, usecase.ErrSlotUnavailable:
			response.BadRequest(w, capitalize(err.Error()))
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "An error occurred while booking appointment")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", created)
}

func (h *AppointmentHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	slots, err := h.appointmentUsecase.AvailableSlots(r.Context(), query.Get("doctorId"), query.Get("date"))
	if err != nil {
		switch err {
		case usecase.ErrMissingParams:
			response.BadRequest(w, "Doctor ID and date are required")
		case usecase.ErrInvalidDate:
			response.BadRequest(w, capitalize(err.Error()))
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Error checking availability")
		}
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", slots)
}

func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := h.appointmentUsecase.CancelAppointment(r.Context(), vars["id"])
	if err != nil {
		switch err {
		case usecase.ErrInvalidAppointmentID:
			response.BadRequest(w, "Invalid appointment ID")
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		default:
			response.InternalServerError(w, "Failed to cancel appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", nil)
}

func (h *AppointmentHandler) GetPatientAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentUsecase.ListPatientAppointments(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		switch err {
		case usecase.ErrEmailRequired:
			response.BadRequest(w, "Email parameter is required")
		default:
			response.InternalServerError(w, "Failed to get appointments")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) GetAllAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentUsecase.ListAllAppointments(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}
