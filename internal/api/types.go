package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/kapsalon/booking-service/internal/schedule"
)

type BookAppointmentRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Service string `json:"service"`
}

type UpdateAppointmentRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
}

type RescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type AppointmentResponse struct {
	ID              uuid.UUID          `json:"id"`
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	Date            string             `json:"date"`
	Time            schedule.TimeOfDay `json:"time"`
	Service         string             `json:"service"`
	CalendarEventID *string            `json:"calendar_event_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type AvailableTimesResponse struct {
	Available bool                 `json:"available"`
	Times     []schedule.TimeOfDay `json:"times"`
	Message   string               `json:"message,omitempty"`
}

type CheckAvailabilityRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type CheckAvailabilityResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type WorkingHoursRequest struct {
	Date      string         `json:"date"`
	StartTime string         `json:"startTime"`
	EndTime   string         `json:"endTime"`
	Breaks    []BreakRequest `json:"breaks,omitempty"`
	IsHoliday bool           `json:"isHoliday,omitempty"`
}

type BreakRequest struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type WorkingDayResponse struct {
	Date               string               `json:"date"`
	StartTime          schedule.TimeOfDay   `json:"startTime"`
	EndTime            schedule.TimeOfDay   `json:"endTime"`
	AvailableTimeSlots []schedule.TimeOfDay `json:"availableTimeSlots"`
	Breaks             []schedule.Break     `json:"breaks"`
	IsHoliday          bool                 `json:"isHoliday"`
}

type PeriodStatsResponse struct {
	Count   int `json:"count"`
	Revenue int `json:"revenue"`
}

type StatisticsResponse struct {
	Daily   PeriodStatsResponse `json:"daily"`
	Weekly  PeriodStatsResponse `json:"weekly"`
	Monthly PeriodStatsResponse `json:"monthly"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
