package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kapsalon/booking-service/internal/booking"
	"github.com/kapsalon/booking-service/internal/schedule"
)

func toWorkingDayResponse(d *schedule.WorkingDay) WorkingDayResponse {
	resp := WorkingDayResponse{
		Date:               d.Date,
		StartTime:          d.Start,
		EndTime:            d.End,
		AvailableTimeSlots: d.Slots,
		Breaks:             d.Breaks,
		IsHoliday:          d.Holiday,
	}
	if resp.AvailableTimeSlots == nil {
		resp.AvailableTimeSlots = []schedule.TimeOfDay{}
	}
	if resp.Breaks == nil {
		resp.Breaks = []schedule.Break{}
	}
	return resp
}

func parseBreaks(in []BreakRequest) ([]schedule.Break, error) {
	breaks := make([]schedule.Break, 0, len(in))
	for _, b := range in {
		start, err := schedule.ParseTimeOfDay(b.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := schedule.ParseTimeOfDay(b.EndTime)
		if err != nil {
			return nil, err
		}
		breaks = append(breaks, schedule.Break{Start: start, End: end})
	}
	return breaks, nil
}

func addWorkingHoursHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req WorkingHoursRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		date, err := parseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		start, err := schedule.ParseTimeOfDay(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "startTime must be HH:MM")
			return
		}
		end, err := schedule.ParseTimeOfDay(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_time", "endTime must be HH:MM")
			return
		}

		day, err := svc.AddWorkingHours(r.Context(), date, start, end)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toWorkingDayResponse(day))
	}
}

func listWorkingHoursHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := svc.ListWorkingDays(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]WorkingDayResponse, 0, len(days))
		for i := range days {
			resp = append(resp, toWorkingDayResponse(&days[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func updateWorkingHoursHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := parseDate(chi.URLParam(r, "date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		var req WorkingHoursRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		start, err := schedule.ParseTimeOfDay(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "startTime must be HH:MM")
			return
		}
		end, err := schedule.ParseTimeOfDay(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_time", "endTime must be HH:MM")
			return
		}

		breaks, err := parseBreaks(req.Breaks)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_break", "break times must be HH:MM")
			return
		}

		day, err := svc.UpdateWorkingHours(r.Context(), date, start, end, breaks, req.IsHoliday)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toWorkingDayResponse(day))
	}
}

func deleteWorkingDayHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := parseDate(chi.URLParam(r, "date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		if err := svc.DeleteWorkingDay(r.Context(), date); err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "werktijden verwijderd"})
	}
}

func addBreakHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := parseDate(chi.URLParam(r, "date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		var req BreakRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		breaks, err := parseBreaks([]BreakRequest{req})
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_break", "break times must be HH:MM")
			return
		}

		day, err := svc.AddBreak(r.Context(), date, breaks[0])
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toWorkingDayResponse(day))
	}
}

func removeTimeSlotHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := parseDate(chi.URLParam(r, "date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		t, err := schedule.ParseTimeOfDay(chi.URLParam(r, "time"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "time must be HH:MM")
			return
		}

		if err := svc.RemoveTimeSlot(r.Context(), date, t); err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "tijdslot verwijderd"})
	}
}

func statisticsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Statistics(r.Context(), time.Now())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, StatisticsResponse{
			Daily:   PeriodStatsResponse(stats.Daily),
			Weekly:  PeriodStatsResponse(stats.Weekly),
			Monthly: PeriodStatsResponse(stats.Monthly),
		})
	}
}
