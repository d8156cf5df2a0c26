package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/loomplan-ai/loomplan-notify/internal/api/respond"
	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/services"
)

type ScheduleHandler struct {
	svc *services.ScheduleService
}

func NewScheduleHandler(svc *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// CreateSchedule handles POST /api/users/{userId}/schedules.
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text         string  `json:"text"`
		StartTime    *string `json:"startTime,omitempty"`
		EndTime      *string `json:"endTime,omitempty"`
		SpecificDate *string `json:"specificDate,omitempty"`
		DaysOfWeek   []int   `json:"daysOfWeek,omitempty"`
		Color        *string `json:"color,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	days := make([]time.Weekday, 0, len(in.DaysOfWeek))
	for _, d := range in.DaysOfWeek {
		days = append(days, time.Weekday(d))
	}
	entry := &model.ScheduleEntry{
		UserID:       mux.Vars(r)["userId"],
		Text:         in.Text,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		SpecificDate: in.SpecificDate,
		DaysOfWeek:   days,
		Color:        in.Color,
	}
	out, err := h.svc.Create(r.Context(), entry)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListSchedules handles GET /api/users/{userId}/schedules.
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.ScheduleEntry{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"schedules": out})
}
