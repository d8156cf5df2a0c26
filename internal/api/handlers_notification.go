package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/loomplan-ai/loomplan-notify/internal/api/respond"
	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/services"
)

type NotificationHandler struct {
	svc *services.NotificationService
}

func NewNotificationHandler(svc *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// writeServiceError maps service-layer error sentinels onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}

// Evaluate handles POST /api/users/{userId}/notifications/evaluate.
// The optional body field "now" (RFC3339) pins the evaluation time; absent,
// the server clock is used.
func (h *NotificationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var in struct {
		Now *string `json:"now,omitempty"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respond.WriteBadRequest(w, "invalid json")
			return
		}
	}
	now := time.Now()
	if in.Now != nil {
		parsed, err := time.Parse(time.RFC3339, *in.Now)
		if err != nil {
			respond.WriteBadRequest(w, "bad now timestamp")
			return
		}
		now = parsed
	}

	out, err := h.svc.Evaluate(r.Context(), userID, now)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": out,
		"count":         len(out),
		"evaluatedAt":   now.Format(time.RFC3339),
	})
}

// Dismiss handles POST /api/users/{userId}/notifications/{notificationId}/dismiss.
func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var in struct {
		Type model.NotificationType `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := h.svc.Dismiss(r.Context(), vars["userId"], vars["notificationId"], in.Type, time.Now()); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// DismissToday handles POST /api/users/{userId}/notifications/types/{type}/dismiss-today.
func (h *NotificationHandler) DismissToday(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	typ := model.NotificationType(vars["type"])

	if err := h.svc.DismissToday(r.Context(), vars["userId"], typ, time.Now()); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "dismissed for today"})
}

// MarkShown handles POST /api/users/{userId}/notifications/{notificationId}/shown.
func (h *NotificationHandler) MarkShown(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var in struct {
		Type model.NotificationType `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := h.svc.MarkShown(r.Context(), vars["userId"], in.Type, vars["notificationId"], time.Now()); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "shown"})
}

// Accept handles POST /api/users/{userId}/notifications/{notificationId}/accept.
func (h *NotificationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var in struct {
		Type          model.NotificationType `json:"type"`
		ActionType    string                 `json:"actionType,omitempty"`
		ActionPayload struct {
			ScheduleIDs []string `json:"scheduleIds,omitempty"`
			DaysOfWeek  []int    `json:"daysOfWeek,omitempty"`
			StartTime   string   `json:"startTime,omitempty"`
			Text        string   `json:"text,omitempty"`
		} `json:"actionPayload,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}

	days := make([]time.Weekday, 0, len(in.ActionPayload.DaysOfWeek))
	for _, d := range in.ActionPayload.DaysOfWeek {
		days = append(days, time.Weekday(d))
	}
	req := services.AcceptRequest{
		UserID:         vars["userId"],
		NotificationID: vars["notificationId"],
		Type:           in.Type,
		ActionType:     in.ActionType,
		ScheduleIDs:    in.ActionPayload.ScheduleIDs,
		DaysOfWeek:     days,
		StartTime:      in.ActionPayload.StartTime,
		Text:           in.ActionPayload.Text,
	}
	if err := h.svc.Accept(r.Context(), req, time.Now()); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}
