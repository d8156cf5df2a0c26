package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/loomplan-ai/loomplan-notify/internal/api/respond"
	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/services"
)

type ProfileHandler struct {
	svc *services.ProfileService
}

func NewProfileHandler(svc *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// PutProfile handles PUT /api/users/{userId}/profile.
func (h *ProfileHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var in struct {
		DisplayName string     `json:"displayName"`
		TimeZone    string     `json:"timeZone"`
		Plan        model.Plan `json:"plan"`
		SleepTime   *string    `json:"sleepTime,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	p := &model.Profile{
		UserID:      mux.Vars(r)["userId"],
		DisplayName: in.DisplayName,
		TimeZone:    in.TimeZone,
		Plan:        in.Plan,
		SleepTime:   in.SleepTime,
	}
	out, err := h.svc.Put(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// GetProfile handles GET /api/users/{userId}/profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Get(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
