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

type GoalHandler struct {
	svc *services.GoalService
}

func NewGoalHandler(svc *services.GoalService) *GoalHandler { return &GoalHandler{svc: svc} }

// CreateGoal handles POST /api/users/{userId}/goals.
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text       string  `json:"text"`
		TargetDate *string `json:"targetDate,omitempty"` // "2006-01-02"
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	g := &model.Goal{
		UserID:    mux.Vars(r)["userId"],
		Text:      in.Text,
		CreatedAt: time.Now(),
	}
	if in.TargetDate != nil {
		if _, err := time.Parse(model.DateKeyLayout, *in.TargetDate); err != nil {
			respond.WriteBadRequest(w, "bad targetDate")
			return
		}
		g.TargetDate = in.TargetDate
	}
	out, err := h.svc.Create(r.Context(), g)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListOpenGoals handles GET /api/users/{userId}/goals.
func (h *GoalHandler) ListOpenGoals(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListOpen(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.Goal{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"goals": out})
}
