package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/loomplan-ai/loomplan-notify/internal/engine"
	"github.com/loomplan-ai/loomplan-notify/internal/lifecycle"
	"github.com/loomplan-ai/loomplan-notify/internal/model"
	"github.com/loomplan-ai/loomplan-notify/internal/services"
	"github.com/loomplan-ai/loomplan-notify/internal/store/sqlite"
)

// newTestServer wires the full stack (router → services → engine → sqlite)
// against a throwaway database.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.New(filepath.Join(t.TempDir(), "api_test.db"))
	require.NoError(t, err)

	rules := engine.DefaultRules()
	log := zerolog.Nop()
	builder := engine.NewSnapshotBuilder(st, nil, nil, rules, time.Second, log)
	eng := engine.New(rules, nil, log)
	lc := lifecycle.NewManager(st.Lifecycle())

	router := NewRouter(Deps{
		Notifications: services.NewNotificationService(st, builder, eng, lc),
		Profiles:      services.NewProfileService(st),
		Schedules:     services.NewScheduleService(st),
		Goals:         services.NewGoalService(st),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestProfileRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/users/u1/profile", map[string]interface{}{
		"displayName": "Ada",
		"timeZone":    "Europe/Berlin",
		"plan":        "pro",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var p model.Profile
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users/u1/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &p)
	require.Equal(t, "Ada", p.DisplayName)
	require.Equal(t, model.PlanPro, p.Plan)
}

func TestProfileNotFound(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/nobody/profile", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestProfileRejectsBadTimeZone(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/users/u1/profile", map[string]interface{}{
		"timeZone": "Mars/Olympus",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestScheduleValidation(t *testing.T) {
	srv := newTestServer(t)

	// both one-off and recurring fields set
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/u1/schedules", map[string]interface{}{
		"text":         "Gym",
		"specificDate": "2025-03-10",
		"daysOfWeek":   []int{1},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// valid recurring entry
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/users/u1/schedules", map[string]interface{}{
		"text":       "Gym",
		"startTime":  "18:00",
		"daysOfWeek": []int{1, 3},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.ScheduleEntry
	decode(t, resp, &created)
	require.NotEmpty(t, created.ID)
	require.True(t, created.IsRecurring())
}

func TestEvaluateAndFeedbackFlow(t *testing.T) {
	srv := newTestServer(t)

	// a pinned Monday morning with an important meeting ten minutes out
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/u1/schedules", map[string]interface{}{
		"text":         "Board meeting",
		"startTime":    "08:10",
		"specificDate": "2025-03-10",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	evaluate := func() []model.Notification {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/u1/notifications/evaluate", map[string]interface{}{
			"now": now.Format(time.RFC3339),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Notifications []model.Notification `json:"notifications"`
		}
		decode(t, resp, &body)
		return body.Notifications
	}

	first := evaluate()
	require.NotEmpty(t, first)
	require.Equal(t, model.TypeScheduleReminder, first[0].Type)

	// dismiss the reminder; it must not come back
	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/users/u1/notifications/%s/dismiss", srv.URL, first[0].ID),
		map[string]interface{}{"type": first[0].Type})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	second := evaluate()
	for _, n := range second {
		require.NotEqual(t, first[0].ID, n.ID)
	}
}

func TestDismissTodayRoute(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost,
		srv.URL+"/api/users/u1/notifications/types/goal_nudge/dismiss-today", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAcceptRoute_ConvertToRecurring(t *testing.T) {
	srv := newTestServer(t)

	for _, date := range []string{"2025-02-24", "2025-03-03"} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/u1/schedules", map[string]interface{}{
			"text":         "Book club",
			"startTime":    "19:00",
			"specificDate": date,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	var listed struct {
		Schedules []*model.ScheduleEntry `json:"schedules"`
	}
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/u1/schedules", nil)
	decode(t, resp, &listed)
	require.Len(t, listed.Schedules, 2)
	ids := []string{listed.Schedules[0].ID, listed.Schedules[1].ID}

	resp = doJSON(t, http.MethodPost,
		srv.URL+"/api/users/u1/notifications/n1/accept", map[string]interface{}{
			"type":       "recurring_suggestion",
			"actionType": "convert_to_recurring",
			"actionPayload": map[string]interface{}{
				"scheduleIds": ids,
				"daysOfWeek":  []int{1},
				"startTime":   "19:00",
				"text":        "book club",
			},
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users/u1/schedules", nil)
	decode(t, resp, &listed)
	require.Len(t, listed.Schedules, 1)
	require.True(t, listed.Schedules[0].IsRecurring())
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	BindServiceHealth(func() bool { return true })
	t.Cleanup(func() { BindServiceHealth(func() bool { return healthyFlag.Load() == 1 }) })

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	var body map[string]interface{}
	decode(t, resp, &body)
	require.Equal(t, "healthy", body["status"])
}
