package api

import (
	"github.com/gorilla/mux"

	"github.com/loomplan-ai/loomplan-notify/internal/api/recovery"
	"github.com/loomplan-ai/loomplan-notify/internal/services"
)

// Deps carries the service-layer dependencies the router wires to handlers.
type Deps struct {
	Notifications *services.NotificationService
	Profiles      *services.ProfileService
	Schedules     *services.ScheduleService
	Goals         *services.GoalService
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(deps Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	healthHandler := NewHealthHandler()
	notifHandler := NewNotificationHandler(deps.Notifications)
	profileHandler := NewProfileHandler(deps.Profiles)
	scheduleHandler := NewScheduleHandler(deps.Schedules)
	goalHandler := NewGoalHandler(deps.Goals)

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Notification decision and feedback endpoints. The dismiss-today route is
	// registered before the id-scoped ones so "types" never parses as an id.
	router.HandleFunc("/api/users/{userId}/notifications/evaluate", notifHandler.Evaluate).Methods("POST")
	router.HandleFunc("/api/users/{userId}/notifications/types/{type}/dismiss-today", notifHandler.DismissToday).Methods("POST")
	router.HandleFunc("/api/users/{userId}/notifications/{notificationId}/dismiss", notifHandler.Dismiss).Methods("POST")
	router.HandleFunc("/api/users/{userId}/notifications/{notificationId}/shown", notifHandler.MarkShown).Methods("POST")
	router.HandleFunc("/api/users/{userId}/notifications/{notificationId}/accept", notifHandler.Accept).Methods("POST")

	// Profile endpoints
	router.HandleFunc("/api/users/{userId}/profile", profileHandler.PutProfile).Methods("PUT")
	router.HandleFunc("/api/users/{userId}/profile", profileHandler.GetProfile).Methods("GET")

	// Schedule endpoints
	router.HandleFunc("/api/users/{userId}/schedules", scheduleHandler.CreateSchedule).Methods("POST")
	router.HandleFunc("/api/users/{userId}/schedules", scheduleHandler.ListSchedules).Methods("GET")

	// Goal endpoints
	router.HandleFunc("/api/users/{userId}/goals", goalHandler.CreateGoal).Methods("POST")
	router.HandleFunc("/api/users/{userId}/goals", goalHandler.ListOpenGoals).Methods("GET")

	return router
}
