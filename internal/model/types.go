package model

import "time"

// DateKeyLayout is the calendar-day key used for day-scoped lifecycle records.
const DateKeyLayout = "2006-01-02"

// ClockLayout is the wall-clock format used on schedule entries ("14:00").
const ClockLayout = "15:04"

// DateKey returns the calendar-day key for t.
func DateKey(t time.Time) string { return t.Format(DateKeyLayout) }

// Priority orders notifications; high sorts before medium before low.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the sort rank of the priority (lower surfaces first).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Demote lowers the priority by one level, stopping at low.
func (p Priority) Demote() Priority {
	switch p {
	case PriorityHigh:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// NotificationType identifies the generator family a notification came from.
type NotificationType string

const (
	TypeScheduleReminder    NotificationType = "schedule_reminder"
	TypeMorningBriefing     NotificationType = "morning_briefing"
	TypeUrgentAlert         NotificationType = "urgent_alert"
	TypeEveningPrep         NotificationType = "evening_prep"
	TypeEveningCheckin      NotificationType = "evening_checkin"
	TypeGoalNudge           NotificationType = "goal_nudge"
	TypeMemorySuggestion    NotificationType = "memory_suggestion"
	TypePeakHour            NotificationType = "peak_hour"
	TypeImportantEvent      NotificationType = "important_event"
	TypePreferredActivity   NotificationType = "preferred_activity"
	TypeRecurringSuggestion NotificationType = "recurring_suggestion"
	TypeLifestyleRecommend  NotificationType = "lifestyle_recommend"
	TypeSkippedPattern      NotificationType = "skipped_pattern"
	TypeFusedAlert          NotificationType = "fused_alert"
	TypeMoodCheckin         NotificationType = "mood_checkin"
	TypeBurnoutWarning      NotificationType = "burnout_warning"
	TypeFocusStreak         NotificationType = "focus_streak"
	TypeHealthInsight       NotificationType = "health_insight"
	TypeCommitStreak        NotificationType = "commit_streak"
	TypeScheduleOverload    NotificationType = "schedule_overload"
	TypeWeeklyDeadline      NotificationType = "weekly_deadline"
	TypeRoutineBreak        NotificationType = "routine_break"
	TypeInactivityReturn    NotificationType = "inactivity_return"
	TypeLearningReminder    NotificationType = "learning_reminder"
	TypePostLunchEnergy     NotificationType = "post_lunch_energy"
	TypePreDeparture        NotificationType = "pre_departure"
	TypeWeeklyReview        NotificationType = "weekly_review"
)

// singletonTypes are capped at one visible instance per user per day;
// every other type deduplicates by its own notification id.
var singletonTypes = map[NotificationType]bool{
	TypeMorningBriefing:    true,
	TypeGoalNudge:          true,
	TypeUrgentAlert:        true,
	TypeLifestyleRecommend: true,
}

// IsSingleton reports whether t is deduplicated per day by type rather than id.
func (t NotificationType) IsSingleton() bool { return singletonTypes[t] }

// ActionConvertToRecurring asks the caller to merge one-off schedule entries
// into a single recurring entry when the notification is accepted.
const ActionConvertToRecurring = "convert_to_recurring"

// Notification is a single candidate or surfaced alert. IDs are deterministic
// (derived from date, type and subject) so repeated evaluations of the same
// logical event produce the same id.
type Notification struct {
	ID            string                 `json:"id"`
	Type          NotificationType       `json:"type"`
	Priority      Priority               `json:"priority"`
	Title         string                 `json:"title"`
	Message       string                 `json:"message"`
	ActionType    string                 `json:"actionType,omitempty"`
	ActionPayload map[string]interface{} `json:"actionPayload,omitempty"`
	ExpiresAt     *time.Time             `json:"expiresAt,omitempty"`
}

// ScheduleEntry is a user's schedule item. One-off entries carry SpecificDate;
// recurring entries carry DaysOfWeek (0 = Sunday). Read-only to the engine.
type ScheduleEntry struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	Text         string         `json:"text"`
	StartTime    *string        `json:"startTime,omitempty"` // "15:04"
	EndTime      *string        `json:"endTime,omitempty"`
	SpecificDate *string        `json:"specificDate,omitempty"` // "2006-01-02"
	DaysOfWeek   []time.Weekday `json:"daysOfWeek,omitempty"`
	Completed    bool           `json:"completed"`
	CreatedAt    time.Time      `json:"createdAt"`
	Color        *string        `json:"color,omitempty"`
}

// IsRecurring reports whether the entry repeats on fixed weekdays.
func (s *ScheduleEntry) IsRecurring() bool { return len(s.DaysOfWeek) > 0 }

// OccursOn reports whether the entry occurs on the given day.
func (s *ScheduleEntry) OccursOn(day time.Time) bool {
	if s.SpecificDate != nil && *s.SpecificDate == DateKey(day) {
		return true
	}
	for _, wd := range s.DaysOfWeek {
		if wd == day.Weekday() {
			return true
		}
	}
	return false
}

// StartAt resolves the entry's start on the given day, or false when the
// entry has no start time.
func (s *ScheduleEntry) StartAt(day time.Time) (time.Time, bool) {
	if s.StartTime == nil {
		return time.Time{}, false
	}
	clock, err := time.Parse(ClockLayout, *s.StartTime)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location()), true
}

// Goal is a user objective tracked by the assistant.
type Goal struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Text       string     `json:"text"`
	Completed  bool       `json:"completed"`
	CreatedAt  time.Time  `json:"createdAt"`
	TargetDate *string    `json:"targetDate,omitempty"`
	DoneAt     *time.Time `json:"doneAt,omitempty"`
}

// Plan is the user's subscription tier; it bounds the daily notification quota.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
	PlanMax  Plan = "max"
)

// AtLeast reports whether p grants the features of the required tier.
func (p Plan) AtLeast(required Plan) bool {
	rank := map[Plan]int{PlanFree: 0, PlanPro: 1, PlanMax: 2}
	return rank[p] >= rank[required]
}

// Profile holds the per-user settings the engine reads.
type Profile struct {
	UserID       string    `json:"userId"`
	DisplayName  string    `json:"displayName"`
	TimeZone     string    `json:"timeZone"`
	Plan         Plan      `json:"plan"`
	SleepTime    *string   `json:"sleepTime,omitempty"` // "23:00"
	CreationTime time.Time `json:"creationTime"`
}

// MemoryEvent is a notable dated event from the behavioral memory store.
type MemoryEvent struct {
	Text      string `json:"text"`
	Date      string `json:"date"` // "2006-01-02"
	Important bool   `json:"important"`
}

// WeekdayPattern is a known weekly habit: an activity on a weekday, optionally
// at a time of day. Mined from recurring schedules or recalled from memory.
type WeekdayPattern struct {
	Weekday  time.Weekday `json:"weekday"`
	Activity string       `json:"activity"`
	Clock    string       `json:"time,omitempty"` // "15:04"
}

// MemorySummary is the behavioral-memory read model. All fields are optional;
// an unavailable memory store yields the zero value.
type MemorySummary struct {
	Preferences         []string            `json:"preferences,omitempty"`
	RecurringTopics     []string            `json:"recurringTopics,omitempty"`
	NotableEvents       []MemoryEvent       `json:"notableEvents,omitempty"`
	PeakHours           []int               `json:"peakHours,omitempty"`
	PreferredActivities map[string][]string `json:"preferredActivities,omitempty"` // "morning" -> activities
}

// RecurringCandidate is an inferred weekly habit mined from repeated one-off
// schedule entries. Derived per evaluation, never persisted.
type RecurringCandidate struct {
	NormalizedText string       `json:"normalizedText"`
	Weekday        time.Weekday `json:"weekday"`
	StartTime      string       `json:"startTime"` // representative "15:04"
	ScheduleIDs    []string     `json:"scheduleIds"`
	Occurrences    int          `json:"occurrences"`
}

// FusionSignal is a severity-tagged cross-signal from the context-fusion
// collaborator. Only critical/warning severities become candidates.
type FusionSignal struct {
	Source   string `json:"source"`
	Severity string `json:"severity"` // critical | warning | info
	Title    string `json:"title"`
	Detail   string `json:"detail"`
}

// ShownRecord is the day-scoped lifecycle record of surfaced notifications.
type ShownRecord struct {
	Types []NotificationType `json:"types"`
	IDs   []string           `json:"ids"`
	Count int                `json:"count"`
}

// DismissStreak counts consecutive dismissals for a notification type.
// Accepting a notification of the type resets the streak to zero.
type DismissStreak struct {
	Count    int    `json:"count"`
	LastDate string `json:"lastDate"` // "2006-01-02"
}
