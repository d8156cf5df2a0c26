package engine

import (
	"strings"
	"time"
	"unicode"

	"github.com/loomplan-ai/loomplan-notify/internal/model"
)

// NormalizeText canonicalizes schedule text for grouping: lowercase, strip
// punctuation, collapse whitespace. "Book  Club!" and "book club" group
// together.
func NormalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// routineKeywords are universal daily-routine activities that never become
// weekly patterns or pattern-day suggestions.
var routineKeywords = []string{
	"wake", "sleep", "nap",
	"meal", "breakfast", "lunch", "dinner",
	"shower", "brush teeth", "commute",
}

// isDailyRoutine reports whether normalized text names a universal routine.
func isDailyRoutine(normalized string) bool {
	for _, kw := range routineKeywords {
		if containsWord(normalized, kw) {
			return true
		}
	}
	return false
}

// importantKeywords flag schedules that warrant earlier, louder reminders.
var importantKeywords = []string{
	"meeting", "deadline", "interview", "exam", "presentation",
	"appointment", "flight", "demo", "submit", "review",
}

// isImportant reports whether schedule text matches the important-keyword
// heuristic.
func isImportant(text string) bool {
	normalized := NormalizeText(text)
	for _, kw := range importantKeywords {
		if containsWord(normalized, kw) {
			return true
		}
	}
	return false
}

// containsWord matches kw against whole words of normalized text, so
// "interview" does not fire on "viewing".
func containsWord(normalized, kw string) bool {
	if kw == normalized {
		return true
	}
	words := strings.Fields(normalized)
	kwWords := strings.Fields(kw)
	if len(kwWords) == 1 {
		for _, w := range words {
			if w == kw {
				return true
			}
		}
		return false
	}
	return strings.Contains(" "+normalized+" ", " "+kw+" ")
}

// timeBucket maps an "HH:MM" clock onto its bucket index within the day.
// Returns -1 for unparseable input.
func timeBucket(clock string, bucketMinutes int) int {
	t, err := time.Parse(model.ClockLayout, clock)
	if err != nil {
		return -1
	}
	return (t.Hour()*60 + t.Minute()) / bucketMinutes
}
