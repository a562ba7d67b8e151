package calendar

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mindwell/mindwell-api/internal/models"
)

const (
	// MaxReminderOverrides is the Calendar API cap on reminder overrides.
	MaxReminderOverrides = 5
	// MaxReminderMinutes is four weeks, the API's upper bound.
	MaxReminderMinutes = 40320
)

// ValidateReminders normalizes reminder overrides: at most five entries,
// methods lowercased to popup or email, minutes within 0..40320. Invalid
// entries are dropped rather than failing the whole event.
func ValidateReminders(reminders []models.EventReminder, logger *zap.Logger) []models.EventReminder {
	if len(reminders) > MaxReminderOverrides {
		if logger != nil {
			logger.Warn("calendar_reminders_truncated",
				zap.Int("given", len(reminders)),
				zap.Int("kept", MaxReminderOverrides),
			)
		}
		reminders = reminders[:MaxReminderOverrides]
	}

	valid := make([]models.EventReminder, 0, len(reminders))
	for _, rem := range reminders {
		method := strings.ToLower(strings.TrimSpace(rem.Method))
		if method != "popup" && method != "email" {
			if logger != nil {
				logger.Warn("calendar_reminder_dropped", zap.String("method", rem.Method))
			}
			continue
		}
		if rem.Minutes < 0 || rem.Minutes > MaxReminderMinutes {
			if logger != nil {
				logger.Warn("calendar_reminder_dropped", zap.Int("minutes", rem.Minutes))
			}
			continue
		}
		valid = append(valid, models.EventReminder{Method: method, Minutes: rem.Minutes})
	}
	return valid
}

// NormalizeTransparency returns the lowercased value when it is one of the two
// valid settings, or "" so callers can skip the field.
func NormalizeTransparency(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "opaque" || v == "transparent" {
		return v
	}
	return ""
}

// CorrectTimeFormat repairs common timestamp shapes before they reach the
// API: bare dates become midnight UTC, naive datetimes get a Z suffix, and
// anything else passes through untouched.
func CorrectTimeFormat(value string) string {
	v := strings.TrimSpace(value)
	switch {
	case len(v) == 10 && strings.Count(v, "-") == 2:
		return v + "T00:00:00Z"
	case len(v) == 19 && strings.Contains(v, "T") && strings.Count(v, ":") == 2:
		return v + "Z"
	default:
		return v
	}
}
