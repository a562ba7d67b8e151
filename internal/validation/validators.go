package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/mindwell/mindwell-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("mood", validateMood); err != nil {
		panic(fmt.Sprintf("failed to register mood validator: %v", err))
	}
	if err := Validate.RegisterValidation("summary_tier", validateSummaryTier); err != nil {
		panic(fmt.Sprintf("failed to register summary_tier validator: %v", err))
	}
}

// validateMood validates that a string is a known mood value
func validateMood(fl validator.FieldLevel) bool {
	return models.ValidMood(fl.Field().String())
}

// validateSummaryTier validates that a string is a valid summary tier
func validateSummaryTier(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case models.TierDaily, models.TierWeekly, models.TierMonthly:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateMood validates a mood string value
func ValidateMood(value string) error {
	if models.ValidMood(value) {
		return nil
	}
	return fmt.Errorf("invalid mood: %s (must be one of %s)", value, strings.Join(models.Moods, ", "))
}

// ValidateIntensity validates a 1-10 mood intensity
func ValidateIntensity(value int) error {
	if value < 1 || value > 10 {
		return fmt.Errorf("invalid intensity: %d (must be 1-10)", value)
	}
	return nil
}
