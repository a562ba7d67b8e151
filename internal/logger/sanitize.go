package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length caps for logged values. Chat messages and LLM prompts can be large
// and attacker-controlled, so everything user-derived goes through these.
const (
	MaxPathLength          = 500
	MaxUserIDLength        = 128
	MaxErrorMessageLength  = 1000
	MaxGeneralStringLength = 2000
	// MaxDebugContentLength bounds prompt/response dumps in debug mode.
	MaxDebugContentLength = 10000
)

// SanitizeString strips control characters, repairs invalid UTF-8, and
// truncates to maxLength for safe structured logging.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}
	s = stripControlRunes(s)
	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}

// SanitizePath sanitizes a request path for logging.
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeUserID sanitizes a user id for logging.
func SanitizeUserID(userID string) string {
	return SanitizeString(userID, MaxUserIDLength)
}

// SanitizeError sanitizes an error's message for logging.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeErrorString sanitizes an error message that is already a string.
func SanitizeErrorString(errStr string) string {
	return SanitizeString(errStr, MaxErrorMessageLength)
}

// SanitizeDebugContent sanitizes LLM prompts and responses before debug
// logging. Even in debug mode, raw chat content must not inject log lines.
func SanitizeDebugContent(content string) string {
	return SanitizeString(content, MaxDebugContentLength)
}

// stripControlRunes repairs invalid UTF-8 and drops control characters,
// keeping printable runes plus space, tab, newline, and carriage return.
func stripControlRunes(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}
