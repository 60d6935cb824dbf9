package validation

import (
	"regexp"
	"time"
	"unicode/utf8"
)

var (
	// emailRegex validates email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// uuidRegex validates UUID format
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// MaxFeedbackLength bounds client-supplied feedback and comments.
const MaxFeedbackLength = 2000

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidUUID checks if the string is a valid UUID format
func IsValidUUID(id string) bool {
	return uuidRegex.MatchString(id)
}

// IsValidPassword checks password strength
func IsValidPassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	if len(password) > 128 {
		return false, "Password must be at most 128 characters"
	}
	return true, ""
}

// IsValidFeedback checks review feedback/comment text bounds
func IsValidFeedback(text string) (bool, string) {
	if text == "" {
		return false, "Text is required"
	}
	// The limit counts characters, not bytes.
	if utf8.RuneCountInString(text) > MaxFeedbackLength {
		return false, "Text must be at most 2000 characters"
	}
	return true, ""
}

// ParseScheduleDate accepts RFC 3339 or date-only schedule dates.
func ParseScheduleDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
