package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	// MinReviewRunes gates the low-rating send; shorter complaints stay disabled.
	MinReviewRunes = 20
	// MaxReviewRunes caps stored review text; longer input is truncated as it
	// is typed, never rejected.
	MaxReviewRunes = 500
)

// Validity is derived from the current field state on every relevant change.
// It is never cached.
type Validity struct {
	ValidPhone bool
	Valid      bool
}

// Validate applies the submission gate: exactly 11 normalized digits with a
// leading 7, a trimmed name longer than one character, and a chosen rating.
func Validate(name, phone string, stars int) Validity {
	digits := PhoneDigits(phone)
	validPhone := len(digits) == maxDigits && digits[0] == countryDigit
	valid := validPhone &&
		utf8.RuneCountInString(strings.TrimSpace(name)) > 1 &&
		stars > 0
	return Validity{ValidPhone: validPhone, Valid: valid}
}

// ReviewAccepted reports whether the complaint text is long enough to send.
func ReviewAccepted(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinReviewRunes
}

// ClampReview truncates review text to the storage cap, counting runes so a
// multibyte character is never split.
func ClampReview(text string) string {
	if utf8.RuneCountInString(text) <= MaxReviewRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxReviewRunes])
}
