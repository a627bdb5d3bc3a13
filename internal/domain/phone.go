package domain

import "strings"

// phone numbering: country code 7, ten national digits, local trunk digit 8.
const (
	countryDigit = '7'
	trunkDigit   = '8'
	maxDigits    = 11
)

// national display groups after the country code: DDD DDD DD DD
var phoneGroups = [...]int{3, 3, 2, 2}

// NormalizePhone converts arbitrary keystroke input into the canonical display
// form "+7 DDD DDD DD DD". It is total and idempotent, so it is safe to run on
// every keystroke: it never errors, and feeding its own output back yields the
// same string. Overlong input is truncated at 11 digits, not rejected —
// length rejection belongs to validation so the user can keep typing.
func NormalizePhone(raw string) string {
	digits := PhoneDigits(raw)
	if digits == "" {
		return "+7 "
	}
	if digits[0] == trunkDigit {
		// local-dial convention: leading 8 means the country code
		digits = string(countryDigit) + digits[1:]
	}
	if digits[0] != countryDigit {
		digits = string(countryDigit) + digits
	}
	if len(digits) > maxDigits {
		digits = digits[:maxDigits]
	}

	national := digits[1:]
	if national == "" {
		return "+7 "
	}
	var b strings.Builder
	b.WriteString("+7")
	pos := 0
	for _, size := range phoneGroups {
		if pos >= len(national) {
			break
		}
		end := pos + size
		if end > len(national) {
			end = len(national)
		}
		b.WriteByte(' ')
		b.WriteString(national[pos:end])
		pos = end
	}
	return b.String()
}

// PhoneDigits strips everything but ASCII digits. This is the form that goes
// into wire payloads and that the validators inspect.
func PhoneDigits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
