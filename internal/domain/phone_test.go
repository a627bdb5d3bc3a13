package domain_test

import (
	"strings"
	"testing"

	"feedback_gate/internal/domain"
)

func TestNormalizePhone_CanonicalForms(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "+7 "},
		{"abc-()", "+7 "},
		{"8", "+7 "},
		{"7", "+7 "},
		{"+7", "+7 "},
		{"87771234567", "+7 777 123 45 67"},
		{"77771234567", "+7 777 123 45 67"},
		{"+7 777 123 45 67", "+7 777 123 45 67"},
		{"8 (777) 123-45-67", "+7 777 123 45 67"},
		// missing country code: 7 is forced in front
		{"9011234567", "+7 901 123 45 67"},
		// overlong input is silently cut at 11 digits
		{"87771234567999", "+7 777 123 45 67"},
		// partial input renders left-anchored
		{"877", "+7 77"},
		{"8777", "+7 777"},
		{"87771", "+7 777 1"},
		{"877712345", "+7 777 123 45"},
	}
	for _, c := range cases {
		if got := domain.NormalizePhone(c.in); got != c.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	corpus := []string{
		"", " ", "+7", "8", "88005553535", "87771234567", "7", "9",
		"!!!", "+7 777 123 45 67", "8-777-123-45-67", "000",
		"12345678901234567890", "8777", "+7 9", "phone: 87011112233",
	}
	for _, s := range corpus {
		once := domain.NormalizePhone(s)
		twice := domain.NormalizePhone(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q -> %q", s, once, twice)
		}
	}
}

func TestNormalizePhone_DigitBounds(t *testing.T) {
	corpus := []string{
		"", "8", "88005553535999999", "abc", "+7 777 123 45 67 89",
		"1234567890123", "9999999999999999",
	}
	for _, s := range corpus {
		d := domain.PhoneDigits(domain.NormalizePhone(s))
		if len(d) > 11 {
			t.Errorf("NormalizePhone(%q) has %d digits, cap is 11", s, len(d))
		}
		if d != "" && !strings.HasPrefix(d, "7") {
			t.Errorf("NormalizePhone(%q) digits %q do not start with 7", s, d)
		}
	}
}

func TestPhoneDigits(t *testing.T) {
	if got := domain.PhoneDigits("+7 (777) 123-45-67"); got != "77771234567" {
		t.Fatalf("PhoneDigits: got %q", got)
	}
	if got := domain.PhoneDigits("no digits"); got != "" {
		t.Fatalf("PhoneDigits: got %q, want empty", got)
	}
}
