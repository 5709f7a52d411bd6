package senders

import (
	"fmt"
	"strings"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// NormalizePhone validates a destination phone number and canonicalizes it to
// E.164-ish form. Non-digit characters are stripped (a single leading '+' is
// kept). Bare 10-digit numbers get a country code inferred: Indian mobile
// numbers start with 6-9, everything else defaults to US.
func NormalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("phone number is empty")
	}

	hasPlus := strings.HasPrefix(trimmed, "+")
	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()

	if !hasPlus {
		if len(number) == minPhoneDigits {
			if number[0] >= '6' && number[0] <= '9' {
				number = "91" + number
			} else {
				number = "1" + number
			}
		}
	}

	if len(number) < minPhoneDigits || len(number) > maxPhoneDigits {
		return "", fmt.Errorf("phone number %q has %d digits, want %d-%d", raw, len(number), minPhoneDigits, maxPhoneDigits)
	}

	return "+" + number, nil
}
