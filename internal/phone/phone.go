package phone

import (
	"errors"
	"strings"
)

// IdentitySuffix is the WhatsApp network domain appended to a canonical
// number to form a session/conversation key.
const IdentitySuffix = "@s.whatsapp.net"

// ErrInvalid is returned when a raw input cannot be shaped into a
// Brazilian-format number.
var ErrInvalid = errors.New("invalid phone number")

// Normalize converts free-form phone input into a canonical digit-only
// Brazilian number with the country code 55 always present.
//
// The cases below form an ordered dispatch table over the digit count.
// Different lengths are ambiguous (an 11-digit string can be a full
// DDI-less cell number or a truncated something else) and the order is
// what resolves the ambiguity, so it must not be rearranged.
func Normalize(raw string) (string, error) {
	digits := stripNonDigits(raw)
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "", ErrInvalid
	}

	// 1. DDI 55 already present: accept as-is when the DDD is plausible.
	if len(digits) >= 12 && strings.HasPrefix(digits, "55") && dddInRange(digits[2:4]) {
		return digits, nil
	}

	// 1.1. 12 digits without the DDI: DDD + 9-digit cell number.
	if len(digits) == 12 && !strings.HasPrefix(digits, "55") &&
		dddInRange(digits[0:2]) && digits[2] == '9' {
		return "55" + digits, nil
	}

	// 2. 11 digits: DDD + cell number, possibly missing the mobile "9".
	if len(digits) == 11 && dddInRange(digits[0:2]) {
		if digits[2] == '9' {
			return "55" + digits, nil
		}
		// Legacy format without the 9 marker: repair rather than reject.
		return "55" + digits[0:2] + "9" + digits[2:], nil
	}

	// 3. 10 digits: DDD + 8-digit number. A third digit in 6-8 marks an
	// old-format cell number lacking the 9; anything else is a landline.
	if len(digits) == 10 && dddInRange(digits[0:2]) {
		if digits[2] >= '6' && digits[2] <= '8' {
			return "55" + digits[0:2] + "9" + digits[2:], nil
		}
		return "55" + digits, nil
	}

	// 4. 9 digits: assume a missing DDD digit, default to area code 11.
	if len(digits) == 9 {
		return "551" + digits, nil
	}

	// 5. 8 digits: missing DDI and DDD entirely.
	if len(digits) == 8 {
		return "5511" + digits, nil
	}

	// 6. Remaining lengths in range without the DDI: just prefix it.
	if len(digits) >= 8 && len(digits) <= 13 && !strings.HasPrefix(digits, "55") {
		return "55" + digits, nil
	}

	return "", ErrInvalid
}

// Identity formats a canonical number as a network-addressable WhatsApp
// identity, used as a deduplication and session key.
func Identity(canonical string) string {
	return canonical + IdentitySuffix
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dddInRange reports whether a two-digit area code is between 11 and 99.
func dddInRange(ddd string) bool {
	if len(ddd) != 2 {
		return false
	}
	v := int(ddd[0]-'0')*10 + int(ddd[1]-'0')
	return v >= 11 && v <= 99
}
