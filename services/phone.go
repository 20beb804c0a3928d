package services

import "strings"

const (
	// CountryCode is fixed: every form on the site serves Indian mobile numbers only
	CountryCode = "+91"
	// NationalNumberLength is the digit count of an Indian mobile number
	NationalNumberLength = 10
	// OTPCodeLength is the digit count of codes sent by the OTP vendor
	OTPCodeLength = 6
)

// PhoneNumber is a normalized Indian mobile number
type PhoneNumber struct {
	National string // 10 digits
	E164     string // +91 followed by National
}

// NormalizePhone strips every non-digit character and requires exactly ten
// digits. "98765-43210", "(98765) 43210" and "9876543210" all normalize to
// the same number.
func NormalizePhone(raw string) (PhoneNumber, error) {
	digits := DigitsOnly(raw)
	if len(digits) != NationalNumberLength {
		return PhoneNumber{}, newLeadError(KindInvalidPhoneFormat, "phone")
	}
	return PhoneNumber{
		National: digits,
		E164:     CountryCode + digits,
	}, nil
}

// DigitsOnly removes everything except ASCII digits
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidOTPCode reports whether code is exactly six ASCII digits
func ValidOTPCode(code string) bool {
	if len(code) != OTPCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
