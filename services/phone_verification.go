package services

import (
	"time"
)

// VerificationState is the phone verification lifecycle:
// IDLE -> SENDING -> SENT -> VERIFIED. A failed send drops back to IDLE, a
// failed verify stays in SENT. VERIFIED is terminal.
type VerificationState string

const (
	StateIdle     VerificationState = "IDLE"
	StateSending  VerificationState = "SENDING"
	StateSent     VerificationState = "SENT"
	StateVerified VerificationState = "VERIFIED"
)

// PhoneVerification is one visitor's verification session. Transitions are
// value methods returning the next state so a failed guard leaves the caller's
// copy untouched.
type PhoneVerification struct {
	ID         string            `json:"id"`
	Form       string            `json:"form"`
	RawInput   string            `json:"raw_input,omitempty"`
	National   string            `json:"national,omitempty"`
	E164       string            `json:"e164,omitempty"`
	State      VerificationState `json:"state"`
	ResendAt   time.Time         `json:"resend_at,omitempty"`
	VerifiedAt time.Time         `json:"verified_at,omitempty"`
	ExpiresAt  time.Time         `json:"expires_at"`
}

// NewPhoneVerification returns an IDLE session
func NewPhoneVerification(id, form string, expiresAt time.Time) PhoneVerification {
	return PhoneVerification{
		ID:        id,
		Form:      form,
		State:     StateIdle,
		ExpiresAt: expiresAt,
	}
}

// Begin moves to SENDING for a (re)send to raw. The phone must normalize to
// ten digits, a verified session rejects it and a SENT session must be past
// its resend cooldown.
func (v PhoneVerification) Begin(raw string, now time.Time) (PhoneVerification, error) {
	switch v.State {
	case StateVerified:
		return v, newLeadError(KindAlreadyVerified, "phone")
	case StateSent:
		if now.Before(v.ResendAt) {
			return v, &LeadError{Kind: KindResendCooldown, Field: "phone", RetryAfter: v.ResendAt.Sub(now)}
		}
	}

	phone, err := NormalizePhone(raw)
	if err != nil {
		return v, err
	}

	v.RawInput = raw
	v.National = phone.National
	v.E164 = phone.E164
	v.State = StateSending
	v.ResendAt = time.Time{}
	return v, nil
}

// SendSucceeded moves SENDING -> SENT and arms the resend cooldown
func (v PhoneVerification) SendSucceeded(now time.Time, cooldown time.Duration) PhoneVerification {
	if v.State != StateSending {
		return v
	}
	v.State = StateSent
	v.ResendAt = now.Add(cooldown)
	return v
}

// SendFailed moves SENDING -> IDLE. The typed input is kept so the visitor
// can retry without retyping.
func (v PhoneVerification) SendFailed() PhoneVerification {
	if v.State != StateSending {
		return v
	}
	v.State = StateIdle
	v.National = ""
	v.E164 = ""
	return v
}

// CheckCode is the guard run before the vendor is asked to verify code
func (v PhoneVerification) CheckCode(code string) error {
	switch v.State {
	case StateVerified:
		return newLeadError(KindAlreadyVerified, "otp")
	case StateSent:
	default:
		return newLeadError(KindOtpNotSent, "otp")
	}
	if !ValidOTPCode(code) {
		return newLeadError(KindOtpInvalid, "otp")
	}
	return nil
}

// Verified moves SENT -> VERIFIED
func (v PhoneVerification) Verified(now time.Time) PhoneVerification {
	if v.State != StateSent {
		return v
	}
	v.State = StateVerified
	v.VerifiedAt = now
	v.ResendAt = time.Time{}
	return v
}

// ResendIn is the number of whole seconds until another code can be sent
func (v PhoneVerification) ResendIn(now time.Time) int {
	if v.State != StateSent || !now.Before(v.ResendAt) {
		return 0
	}
	return int((v.ResendAt.Sub(now) + time.Second - 1) / time.Second)
}

// PhoneLocked reports whether the phone input must be read-only
func (v PhoneVerification) PhoneLocked() bool {
	return v.State == StateVerified
}

// CanSend reports whether the send/resend control should be offered
func (v PhoneVerification) CanSend(now time.Time) bool {
	switch v.State {
	case StateIdle:
		return true
	case StateSent:
		return !now.Before(v.ResendAt)
	}
	return false
}
