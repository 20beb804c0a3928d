package services

import (
	"context"
	"errors"
	"time"

	"admissions_app_go/models"
	"admissions_app_go/services/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VerificationService drives phone verification sessions against the OTP vendor
type VerificationService struct {
	store     VerificationStore
	provider  OTPProvider
	ttl       time.Duration
	cooldowns map[string]time.Duration
	now       func() time.Time
}

// NewVerificationService creates the service. resendCooldown only applies to
// the admissions form; contact and franchise can resend immediately.
func NewVerificationService(store VerificationStore, provider OTPProvider, ttl, resendCooldown time.Duration) *VerificationService {
	return &VerificationService{
		store:    store,
		provider: provider,
		ttl:      ttl,
		cooldowns: map[string]time.Duration{
			models.FormAdmissions: resendCooldown,
		},
		now: time.Now,
	}
}

// Start opens an IDLE session for form
func (s *VerificationService) Start(ctx context.Context, form string) (*PhoneVerification, error) {
	if !models.IsValidForm(form) {
		return nil, newLeadError(KindInvalidForm, "form")
	}
	v := NewPhoneVerification(uuid.New().String(), form, s.now().Add(s.ttl))
	if err := s.save(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Get loads a session
func (s *VerificationService) Get(ctx context.Context, id string) (*PhoneVerification, error) {
	v, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, newLeadError(KindSessionNotFound, "")
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// SendCode sends (or resends) an OTP to rawPhone
func (s *VerificationService) SendCode(ctx context.Context, id, rawPhone string) (*PhoneVerification, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next, err := current.Begin(rawPhone, now)
	if err != nil {
		otpSendsTotal.WithLabelValues(current.Form, resultLabel(err)).Inc()
		return current, err
	}

	ok, err := s.provider.SendOTP(ctx, next.E164)
	if err != nil || !ok {
		next = next.SendFailed()
		sendErr := wrapLeadError(KindOtpSendFailed, "phone", err)
		logger.L().Warn("OTP send failed",
			zap.String("session", id), zap.String("form", next.Form), zap.Error(err))
		otpSendsTotal.WithLabelValues(next.Form, resultLabel(sendErr)).Inc()
		if saveErr := s.save(ctx, &next); saveErr != nil {
			return nil, saveErr
		}
		return &next, sendErr
	}

	next = next.SendSucceeded(now, s.cooldowns[next.Form])
	otpSendsTotal.WithLabelValues(next.Form, "ok").Inc()
	if err := s.save(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// VerifyCode checks code with the vendor. Malformed codes never reach the vendor.
func (s *VerificationService) VerifyCode(ctx context.Context, id, code string) (*PhoneVerification, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := current.CheckCode(code); err != nil {
		otpVerificationsTotal.WithLabelValues(current.Form, resultLabel(err)).Inc()
		return current, err
	}

	res, err := s.provider.VerifyOTP(ctx, current.E164, code)
	if err != nil {
		verifyErr := wrapLeadError(KindOtpVerifyFailed, "otp", err)
		logger.L().Warn("OTP verify call failed",
			zap.String("session", id), zap.String("form", current.Form), zap.Error(err))
		otpVerificationsTotal.WithLabelValues(current.Form, resultLabel(verifyErr)).Inc()
		return current, verifyErr
	}
	if !res.Succeeded() {
		invalid := newLeadError(KindOtpInvalid, "otp")
		otpVerificationsTotal.WithLabelValues(current.Form, resultLabel(invalid)).Inc()
		return current, invalid
	}

	next := current.Verified(s.now())
	otpVerificationsTotal.WithLabelValues(next.Form, "ok").Inc()
	if err := s.save(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// VerifiedPhone returns the verified number of a session opened for form.
// Unknown, expired, foreign or unverified sessions all mean the visitor has
// not verified their phone.
func (s *VerificationService) VerifiedPhone(ctx context.Context, id, form string) (PhoneNumber, error) {
	if id == "" {
		return PhoneNumber{}, newLeadError(KindMustVerifyPhoneFirst, "phone")
	}
	v, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return PhoneNumber{}, newLeadError(KindMustVerifyPhoneFirst, "phone")
	}
	if err != nil {
		return PhoneNumber{}, err
	}
	if v.Form != form || v.State != StateVerified {
		return PhoneNumber{}, newLeadError(KindMustVerifyPhoneFirst, "phone")
	}
	return PhoneNumber{National: v.National, E164: v.E164}, nil
}

// Reset discards a session once its lead has been saved
func (s *VerificationService) Reset(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// ResendIn exposes the cooldown countdown for responses
func (s *VerificationService) ResendIn(v *PhoneVerification) int {
	return v.ResendIn(s.now())
}

// CanSend exposes whether the send control is available
func (s *VerificationService) CanSend(v *PhoneVerification) bool {
	return v.CanSend(s.now())
}

func (s *VerificationService) save(ctx context.Context, v *PhoneVerification) error {
	ttl := v.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return newLeadError(KindSessionNotFound, "")
	}
	return s.store.Save(ctx, v, ttl)
}
