package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorKind classifies every failure a public form can surface to a visitor
type ErrorKind string

const (
	KindInvalidPhoneFormat     ErrorKind = "INVALID_PHONE_FORMAT"
	KindOtpSendFailed          ErrorKind = "OTP_SEND_FAILED"
	KindOtpInvalid             ErrorKind = "OTP_INVALID"
	KindOtpVerifyFailed        ErrorKind = "OTP_VERIFY_FAILED"
	KindOtpNotSent             ErrorKind = "OTP_NOT_SENT"
	KindResendCooldown         ErrorKind = "RESEND_COOLDOWN"
	KindAlreadyVerified        ErrorKind = "ALREADY_VERIFIED"
	KindSessionNotFound        ErrorKind = "SESSION_NOT_FOUND"
	KindMustVerifyPhoneFirst   ErrorKind = "MUST_VERIFY_PHONE_FIRST"
	KindMissingRequiredFields  ErrorKind = "MISSING_REQUIRED_FIELDS"
	KindInvalidEmailFormat     ErrorKind = "INVALID_EMAIL_FORMAT"
	KindInvalidDate            ErrorKind = "INVALID_DATE"
	KindEmailAlreadyRegistered ErrorKind = "EMAIL_ALREADY_REGISTERED"
	KindSubmissionFailed       ErrorKind = "SUBMISSION_FAILED"
	KindInvalidQuizAnswers     ErrorKind = "INVALID_QUIZ_ANSWERS"
	KindUnknownCourse          ErrorKind = "UNKNOWN_COURSE"
	KindCaptchaFailed          ErrorKind = "CAPTCHA_FAILED"
	KindInvalidForm            ErrorKind = "INVALID_FORM"
	KindInvalidIncome          ErrorKind = "INVALID_INCOME"
)

// kindInfo holds the translation key and HTTP status for each kind
var kindInfo = map[ErrorKind]struct {
	messageKey string
	status     int
}{
	KindInvalidPhoneFormat:     {"errors.error_invalid_phone", http.StatusBadRequest},
	KindOtpSendFailed:          {"errors.error_otp_send_failed", http.StatusBadGateway},
	KindOtpInvalid:             {"errors.error_otp_invalid", http.StatusBadRequest},
	KindOtpVerifyFailed:        {"errors.error_otp_verify_failed", http.StatusBadGateway},
	KindOtpNotSent:             {"errors.error_otp_not_sent", http.StatusConflict},
	KindResendCooldown:         {"errors.error_resend_cooldown", http.StatusTooManyRequests},
	KindAlreadyVerified:        {"errors.error_already_verified", http.StatusConflict},
	KindSessionNotFound:        {"errors.error_session_not_found", http.StatusNotFound},
	KindMustVerifyPhoneFirst:   {"errors.error_verify_first", http.StatusBadRequest},
	KindMissingRequiredFields:  {"errors.error_required_fields", http.StatusBadRequest},
	KindInvalidEmailFormat:     {"errors.error_invalid_email", http.StatusBadRequest},
	KindInvalidDate:            {"errors.error_invalid_date", http.StatusBadRequest},
	KindEmailAlreadyRegistered: {"errors.error_email_exists", http.StatusConflict},
	KindSubmissionFailed:       {"errors.error_submission_failed", http.StatusInternalServerError},
	KindInvalidQuizAnswers:     {"errors.error_quiz_answers", http.StatusBadRequest},
	KindUnknownCourse:          {"errors.error_unknown_course", http.StatusNotFound},
	KindCaptchaFailed:          {"errors.error_captcha", http.StatusBadRequest},
	KindInvalidForm:            {"errors.error_invalid_form", http.StatusBadRequest},
	KindInvalidIncome:          {"errors.error_invalid_income", http.StatusBadRequest},
}

// GenericErrorKey is the message shown for unexpected failures
const GenericErrorKey = "errors.error_generic"

// LeadError is a visitor-facing failure. It never carries internal details in
// its message key; Cause is for logs only.
type LeadError struct {
	Kind       ErrorKind
	Field      string        // form field the error belongs to, empty for form-level errors
	Fields     []string      // missing fields for KindMissingRequiredFields
	RetryAfter time.Duration // remaining cooldown for KindResendCooldown
	Cause      error
}

func (e *LeadError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		b.WriteString(" (" + e.Field + ")")
	}
	if len(e.Fields) > 0 {
		b.WriteString(": " + strings.Join(e.Fields, ", "))
	}
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

func (e *LeadError) Unwrap() error {
	return e.Cause
}

// MessageKey returns the i18n key used to render the error
func (e *LeadError) MessageKey() string {
	if info, ok := kindInfo[e.Kind]; ok {
		return info.messageKey
	}
	return GenericErrorKey
}

// HTTPStatus returns the status code the API responds with
func (e *LeadError) HTTPStatus() int {
	if info, ok := kindInfo[e.Kind]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// RetryAfterSeconds rounds the cooldown up to whole seconds
func (e *LeadError) RetryAfterSeconds() int {
	if e.RetryAfter <= 0 {
		return 0
	}
	return int((e.RetryAfter + time.Second - 1) / time.Second)
}

func newLeadError(kind ErrorKind, field string) *LeadError {
	return &LeadError{Kind: kind, Field: field}
}

func wrapLeadError(kind ErrorKind, field string, cause error) *LeadError {
	return &LeadError{Kind: kind, Field: field, Cause: cause}
}

// IsKind reports whether err is a LeadError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var le *LeadError
	if errors.As(err, &le) {
		return le.Kind == kind
	}
	return false
}

// AsLeadError extracts a LeadError from an error chain
func AsLeadError(err error) (*LeadError, bool) {
	var le *LeadError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// Repository results. Persistence failures are reported through these instead
// of sentinel strings.
var (
	ErrAlreadyExists = errors.New("record already exists")
	ErrTransient     = errors.New("transient persistence failure")
)

func transientf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrTransient, fmt.Sprintf(format, args...))
}
