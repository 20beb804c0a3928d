package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	otpSendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_sends_total",
		Help: "OTP send attempts by form and result.",
	}, []string{"form", "result"})

	otpVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_verifications_total",
		Help: "OTP verify attempts by form and result.",
	}, []string{"form", "result"})

	leadSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lead_submissions_total",
		Help: "Lead form submissions by form and result.",
	}, []string{"form", "result"})

	notificationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failures_total",
		Help: "Background notification tasks that failed.",
	}, []string{"kind"})

	quizCompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_completions_total",
		Help: "Scored career navigator quizzes by winning category.",
	}, []string{"category"})
)

// resultLabel turns an error into a low-cardinality metric label
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if le, ok := AsLeadError(err); ok {
		return string(le.Kind)
	}
	return "error"
}
