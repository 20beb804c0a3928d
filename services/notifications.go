package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"admissions_app_go/models"
	"admissions_app_go/services/i18n"
	"admissions_app_go/services/logger"

	"go.uber.org/zap"
)

// Notifier sends the emails that follow a saved lead
type Notifier interface {
	RegistrationSubmitted(ctx context.Context, r *models.Registration) error
	InquirySubmitted(ctx context.Context, q *models.QuickInquiry) error
	FranchiseApplicationSubmitted(ctx context.Context, f *models.FranchiseApplication) error
}

// EmailNotifier emails the applicant (when an address was collected) and the admissions team
type EmailNotifier struct {
	sender    EmailSender
	templates *EmailTemplates
	teamEmail string
}

func NewEmailNotifier(sender EmailSender, templates *EmailTemplates, teamEmail string) *EmailNotifier {
	return &EmailNotifier{sender: sender, templates: templates, teamEmail: teamEmail}
}

type registrationEmailData struct {
	Name          string
	DateOfBirth   string
	Phone         string
	Email         string
	Qualification string
	Course        string
}

type inquiryEmailData struct {
	Name    string
	Phone   string
	Message string
}

type franchiseEmailData struct {
	Name               string
	CityState          string
	Phone              string
	Email              string
	InvestmentCapacity string
	BusinessExperience string
}

// RegistrationSubmitted sends the confirmation and the team alert. Both are
// attempted even if the first fails.
func (n *EmailNotifier) RegistrationSubmitted(ctx context.Context, r *models.Registration) error {
	data := registrationEmailData{
		Name:          r.Name,
		DateOfBirth:   r.DateOfBirth,
		Phone:         r.Phone,
		Email:         r.Email,
		Qualification: r.HighestQualification,
		Course:        r.InterestedCourse,
	}
	return errors.Join(
		n.send(ctx, "registration_confirmation", r.Locale, "email.subject.registration_confirmation", data, r.Email),
		n.send(ctx, "registration_alert", "en", "email.subject.registration_alert", data, n.teamEmail),
	)
}

// InquirySubmitted only alerts the team; the contact form collects no email address
func (n *EmailNotifier) InquirySubmitted(ctx context.Context, q *models.QuickInquiry) error {
	data := inquiryEmailData{Name: q.Name, Phone: q.Phone, Message: q.Message}
	return n.send(ctx, "inquiry_alert", "en", "email.subject.inquiry_alert", data, n.teamEmail)
}

func (n *EmailNotifier) FranchiseApplicationSubmitted(ctx context.Context, f *models.FranchiseApplication) error {
	data := franchiseEmailData{
		Name:               f.Name,
		CityState:          f.CityState,
		Phone:              f.Phone,
		Email:              f.Email,
		InvestmentCapacity: f.InvestmentCapacity,
		BusinessExperience: f.BusinessExperience,
	}
	return errors.Join(
		n.send(ctx, "franchise_confirmation", f.Locale, "email.subject.franchise_confirmation", data, f.Email),
		n.send(ctx, "franchise_alert", "en", "email.subject.franchise_alert", data, n.teamEmail),
	)
}

func (n *EmailNotifier) send(ctx context.Context, tmpl, lang, subjectKey string, data interface{}, to string) error {
	if to == "" {
		return nil
	}
	email, err := n.templates.Build(tmpl, lang, i18n.Translate(lang, subjectKey), data, to)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, email)
}

// DefaultNotificationTimeout bounds every background notification task
const DefaultNotificationTimeout = 30 * time.Second

// Dispatcher runs side effects detached from the request. A task's error is
// only logged and counted; it never reaches the caller.
type Dispatcher struct {
	wg      sync.WaitGroup
	timeout time.Duration
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultNotificationTimeout
	}
	return &Dispatcher{timeout: timeout}
}

// Go starts fn in its own goroutine with a fresh context
func (d *Dispatcher) Go(kind string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				notificationFailuresTotal.WithLabelValues(kind).Inc()
				logger.L().Error("Background task panicked", zap.String("kind", kind), zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			notificationFailuresTotal.WithLabelValues(kind).Inc()
			logger.L().Warn("Background task failed", zap.String("kind", kind), zap.Error(err))
		}
	}()
}

// Wait blocks until every started task has finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
