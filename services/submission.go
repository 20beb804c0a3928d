package services

import (
	"context"
	"errors"
	"html"
	"regexp"
	"strings"
	"time"

	"admissions_app_go/models"
	"admissions_app_go/services/logger"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// DateOfBirthLayout is the accepted date_of_birth format
const DateOfBirthLayout = "2006-01-02"

// LeadMeta is the request context shared by every form
type LeadMeta struct {
	SessionID string
	Locale    string
	IPAddress string
	UserAgent string
}

type RegistrationInput struct {
	LeadMeta
	Name                 string
	DateOfBirth          string
	Email                string
	HighestQualification string
	InterestedCourse     string
}

type InquiryInput struct {
	LeadMeta
	Name    string
	Message string
}

type FranchiseInput struct {
	LeadMeta
	Name               string
	CityState          string
	Email              string
	InvestmentCapacity string
	BusinessExperience string
}

// SubmissionResult tells the client the lead was saved and the form must be cleared
type SubmissionResult struct {
	ID              string `json:"id"`
	MessageKey      string `json:"-"`
	Reset           bool   `json:"reset"`
	RegisteredEmail string `json:"registered_email,omitempty"`
}

// LeadService runs the submission contract shared by the admissions, contact
// and franchise forms.
type LeadService struct {
	verification *VerificationService
	repo         LeadRepository
	notifier     Notifier
	dispatcher   *Dispatcher
	policy       *bluemonday.Policy
	now          func() time.Time
}

func NewLeadService(verification *VerificationService, repo LeadRepository, notifier Notifier, dispatcher *Dispatcher) *LeadService {
	return &LeadService{
		verification: verification,
		repo:         repo,
		notifier:     notifier,
		dispatcher:   dispatcher,
		policy:       bluemonday.StrictPolicy(),
		now:          time.Now,
	}
}

type field struct {
	name  string
	value string
}

// requireFields lists the names of empty fields, in form order
func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	err := newLeadError(KindMissingRequiredFields, missing[0])
	err.Fields = missing
	return err
}

// ValidEmail reports whether email has the local@domain.tld shape
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// sanitize strips markup and stores plain text. StrictPolicy escapes the
// text it keeps, so the entities are decoded again before storage.
func (s *LeadService) sanitize(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(strings.TrimSpace(text))))
}

// SubmitRegistration saves an admissions registration. The duplicate check
// runs before the insert; a unique index race is reported the same way.
func (s *LeadService) SubmitRegistration(ctx context.Context, in RegistrationInput) (res *SubmissionResult, err error) {
	defer func() { leadSubmissionsTotal.WithLabelValues(models.FormAdmissions, resultLabel(err)).Inc() }()

	phone, err := s.verification.VerifiedPhone(ctx, in.SessionID, models.FormAdmissions)
	if err != nil {
		return nil, err
	}

	if err := requireFields(
		field{"name", in.Name},
		field{"date_of_birth", in.DateOfBirth},
		field{"email", in.Email},
		field{"highest_qualification", in.HighestQualification},
		field{"interested_course", in.InterestedCourse},
	); err != nil {
		return nil, err
	}

	if !ValidEmail(in.Email) {
		return nil, newLeadError(KindInvalidEmailFormat, "email")
	}

	dob, perr := time.Parse(DateOfBirthLayout, strings.TrimSpace(in.DateOfBirth))
	if perr != nil || dob.After(s.now()) {
		return nil, newLeadError(KindInvalidDate, "date_of_birth")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, wrapLeadError(KindSubmissionFailed, "", err)
	}
	if exists {
		return nil, newLeadError(KindEmailAlreadyRegistered, "email")
	}

	reg := &models.Registration{
		Name:                 s.sanitize(in.Name),
		DateOfBirth:          dob.Format(DateOfBirthLayout),
		Phone:                phone.E164,
		Email:                email,
		HighestQualification: s.sanitize(in.HighestQualification),
		InterestedCourse:     s.sanitize(in.InterestedCourse),
		Locale:               in.Locale,
		IPAddress:            in.IPAddress,
		UserAgent:            in.UserAgent,
	}
	if err := s.persist(s.repo.CreateRegistration(ctx, reg)); err != nil {
		return nil, err
	}

	saved := *reg
	s.notify("registration_email", func(ctx context.Context) error {
		return s.notifier.RegistrationSubmitted(ctx, &saved)
	})
	s.consume(ctx, in.SessionID)

	return &SubmissionResult{
		ID:              reg.ID,
		MessageKey:      "success.registration",
		Reset:           true,
		RegisteredEmail: reg.Email,
	}, nil
}

// SubmitInquiry saves a quick contact inquiry
func (s *LeadService) SubmitInquiry(ctx context.Context, in InquiryInput) (res *SubmissionResult, err error) {
	defer func() { leadSubmissionsTotal.WithLabelValues(models.FormContact, resultLabel(err)).Inc() }()

	phone, err := s.verification.VerifiedPhone(ctx, in.SessionID, models.FormContact)
	if err != nil {
		return nil, err
	}

	if err := requireFields(
		field{"name", in.Name},
		field{"message", in.Message},
	); err != nil {
		return nil, err
	}

	message := s.sanitize(in.Message)
	if message == "" {
		return nil, &LeadError{Kind: KindMissingRequiredFields, Field: "message", Fields: []string{"message"}}
	}

	q := &models.QuickInquiry{
		Name:      s.sanitize(in.Name),
		Phone:     phone.E164,
		Message:   message,
		Locale:    in.Locale,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	}
	if err := s.persist(s.repo.CreateInquiry(ctx, q)); err != nil {
		return nil, err
	}

	saved := *q
	s.notify("inquiry_email", func(ctx context.Context) error {
		return s.notifier.InquirySubmitted(ctx, &saved)
	})
	s.consume(ctx, in.SessionID)

	return &SubmissionResult{ID: q.ID, MessageKey: "success.inquiry", Reset: true}, nil
}

// SubmitFranchiseApplication saves a franchise application
func (s *LeadService) SubmitFranchiseApplication(ctx context.Context, in FranchiseInput) (res *SubmissionResult, err error) {
	defer func() { leadSubmissionsTotal.WithLabelValues(models.FormFranchise, resultLabel(err)).Inc() }()

	phone, err := s.verification.VerifiedPhone(ctx, in.SessionID, models.FormFranchise)
	if err != nil {
		return nil, err
	}

	if err := requireFields(
		field{"name", in.Name},
		field{"city_state", in.CityState},
		field{"email", in.Email},
		field{"investment_capacity", in.InvestmentCapacity},
		field{"business_experience", in.BusinessExperience},
	); err != nil {
		return nil, err
	}

	if !ValidEmail(in.Email) {
		return nil, newLeadError(KindInvalidEmailFormat, "email")
	}

	f := &models.FranchiseApplication{
		Name:               s.sanitize(in.Name),
		CityState:          s.sanitize(in.CityState),
		Phone:              phone.E164,
		Email:              strings.ToLower(strings.TrimSpace(in.Email)),
		InvestmentCapacity: s.sanitize(in.InvestmentCapacity),
		BusinessExperience: s.sanitize(in.BusinessExperience),
		Locale:             in.Locale,
		IPAddress:          in.IPAddress,
		UserAgent:          in.UserAgent,
	}
	if err := s.persist(s.repo.CreateFranchiseApplication(ctx, f)); err != nil {
		return nil, err
	}

	saved := *f
	s.notify("franchise_email", func(ctx context.Context) error {
		return s.notifier.FranchiseApplicationSubmitted(ctx, &saved)
	})
	s.consume(ctx, in.SessionID)

	return &SubmissionResult{ID: f.ID, MessageKey: "success.franchise", Reset: true}, nil
}

// persist maps a repository result onto visitor-facing errors
func (s *LeadService) persist(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAlreadyExists):
		return newLeadError(KindEmailAlreadyRegistered, "email")
	default:
		return wrapLeadError(KindSubmissionFailed, "", err)
	}
}

func (s *LeadService) notify(kind string, fn func(ctx context.Context) error) {
	if s.notifier == nil || s.dispatcher == nil {
		return
	}
	s.dispatcher.Go(kind, fn)
}

// consume ends the verification session. The lead is already saved, so a
// failure here is only logged.
func (s *LeadService) consume(ctx context.Context, sessionID string) {
	if err := s.verification.Reset(ctx, sessionID); err != nil {
		logger.L().Warn("Failed to reset verification session", zap.String("session", sessionID), zap.Error(err))
	}
}
