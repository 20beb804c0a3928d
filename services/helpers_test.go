package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"admissions_app_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = testDB.AutoMigrate(
		&models.Registration{},
		&models.QuickInquiry{},
		&models.FranchiseApplication{},
		&models.CareerQuizResult{},
	)
	require.NoError(t, err)
	return testDB
}

// fakeOTPProvider records calls and returns canned results
type fakeOTPProvider struct {
	mu        sync.Mutex
	sendOK    bool
	sendErr   error
	verifyRes *OTPVerification
	verifyErr error
	sends     []string
	verifies  []string
}

func newFakeOTPProvider() *fakeOTPProvider {
	return &fakeOTPProvider{
		sendOK:    true,
		verifyRes: &OTPVerification{Type: "success"},
	}
}

func (f *fakeOTPProvider) SendOTP(ctx context.Context, e164 string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, e164)
	return f.sendOK, f.sendErr
}

func (f *fakeOTPProvider) VerifyOTP(ctx context.Context, e164, code string) (*OTPVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifies = append(f.verifies, e164+":"+code)
	return f.verifyRes, f.verifyErr
}

func (f *fakeOTPProvider) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

func (f *fakeOTPProvider) verifyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.verifies)
}

// fakeClock is a settable time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestVerificationService(provider OTPProvider, clock *fakeClock) (*VerificationService, *MemoryVerificationStore) {
	store := NewMemoryVerificationStore()
	store.now = clock.Now
	svc := NewVerificationService(store, provider, testSessionTTL, 60*time.Second)
	svc.now = clock.Now
	return svc, store
}

const testSessionTTL = 30 * time.Minute

// verifiedSession walks a session through send and verify
func verifiedSession(t *testing.T, svc *VerificationService, form, phone string) string {
	t.Helper()
	ctx := context.Background()
	v, err := svc.Start(ctx, form)
	require.NoError(t, err)
	_, err = svc.SendCode(ctx, v.ID, phone)
	require.NoError(t, err)
	_, err = svc.VerifyCode(ctx, v.ID, "123456")
	require.NoError(t, err)
	return v.ID
}

// countingRepository wraps a LeadRepository and counts calls
type countingRepository struct {
	LeadRepository
	mu              sync.Mutex
	emailChecks     int
	creates         int
	createErr       error
	emailExistsErr  error
	quizResultSaves int
}

func (r *countingRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	r.emailChecks++
	r.mu.Unlock()
	if r.emailExistsErr != nil {
		return false, r.emailExistsErr
	}
	return r.LeadRepository.EmailExists(ctx, email)
}

func (r *countingRepository) create(fn func() error) error {
	r.mu.Lock()
	r.creates++
	err := r.createErr
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return fn()
}

func (r *countingRepository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	return r.create(func() error { return r.LeadRepository.CreateRegistration(ctx, reg) })
}

func (r *countingRepository) CreateInquiry(ctx context.Context, q *models.QuickInquiry) error {
	return r.create(func() error { return r.LeadRepository.CreateInquiry(ctx, q) })
}

func (r *countingRepository) CreateFranchiseApplication(ctx context.Context, f *models.FranchiseApplication) error {
	return r.create(func() error { return r.LeadRepository.CreateFranchiseApplication(ctx, f) })
}

func (r *countingRepository) CreateQuizResult(ctx context.Context, q *models.CareerQuizResult) error {
	r.mu.Lock()
	r.quizResultSaves++
	err := r.createErr
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.LeadRepository.CreateQuizResult(ctx, q)
}

func (r *countingRepository) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emailChecks, r.creates
}

// recordingNotifier captures notifications and can be told to fail
type recordingNotifier struct {
	mu            sync.Mutex
	err           error
	registrations []models.Registration
	inquiries     []models.QuickInquiry
	franchise     []models.FranchiseApplication
}

func (n *recordingNotifier) RegistrationSubmitted(ctx context.Context, r *models.Registration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.registrations = append(n.registrations, *r)
	return n.err
}

func (n *recordingNotifier) InquirySubmitted(ctx context.Context, q *models.QuickInquiry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inquiries = append(n.inquiries, *q)
	return n.err
}

func (n *recordingNotifier) FranchiseApplicationSubmitted(ctx context.Context, f *models.FranchiseApplication) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.franchise = append(n.franchise, *f)
	return n.err
}

var errBoom = errors.New("boom")
