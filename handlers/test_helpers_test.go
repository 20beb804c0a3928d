package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"admissions_app_go/db"
	"admissions_app_go/models"
	"admissions_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(
		&models.Registration{},
		&models.QuickInquiry{},
		&models.FranchiseApplication{},
		&models.CareerQuizResult{},
	)
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.HTTPErrorHandler = APIErrorHandler
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	c.Set("locale", "en")

	return e, c, rec
}

// jsonBody encodes v for a request body
func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return strings.NewReader(string(b))
}

// serve runs fn and renders any returned error the way the server does
func serve(c echo.Context, fn echo.HandlerFunc) {
	if err := fn(c); err != nil {
		APIErrorHandler(err, c)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error
}

// fakeOTPProvider accepts testOTPCode and records sends
type fakeOTPProvider struct {
	mu      sync.Mutex
	sendOK  bool
	sendErr error
	sends   int
}

const testOTPCode = "123456"

func (f *fakeOTPProvider) SendOTP(ctx context.Context, e164 string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	return f.sendOK, f.sendErr
}

func (f *fakeOTPProvider) VerifyOTP(ctx context.Context, e164, code string) (*services.OTPVerification, error) {
	if code == testOTPCode {
		return &services.OTPVerification{Type: "success"}, nil
	}
	return &services.OTPVerification{Type: "error", Message: "OTP not match"}, nil
}

// fakeCaptcha rejects every token when err is set
type fakeCaptcha struct {
	err    error
	tokens []string
}

func (f *fakeCaptcha) Verify(ctx context.Context, token, ip string) error {
	f.tokens = append(f.tokens, token)
	return f.err
}

type testApp struct {
	handler  *Handler
	provider *fakeOTPProvider
	captcha  *fakeCaptcha
	db       *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	database := setupTestDB(t)
	repo := services.NewGormLeadRepository(database)
	provider := &fakeOTPProvider{sendOK: true}
	captcha := &fakeCaptcha{}
	verification := services.NewVerificationService(services.NewMemoryVerificationStore(), provider, 30*time.Minute, 60*time.Second)

	return &testApp{
		handler: &Handler{
			Verification: verification,
			Leads:        services.NewLeadService(verification, repo, nil, nil),
			Quiz:         services.NewQuizService(repo, nil),
			Exporter:     services.NewLeadExporter(repo, nil),
			Captcha:      captcha,
		},
		provider: provider,
		captcha:  captcha,
		db:       database,
	}
}

// verifiedSession walks a session for form through send and verify
func (a *testApp) verifiedSession(t *testing.T, form, phone string) string {
	t.Helper()
	ctx := context.Background()
	v, err := a.handler.Verification.Start(ctx, form)
	require.NoError(t, err)
	_, err = a.handler.Verification.SendCode(ctx, v.ID, phone)
	require.NoError(t, err)
	_, err = a.handler.Verification.VerifyCode(ctx, v.ID, testOTPCode)
	require.NoError(t, err)
	return v.ID
}

func withParam(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
}
