package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"admissions_app_go/services/logger"

	"go.uber.org/zap"
)

// OTPProvider sends and checks one-time passwords. The vendor generates and
// stores the code; this service never sees it before the visitor types it.
type OTPProvider interface {
	SendOTP(ctx context.Context, e164 string) (bool, error)
	VerifyOTP(ctx context.Context, e164, code string) (*OTPVerification, error)
}

// OTPVerification is the vendor's verify response
type OTPVerification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Succeeded applies MSG91's loosely documented success contract: either the
// type is "success" or the message mentions "verified" in any case.
func (v *OTPVerification) Succeeded() bool {
	if v == nil {
		return false
	}
	if v.Type == "success" {
		return true
	}
	return strings.Contains(strings.ToLower(v.Message), "verified")
}

// MSG91Client talks to the MSG91 v5 OTP API
type MSG91Client struct {
	authKey    string
	templateID string
	baseURL    string
	httpClient *http.Client
}

// NewMSG91Client creates a client. baseURL is normally https://control.msg91.com
func NewMSG91Client(authKey, templateID, baseURL string) *MSG91Client {
	return &MSG91Client{
		authKey:    authKey,
		templateID: templateID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// msg91Mobile converts +919876543210 into the 919876543210 form MSG91 expects
func msg91Mobile(e164 string) string {
	return strings.TrimPrefix(e164, "+")
}

// SendOTP asks MSG91 to text a code to the number
func (c *MSG91Client) SendOTP(ctx context.Context, e164 string) (bool, error) {
	q := url.Values{}
	q.Set("template_id", c.templateID)
	q.Set("mobile", msg91Mobile(e164))

	var res OTPVerification
	if err := c.do(ctx, http.MethodPost, "/api/v5/otp?"+q.Encode(), &res); err != nil {
		return false, err
	}
	if res.Type != "success" {
		logger.L().Warn("MSG91 rejected OTP send",
			zap.String("type", res.Type), zap.String("message", res.Message))
		return false, nil
	}
	return true, nil
}

// VerifyOTP checks the code the visitor typed
func (c *MSG91Client) VerifyOTP(ctx context.Context, e164, code string) (*OTPVerification, error) {
	q := url.Values{}
	q.Set("otp", code)
	q.Set("mobile", msg91Mobile(e164))

	var res OTPVerification
	if err := c.do(ctx, http.MethodGet, "/api/v5/otp/verify?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *MSG91Client) do(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build MSG91 request: %w", err)
	}
	req.Header.Set("authkey", c.authKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("MSG91 request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("failed to read MSG91 response: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("MSG91 returned status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode MSG91 response: %w", err)
	}
	return nil
}

// ConsoleOTPCode is the code ConsoleOTPProvider accepts
const ConsoleOTPCode = "123456"

// ConsoleOTPProvider logs sends instead of texting and accepts ConsoleOTPCode.
// Used in development when no MSG91 key is configured.
type ConsoleOTPProvider struct{}

func (ConsoleOTPProvider) SendOTP(ctx context.Context, e164 string) (bool, error) {
	logger.L().Info("OTP send (development mode - not actually sent)",
		zap.String("phone", e164), zap.String("code", ConsoleOTPCode))
	return true, nil
}

func (ConsoleOTPProvider) VerifyOTP(ctx context.Context, e164, code string) (*OTPVerification, error) {
	if code == ConsoleOTPCode {
		return &OTPVerification{Type: "success", Message: "OTP verified success"}, nil
	}
	return &OTPVerification{Type: "error", Message: "OTP not match"}, nil
}
