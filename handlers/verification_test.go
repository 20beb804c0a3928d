package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"admissions_app_go/models"
	"admissions_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeVerification(t *testing.T, body []byte) verificationResponse {
	t.Helper()
	var resp verificationResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestStartVerificationHandler(t *testing.T) {
	app := newTestApp(t)

	t.Run("Success", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/verification", jsonBody(t, map[string]string{"form": models.FormAdmissions}))

		serve(c, app.handler.StartVerificationHandler)
		assertStatus(t, rec, http.StatusCreated)

		resp := decodeVerification(t, rec.Body.Bytes())
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, models.FormAdmissions, resp.Form)
		assert.Equal(t, services.StateIdle, resp.State)
		assert.True(t, resp.CanSend)
		assert.False(t, resp.PhoneLocked)
	})

	t.Run("Unknown form", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/verification", jsonBody(t, map[string]string{"form": "newsletter"}))

		serve(c, app.handler.StartVerificationHandler)
		assertStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, string(services.KindInvalidForm), decodeError(t, rec).Code)
	})
}

func TestSendOTPHandler(t *testing.T) {
	app := newTestApp(t)
	ctx := t.Context()

	t.Run("Success locks in the number", func(t *testing.T) {
		v, err := app.handler.Verification.Start(ctx, models.FormContact)
		require.NoError(t, err)

		_, c, rec := setupEcho(http.MethodPost, "/", jsonBody(t, map[string]string{"phone": "98765-43210"}))
		serve(withParam(c, v.ID), app.handler.SendOTPHandler)
		assertStatus(t, rec, http.StatusOK)

		resp := decodeVerification(t, rec.Body.Bytes())
		assert.Equal(t, services.StateSent, resp.State)
		assert.Equal(t, "9876543210", resp.Phone)
		assert.Equal(t, "OTP sent to 9876543210.", resp.Message)
	})

	t.Run("Invalid phone never reaches the vendor", func(t *testing.T) {
		v, err := app.handler.Verification.Start(ctx, models.FormContact)
		require.NoError(t, err)
		before := app.provider.sends

		_, c, rec := setupEcho(http.MethodPost, "/", jsonBody(t, map[string]string{"phone": "987654321"}))
		serve(withParam(c, v.ID), app.handler.SendOTPHandler)
		assertStatus(t, rec, http.StatusBadRequest)

		body := decodeError(t, rec)
		assert.Equal(t, string(services.KindInvalidPhoneFormat), body.Code)
		assert.Equal(t, "phone", body.Field)
		assert.Equal(t, before, app.provider.sends)
	})

	t.Run("Admissions resend is held back by the cooldown", func(t *testing.T) {
		v, err := app.handler.Verification.Start(ctx, models.FormAdmissions)
		require.NoError(t, err)
		_, err = app.handler.Verification.SendCode(ctx, v.ID, "9876543210")
		require.NoError(t, err)

		_, c, rec := setupEcho(http.MethodPost, "/", jsonBody(t, map[string]string{"phone": "9876543210"}))
		serve(withParam(c, v.ID), app.handler.SendOTPHandler)
		assertStatus(t, rec, http.StatusTooManyRequests)

		body := decodeError(t, rec)
		assert.Equal(t, string(services.KindResendCooldown), body.Code)
		assert.Greater(t, body.RetryAfter, 0)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Contains(t, body.Message, "seconds")
	})

	t.Run("Vendor failure", func(t *testing.T) {
		app := newTestApp(t)
		app.provider.sendErr = errors.New("vendor down")
		v, err := app.handler.Verification.Start(ctx, models.FormFranchise)
		require.NoError(t, err)

		_, c, rec := setupEcho(http.MethodPost, "/", jsonBody(t, map[string]string{"phone": "9876543210"}))
		serve(withParam(c, v.ID), app.handler.SendOTPHandler)
		assertStatus(t, rec, http.StatusBadGateway)
		assert.Equal(t, string(services.KindOtpSendFailed), decodeError(t, rec).Code)

		current, err := app.handler.Verification.Get(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, services.StateIdle, current.State)
	})

	t.Run("Unknown session", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/", jsonBody(t, map[string]string{"phone": "9876543210"}))
		serve(withParam(c, "missing"), app.handler.SendOTPHandler)
		assertStatus(t, rec, http.StatusNotFound)
		assert.Equal(t, string(services.KindSessionNotFound), decodeError(t, rec).Code)
	})
}

func TestVerifyOTPHandler(t *testing.T) {
	app := newTestApp(t)
	ctx := t.Context()

	sent := func(t *testing.T) string {
		v, err := app.handler.Verification.Start(ctx, models.FormContact)
		require.NoError(t, err)
		_, err = app.handler.Verification.SendCode(ctx, v.ID, "9876543210")
		require.NoError(t, err)
		return v.ID
	}

	t.Run("Success", func(t *testing.T) {
		id := sent(t)
		_, c, rec := setupEcho(http.MethodPost, "/", jsonBody(t, map[string]string{"otp": testOTPCode}))
		serve(withParam(c, id), app.handler.VerifyOTPHandler)
		assertStatus(t, rec, http.StatusOK)

		resp := decodeVerification(t, rec.Body.Bytes())
		assert.Equal(t, services.StateVerified, resp.State)
		assert.True(t, resp.PhoneLocked)
		assert.False(t, resp.CanSend)
		assert.Equal(t, "Phone number verified.", resp.Message)
	})

	t.Run("Wrong code keeps the session in SENT", func(t *testing.T) {
		id := sent(t)
		_, c, rec := setupEcho(http.MethodPost, "/", jsonBody(t, map[string]string{"otp": "000000"}))
		serve(withParam(c, id), app.handler.VerifyOTPHandler)
		assertStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, string(services.KindOtpInvalid), decodeError(t, rec).Code)

		_, c, rec = setupEcho(http.MethodGet, "/", nil)
		serve(withParam(c, id), app.handler.GetVerificationHandler)
		assertStatus(t, rec, http.StatusOK)
		assert.Equal(t, services.StateSent, decodeVerification(t, rec.Body.Bytes()).State)
	})

	t.Run("Code before send", func(t *testing.T) {
		v, err := app.handler.Verification.Start(ctx, models.FormContact)
		require.NoError(t, err)

		_, c, rec := setupEcho(http.MethodPost, "/", jsonBody(t, map[string]string{"otp": testOTPCode}))
		serve(withParam(c, v.ID), app.handler.VerifyOTPHandler)
		assertStatus(t, rec, http.StatusConflict)
		assert.Equal(t, string(services.KindOtpNotSent), decodeError(t, rec).Code)
	})

	t.Run("Malformed body", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/", jsonBody(t, "not an object"))
		serve(withParam(c, sent(t)), app.handler.VerifyOTPHandler)
		assertStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, CodeBadRequest, decodeError(t, rec).Code)
	})
}
