package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nebula-forge-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockRegistrationSvc struct{ mock.Mock }

func (m *mockRegistrationSvc) Initiate(ctx context.Context, req domain.RegisterInitRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockRegistrationSvc) Verify(ctx context.Context, req domain.VerifyRequest) (*domain.UserIdentity, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.UserIdentity); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationSvc) Resend(ctx context.Context, req domain.ResendRequest) error {
	return m.Called(ctx, req).Error(0)
}

type stubSigner struct {
	token string
	err   error
}

func (s stubSigner) Sign(*domain.UserIdentity) (string, error) { return s.token, s.err }

// --- helpers ---

func postJSON(target string, v interface{}) *http.Request {
	body, _ := json.Marshal(v)
	return httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env.Message
}

// --- RegisterInit ---

func TestRegisterInit_InvalidBody(t *testing.T) {
	svc := &mockRegistrationSvc{}
	h := NewRegistrationHandler(svc, nil)
	r := httptest.NewRequest(http.MethodPost, "/api/register-init", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.RegisterInit(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid request body", decodeMessage(t, rr))
	svc.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything)
}

func TestRegisterInit_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", fmt.Errorf("all fields are required: %w", domain.ErrValidation), http.StatusBadRequest, "All fields are required"},
		{"delivery", fmt.Errorf("send: %w", errors.Join(domain.ErrDelivery, errors.New("dial tcp"))), http.StatusInternalServerError, "Failed to send email"},
		{"unknown", errors.New("store down"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockRegistrationSvc{}
			svc.On("Initiate", mock.Anything, mock.Anything).Return(tc.err)
			h := NewRegistrationHandler(svc, nil)
			rr := httptest.NewRecorder()
			h.RegisterInit(rr, postJSON("/api/register-init", domain.RegisterInitRequest{Email: "kai@x.sg"}))
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.message, decodeMessage(t, rr))
		})
	}
}

func TestRegisterInit_HappyPath_NoCodeInResponse(t *testing.T) {
	svc := &mockRegistrationSvc{}
	req := domain.RegisterInitRequest{Name: "Kai", Email: "kai@x.sg", Password: "pw"}
	svc.On("Initiate", mock.Anything, req).Return(nil)
	h := NewRegistrationHandler(svc, nil)
	rr := httptest.NewRecorder()
	h.RegisterInit(rr, postJSON("/api/register-init", req))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Verification code sent"}`, rr.Body.String())
	svc.AssertExpectations(t)
}

// --- Verify ---

func TestVerify_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", fmt.Errorf("no pending registration: %w", domain.ErrNotFound), http.StatusBadRequest, "No pending registration found."},
		{"expired", fmt.Errorf("code expired: %w", domain.ErrExpired), http.StatusBadRequest, "Code expired."},
		{"mismatch", fmt.Errorf("invalid code: %w", domain.ErrMismatch), http.StatusBadRequest, "Invalid code."},
		{"validation", fmt.Errorf("missing: %w", domain.ErrValidation), http.StatusBadRequest, "Email and code are required"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockRegistrationSvc{}
			svc.On("Verify", mock.Anything, mock.Anything).Return(nil, tc.err)
			h := NewRegistrationHandler(svc, nil)
			rr := httptest.NewRecorder()
			h.Verify(rr, postJSON("/api/verify", domain.VerifyRequest{Email: "kai@x.sg", Code: "123456"}))
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.message, decodeMessage(t, rr))
		})
	}
}

func TestVerify_HappyPath_WithoutSigner(t *testing.T) {
	svc := &mockRegistrationSvc{}
	u := domain.NewUserIdentity("01HX", "Kai", "kai@x.sg", "hash", time.Now())
	svc.On("Verify", mock.Anything, domain.VerifyRequest{Email: "kai@x.sg", Code: "123456"}).Return(u, nil)
	h := NewRegistrationHandler(svc, nil)
	rr := httptest.NewRecorder()
	h.Verify(rr, postJSON("/api/verify", domain.VerifyRequest{Email: "kai@x.sg", Code: "123456"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"user":{"id":"01HX","name":"Kai","email":"kai@x.sg","role":"user","isFirstTime":true}}`, rr.Body.String())
}

func TestVerify_HappyPath_WithToken(t *testing.T) {
	svc := &mockRegistrationSvc{}
	u := domain.NewUserIdentity("01HX", "Kai", "kai@x.sg", "hash", time.Now())
	svc.On("Verify", mock.Anything, mock.Anything).Return(u, nil)
	h := NewRegistrationHandler(svc, stubSigner{token: "signed"})
	rr := httptest.NewRecorder()
	h.Verify(rr, postJSON("/api/verify", domain.VerifyRequest{Email: "kai@x.sg", Code: "123456"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp VerifyEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "signed", resp.Token)
	assert.Equal(t, "01HX", resp.User.ID)
}

func TestVerify_SignerFailureStillReturnsIdentity(t *testing.T) {
	svc := &mockRegistrationSvc{}
	u := domain.NewUserIdentity("01HX", "Kai", "kai@x.sg", "hash", time.Now())
	svc.On("Verify", mock.Anything, mock.Anything).Return(u, nil)
	h := NewRegistrationHandler(svc, stubSigner{err: errors.New("no key")})
	rr := httptest.NewRecorder()
	h.Verify(rr, postJSON("/api/verify", domain.VerifyRequest{Email: "kai@x.sg", Code: "123456"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "token")
}

// --- Resend ---

func TestResend_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", domain.ErrNotFound, http.StatusBadRequest, "No pending registration found."},
		{"delivery", errors.Join(domain.ErrDelivery, errors.New("timeout")), http.StatusInternalServerError, "Failed to send email"},
		{"validation", domain.ErrValidation, http.StatusBadRequest, "Email is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockRegistrationSvc{}
			svc.On("Resend", mock.Anything, mock.Anything).Return(tc.err)
			h := NewRegistrationHandler(svc, nil)
			rr := httptest.NewRecorder()
			h.Resend(rr, postJSON("/api/register-resend", domain.ResendRequest{Email: "kai@x.sg"}))
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.message, decodeMessage(t, rr))
		})
	}
}

func TestResend_HappyPath(t *testing.T) {
	svc := &mockRegistrationSvc{}
	svc.On("Resend", mock.Anything, domain.ResendRequest{Email: "kai@x.sg"}).Return(nil)
	h := NewRegistrationHandler(svc, nil)
	rr := httptest.NewRecorder()
	h.Resend(rr, postJSON("/api/register-resend", domain.ResendRequest{Email: "kai@x.sg"}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Verification code sent", decodeMessage(t, rr))
	svc.AssertExpectations(t)
}
