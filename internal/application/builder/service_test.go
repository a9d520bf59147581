package builder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nebula-forge-api/internal/domain"
	"github.com/nebula-forge-api/internal/infrastructure/smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(ctx context.Context, msg smtp.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, phone, msg string) error {
	return m.Called(ctx, phone, msg).Error(0)
}

func validApplication() domain.BuilderApplication {
	return domain.BuilderApplication{
		BusinessName:   "Forge Co",
		Email:          "forge@x.sg",
		Location:       "Singapore",
		Experience:     "5 years",
		Specialty:      "Water cooling",
		PortfolioLinks: "https://forge.sg/builds",
	}
}

func newService(ml *mockMailer, sms *mockSMSSender, phone string) Service {
	deps := ServiceDeps{
		Mailer:        ml,
		From:          "partners@nebulaforge.sg",
		OperatorEmail: "ops@nebulaforge.sg",
		OperatorPhone: phone,
	}
	if sms != nil {
		deps.SMSSender = sms
	}
	return NewService(deps)
}

func TestApply_MissingPortfolio_NoDelivery(t *testing.T) {
	ml := &mockMailer{}
	app := validApplication()
	app.PortfolioLinks = ""

	err := newService(ml, nil, "").Apply(context.Background(), app)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestApply_MissingBusinessNameOrEmail(t *testing.T) {
	for _, mutate := range []func(*domain.BuilderApplication){
		func(a *domain.BuilderApplication) { a.BusinessName = "" },
		func(a *domain.BuilderApplication) { a.Email = "" },
	} {
		ml := &mockMailer{}
		app := validApplication()
		mutate(&app)
		err := newService(ml, nil, "").Apply(context.Background(), app)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	}
}

// The applicant address becomes the Reply-To header, so it must parse.
func TestApply_MalformedEmail_NoDelivery(t *testing.T) {
	ml := &mockMailer{}
	app := validApplication()
	app.Email = "not-an-address"

	err := newService(ml, nil, "").Apply(context.Background(), app)
	assert.ErrorIs(t, err, domain.ErrValidation)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestApply_HappyPath_MailsOperator(t *testing.T) {
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.MatchedBy(func(m smtp.Message) bool {
		return m.To == "ops@nebulaforge.sg" &&
			m.From == "partners@nebulaforge.sg" &&
			m.ReplyTo == "forge@x.sg" &&
			m.Subject == "New Builder Application: Forge Co" &&
			strings.Contains(m.HTMLBody, "Water cooling") &&
			strings.Contains(m.HTMLBody, "N/A")
	})).Return(nil)

	require.NoError(t, newService(ml, nil, "").Apply(context.Background(), validApplication()))
	ml.AssertExpectations(t)
}

func TestApply_DeliveryFailure(t *testing.T) {
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("relay down"))
	sms := &mockSMSSender{}

	err := newService(ml, sms, "+6590000000").Apply(context.Background(), validApplication())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDelivery))
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestApply_SMSAlertFailureIsNotFatal(t *testing.T) {
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything).Return(nil)
	sms := &mockSMSSender{}
	sms.On("SendSMS", mock.Anything, "+6590000000", mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "Forge Co")
	})).Return(errors.New("sns throttled"))

	require.NoError(t, newService(ml, sms, "+6590000000").Apply(context.Background(), validApplication()))
	sms.AssertExpectations(t)
}

func TestApply_NoPhone_SkipsSMS(t *testing.T) {
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything).Return(nil)
	sms := &mockSMSSender{}

	require.NoError(t, newService(ml, sms, "").Apply(context.Background(), validApplication()))
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}
