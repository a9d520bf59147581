package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nebula-forge-api/internal/domain"
	"github.com/nebula-forge-api/internal/infrastructure/smtp"
	"github.com/nebula-forge-api/internal/infrastructure/sns"
	"github.com/nebula-forge-api/internal/pkg/mailtmpl"
	"github.com/nebula-forge-api/internal/pkg/validate"
)

type Service interface {
	Apply(ctx context.Context, app domain.BuilderApplication) error
}

type service struct {
	mailer        smtp.Mailer
	smsSender     sns.SMSSender
	from          string
	operatorEmail string
	operatorPhone string
}

type ServiceDeps struct {
	Mailer        smtp.Mailer
	SMSSender     sns.SMSSender // optional
	From          string
	OperatorEmail string
	OperatorPhone string // optional; SMS alerts are skipped when empty
}

func NewService(deps ServiceDeps) Service {
	return &service{
		mailer:        deps.Mailer,
		smsSender:     deps.SMSSender,
		from:          deps.From,
		operatorEmail: deps.OperatorEmail,
		operatorPhone: deps.OperatorPhone,
	}
}

// Apply forwards the application to the operator. Nothing is stored.
func (s *service) Apply(ctx context.Context, app domain.BuilderApplication) error {
	if err := validate.Struct(app); err != nil {
		return fmt.Errorf("missing required fields: %w", err)
	}
	body, err := mailtmpl.BuilderApplication(app)
	if err != nil {
		return err
	}
	err = s.mailer.SendEmail(ctx, smtp.Message{
		From:     s.from,
		To:       s.operatorEmail,
		ReplyTo:  app.Email,
		Subject:  "New Builder Application: " + app.BusinessName,
		HTMLBody: body,
	})
	if err != nil {
		slog.Error("builder application email failed", "business", app.BusinessName, "err", err)
		return fmt.Errorf("send builder application: %w", errors.Join(domain.ErrDelivery, err))
	}
	slog.Info("builder application sent to operator", "business", app.BusinessName)

	if s.smsSender != nil && s.operatorPhone != "" {
		msg := fmt.Sprintf("Nebula Forge: new builder application from %s (%s)", app.BusinessName, app.Email)
		if err := s.smsSender.SendSMS(ctx, s.operatorPhone, msg); err != nil {
			slog.Warn("operator SMS alert failed", "err", err)
		}
	}
	return nil
}
