package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nebula-forge-api/internal/domain"
	"github.com/nebula-forge-api/internal/infrastructure/smtp"
	"github.com/nebula-forge-api/internal/pkg/id"
	"github.com/nebula-forge-api/internal/pkg/mailtmpl"
	"github.com/nebula-forge-api/internal/pkg/otp"
	"github.com/nebula-forge-api/internal/pkg/password"
	"github.com/nebula-forge-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

const verificationSubject = "Your Verification Code"

// PendingStore holds pending registrations keyed by normalised email.
// Delete is compare-and-delete: it fails with domain.ErrConflict when the
// stored record no longer carries version, and domain.ErrNotFound when absent.
type PendingStore interface {
	Put(ctx context.Context, p *domain.PendingRegistration) error
	Get(ctx context.Context, email string) (*domain.PendingRegistration, error)
	Delete(ctx context.Context, email, version string) error
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

type Service interface {
	Initiate(ctx context.Context, req domain.RegisterInitRequest) error
	Verify(ctx context.Context, req domain.VerifyRequest) (*domain.UserIdentity, error)
	Resend(ctx context.Context, req domain.ResendRequest) error
}

type service struct {
	store      PendingStore
	mailer     smtp.Mailer
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time
	newCode    func() (string, error)
}

type ServiceDeps struct {
	Store  PendingStore
	Mailer smtp.Mailer
	TTL    time.Duration

	// Optional; zero values select bcrypt.DefaultCost, time.Now and otp.Generate.
	BcryptCost int
	Now        func() time.Time
	NewCode    func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:      deps.Store,
		mailer:     deps.Mailer,
		ttl:        deps.TTL,
		bcryptCost: deps.BcryptCost,
		now:        deps.Now,
		newCode:    deps.NewCode,
	}
	if s.ttl <= 0 {
		s.ttl = 10 * time.Minute
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCode == nil {
		s.newCode = otp.Generate
	}
	return s
}

func (s *service) Initiate(ctx context.Context, req domain.RegisterInitRequest) error {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("all fields are required: %w", err)
	}
	hash, err := password.Hash(req.Password, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.issue(ctx, req.Email, req.Name, hash)
}

func (s *service) Resend(ctx context.Context, req domain.ResendRequest) error {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("email is required: %w", err)
	}
	p, err := s.store.Get(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no pending registration: %w", err)
		}
		return fmt.Errorf("load pending registration: %w", err)
	}
	return s.issue(ctx, p.Email, p.Name, p.PasswordHash)
}

// issue installs a fresh code for email, replacing any pending record, and
// mails it. On delivery failure the record just written is withdrawn so no
// code exists that the user cannot learn.
func (s *service) issue(ctx context.Context, email, name, passwordHash string) error {
	code, err := s.newCode()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	p := &domain.PendingRegistration{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Code:         code,
		Version:      id.NewAt(now),
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.store.Put(ctx, p); err != nil {
		return fmt.Errorf("store pending registration: %w", err)
	}

	body, err := mailtmpl.VerificationCode(name, code, s.ttl)
	if err == nil {
		err = s.mailer.SendEmail(ctx, smtp.Message{To: email, Subject: verificationSubject, HTMLBody: body})
	}
	if err != nil {
		slog.Error("verification email failed", "email", email, "err", err)
		if derr := s.store.Delete(ctx, email, p.Version); derr != nil && !errors.Is(derr, domain.ErrConflict) {
			slog.Warn("failed to withdraw pending registration", "email", email, "err", derr)
		}
		return fmt.Errorf("send verification email: %w", errors.Join(domain.ErrDelivery, err))
	}
	slog.Info("verification code sent", "email", email)
	return nil
}

func (s *service) Verify(ctx context.Context, req domain.VerifyRequest) (*domain.UserIdentity, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("email and code are required: %w", err)
	}
	p, err := s.store.Get(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no pending registration: %w", err)
		}
		return nil, fmt.Errorf("load pending registration: %w", err)
	}

	now := s.now()
	if p.IsExpired(now) {
		if err := s.store.Delete(ctx, p.Email, p.Version); err != nil && !errors.Is(err, domain.ErrConflict) && !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("failed to purge expired pending registration", "email", p.Email, "err", err)
		}
		return nil, fmt.Errorf("code expired: %w", domain.ErrExpired)
	}
	if !otp.Equal(p.Code, req.Code) {
		return nil, fmt.Errorf("invalid code: %w", domain.ErrMismatch)
	}

	// Consume exactly the version that was checked. A concurrent re-initiate
	// means the code just matched belongs to a superseded record.
	if err := s.store.Delete(ctx, p.Email, p.Version); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, fmt.Errorf("code superseded: %w", domain.ErrMismatch)
		case errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("no pending registration: %w", err)
		default:
			return nil, fmt.Errorf("consume pending registration: %w", err)
		}
	}

	u := domain.NewUserIdentity(id.NewAt(now), p.Name, p.Email, p.PasswordHash, now)
	slog.Info("email verified", "email", p.Email, "user_id", u.ID)
	return u, nil
}
