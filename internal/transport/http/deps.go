package http

import (
	"github.com/nebula-forge-api/internal/application/registration"
	jwtinfra "github.com/nebula-forge-api/internal/infrastructure/jwt"
	"github.com/nebula-forge-api/internal/infrastructure/smtp"
	"github.com/nebula-forge-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	PendingStore registration.PendingStore
	Mailer       smtp.Mailer
	SMSSender    sns.SMSSender      // optional
	JWTProvider  *jwtinfra.Provider // optional; enables verify tokens and /api/me
}
