package domain

import "time"

// UserIdentity is the account minted by a successful email verification.
// It is returned to the caller and never stored by this service.
type UserIdentity struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsFirstTime  bool      `json:"isFirstTime"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// NewUserIdentity builds a first-time account with the default role.
// id must be unique and time-ordered; see pkg/id.NewAt.
func NewUserIdentity(id, name, email, passwordHash string, createdAt time.Time) *UserIdentity {
	return &UserIdentity{
		ID:           id,
		Name:         name,
		Email:        email,
		Role:         RoleUser,
		IsFirstTime:  true,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt.UTC(),
	}
}
