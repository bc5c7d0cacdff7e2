package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/career-onboard/internal/domain/profile"
)

type User struct {
	ID                  uuid.UUID `json:"id"`
	ExternalID          string    `json:"external_id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	ImageURL            string    `json:"image_url"`
	Industry            *string   `json:"industry"`
	Experience          int       `json:"experience"`
	Bio                 string    `json:"bio"`
	Skills              []string  `json:"skills"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Identity is the authenticated principal as issued by the identity
// provider, together with the profile claims it carries.
type Identity struct {
	ExternalID string
	FirstName  string
	LastName   string
	Email      string
	ImageURL   string
}

func (i *Identity) DisplayName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

var ErrUserNotFound = errors.New("user not found")

// NewFromIdentity builds a not-yet-onboarded user from identity claims.
func NewFromIdentity(id *Identity, now time.Time) *User {
	return &User{
		ID:         uuid.New(),
		ExternalID: id.ExternalID,
		Name:       id.DisplayName(),
		Email:      id.Email,
		ImageURL:   id.ImageURL,
		Skills:     []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (u *User) IsOnboarded() bool {
	return u.Industry != nil && *u.Industry != ""
}

type Repository interface {
	FindByExternalID(ctx context.Context, externalID string) (*User, error)
	// FindIndustryByExternalID reads only the industry column.
	FindIndustryByExternalID(ctx context.Context, externalID string) (*string, error)
	// Create inserts u unless a row with the same external id exists; either
	// way the stored row is returned.
	Create(ctx context.Context, u *User) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd profile.Update) (*User, error)
}
