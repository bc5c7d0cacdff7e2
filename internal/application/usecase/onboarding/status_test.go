package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/career-onboard/internal/domain/user"
	"github.com/khoahotran/career-onboard/internal/metrics"
	"github.com/khoahotran/career-onboard/internal/testutil"
	"github.com/khoahotran/career-onboard/pkg/apperror"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

func TestGetOnboardingStatus(t *testing.T) {
	industry := "tech-software"
	empty := ""

	tests := []struct {
		name   string
		seed   *user.User
		lookup error
		want   bool
	}{
		{name: "no local user", want: false},
		{name: "user without industry", seed: &user.User{ExternalID: "idp_1"}, want: false},
		{name: "user with empty industry", seed: &user.User{ExternalID: "idp_1", Industry: &empty}, want: false},
		{name: "user with industry", seed: &user.User{ExternalID: "idp_1", Industry: &industry}, want: true},
		{name: "lookup failure", seed: &user.User{ExternalID: "idp_1", Industry: &industry}, lookup: errors.New("db down"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMemoryStore()
			if tt.seed != nil {
				store.AddUser(tt.seed)
			}
			store.FailLookups = tt.lookup
			uc := NewGetOnboardingStatusUseCase(store.Users(), metrics.New(), logger.NewNop())

			status, err := uc.Execute(context.Background(), &user.Identity{ExternalID: "idp_1", Email: "a@b.c"})

			require.NoError(t, err)
			assert.Equal(t, tt.want, status.IsOnboarded)
			if tt.seed == nil {
				assert.Zero(t, store.UserCount(), "status checks never create users")
			}
		})
	}
}

func TestGetOnboardingStatus_RequiresIdentity(t *testing.T) {
	uc := NewGetOnboardingStatusUseCase(testutil.NewMemoryStore().Users(), nil, logger.NewNop())

	_, err := uc.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = uc.Execute(context.Background(), &user.Identity{})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
