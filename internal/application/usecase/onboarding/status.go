package onboarding

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/khoahotran/career-onboard/internal/domain/user"
	"github.com/khoahotran/career-onboard/internal/metrics"
	"github.com/khoahotran/career-onboard/pkg/apperror"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

type GetOnboardingStatusUseCase struct {
	userRepo user.Repository
	metrics  *metrics.Metrics
	logger   logger.Logger
}

func NewGetOnboardingStatusUseCase(repo user.Repository, m *metrics.Metrics, log logger.Logger) *GetOnboardingStatusUseCase {
	return &GetOnboardingStatusUseCase{userRepo: repo, metrics: m, logger: log}
}

type OnboardingStatus struct {
	IsOnboarded bool `json:"isOnboarded"`
}

// Execute never creates a user. Lookup failures degrade to "not onboarded";
// only a missing identity is an error.
func (uc *GetOnboardingStatusUseCase) Execute(ctx context.Context, identity *user.Identity) (*OnboardingStatus, error) {
	ctx, span := tracer.Start(ctx, "GetOnboardingStatus")
	defer span.End()

	if identity == nil || identity.ExternalID == "" {
		return nil, apperror.NewUnauthorized("no authenticated identity", nil)
	}
	l := uc.logger.With(zap.String("external_id", identity.ExternalID))

	industry, err := uc.userRepo.FindIndustryByExternalID(ctx, identity.ExternalID)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		l.Info("User not found in database, reporting not onboarded")
		uc.count("not_onboarded")
		return &OnboardingStatus{IsOnboarded: false}, nil
	case err != nil:
		span.RecordError(err)
		l.Error("Error checking onboarding status", err)
		uc.count("error")
		return &OnboardingStatus{IsOnboarded: false}, nil
	}

	onboarded := industry != nil && *industry != ""
	if onboarded {
		uc.count("onboarded")
	} else {
		uc.count("not_onboarded")
	}
	return &OnboardingStatus{IsOnboarded: onboarded}, nil
}

func (uc *GetOnboardingStatusUseCase) count(result string) {
	if uc.metrics != nil {
		uc.metrics.StatusChecksTotal.WithLabelValues(result).Inc()
	}
}
