package onboarding

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/career-onboard/internal/application/service"
	insightUC "github.com/khoahotran/career-onboard/internal/application/usecase/insight"
	userUC "github.com/khoahotran/career-onboard/internal/application/usecase/user"
	"github.com/khoahotran/career-onboard/internal/domain/profile"
	"github.com/khoahotran/career-onboard/internal/domain/user"
	"github.com/khoahotran/career-onboard/internal/metrics"
	"github.com/khoahotran/career-onboard/pkg/apperror"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

// DefaultTxTimeout bounds insight provisioning plus the user update,
// including the LLM call made while the transaction is open.
const DefaultTxTimeout = 15 * time.Second

var tracer = otel.Tracer("onboarding_usecase")

type UpdateProfileUseCase struct {
	bootstrap   *userUC.BootstrapUseCase
	uow         service.UnitOfWork
	provisioner *insightUC.Provisioner
	invalidator service.ViewInvalidator
	refresher   service.HomeViewRefresher
	events      service.EventPublisher
	txTimeout   time.Duration
	metrics     *metrics.Metrics
	logger      logger.Logger
}

func NewUpdateProfileUseCase(
	bootstrap *userUC.BootstrapUseCase,
	uow service.UnitOfWork,
	provisioner *insightUC.Provisioner,
	invalidator service.ViewInvalidator,
	refresher service.HomeViewRefresher,
	events service.EventPublisher,
	txTimeout time.Duration,
	m *metrics.Metrics,
	log logger.Logger,
) *UpdateProfileUseCase {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &UpdateProfileUseCase{
		bootstrap:   bootstrap,
		uow:         uow,
		provisioner: provisioner,
		invalidator: invalidator,
		refresher:   refresher,
		events:      events,
		txTimeout:   txTimeout,
		metrics:     m,
		logger:      log,
	}
}

type UpdateProfileInput struct {
	Identity *user.Identity
	Raw      profile.RawUpdate
}

type UpdateProfileOutput struct {
	User    *user.User
	Success bool
}

// Execute resolves (or creates) the caller's user and applies the profile
// update. Failures after the user is resolved are reported only as
// apperror.ErrProfileUpdateFailed.
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, input UpdateProfileInput) (*UpdateProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "UpdateProfile")
	defer span.End()

	if input.Identity == nil || input.Identity.ExternalID == "" {
		return nil, apperror.NewUnauthorized("no authenticated identity", nil)
	}

	u, err := uc.bootstrap.ResolveOrCreate(ctx, input.Identity, userUC.PolicyStrict)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("user_id", u.ID.String()))

	return uc.updateProfile(ctx, u.ID, input.Raw)
}

func (uc *UpdateProfileUseCase) updateProfile(ctx context.Context, userID uuid.UUID, raw profile.RawUpdate) (*UpdateProfileOutput, error) {
	l := uc.logger.With(zap.String("user_id", userID.String()))

	upd, err := profile.Normalize(raw)
	if err != nil {
		l.Error("Invalid profile update payload", err)
		return nil, uc.fail()
	}

	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	var updated *user.User
	err = uc.uow.Do(txCtx, func(ctx context.Context, s service.Stores) error {
		if _, err := uc.provisioner.EnsureInsight(ctx, s.Insights, upd.Industry); err != nil {
			return err
		}
		var err error
		updated, err = s.Users.UpdateProfile(ctx, userID, upd)
		return err
	})
	if err != nil {
		l.Error("Error updating user and industry", err, zap.String("industry", upd.Industry))
		return nil, uc.fail()
	}

	uc.refreshHomeView(ctx, l, updated.ExternalID)
	uc.publish(service.ProfileEventPayload{
		EventType:  service.ProfileEventProfileUpdated,
		UserID:     updated.ID,
		ExternalID: updated.ExternalID,
		Industry:   upd.Industry,
	})

	uc.count("success")
	l.Info("Profile updated", zap.String("industry", upd.Industry))
	return &UpdateProfileOutput{User: updated, Success: true}, nil
}

// refreshHomeView drops the cached "/" view and writes a fresh one built
// from the committed row, so a concurrent reader filling the cache with an
// older view cannot outlive the update.
func (uc *UpdateProfileUseCase) refreshHomeView(ctx context.Context, l logger.Logger, externalID string) {
	if uc.invalidator != nil {
		if err := uc.invalidator.Invalidate(ctx, service.HomePath, externalID); err != nil {
			l.Warn("Failed to invalidate home view", zap.Error(err))
		}
	}
	if uc.refresher != nil {
		if err := uc.refresher.WarmHomeView(ctx, externalID); err != nil {
			l.Warn("Failed to refresh home view", zap.Error(err))
		}
	}
}

func (uc *UpdateProfileUseCase) fail() error {
	uc.count("failure")
	return apperror.ErrProfileUpdateFailed
}

func (uc *UpdateProfileUseCase) count(result string) {
	if uc.metrics != nil {
		uc.metrics.ProfileUpdatesTotal.WithLabelValues(result).Inc()
	}
}

func (uc *UpdateProfileUseCase) publish(payload service.ProfileEventPayload) {
	if uc.events == nil {
		return
	}
	go func() {
		if err := uc.events.PublishProfileEvent(context.Background(), payload); err != nil {
			uc.logger.Error("Failed to publish profile event", err,
				zap.String("event_type", string(payload.EventType)),
				zap.String("user_id", payload.UserID.String()),
			)
		}
	}()
}
