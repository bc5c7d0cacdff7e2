package user

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/career-onboard/internal/application/service"
	"github.com/khoahotran/career-onboard/internal/domain/user"
	"github.com/khoahotran/career-onboard/pkg/apperror"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

// Policy decides how ResolveOrCreate reports failures.
type Policy int

const (
	// PolicyStrict returns every failure to the caller. Write paths use it.
	PolicyStrict Policy = iota
	// PolicyLenient logs failures and reports "no user" instead, so read
	// paths never break on a missing or unusable identity.
	PolicyLenient
)

var tracer = otel.Tracer("user_usecase")

type BootstrapUseCase struct {
	userRepo user.Repository
	events   service.EventPublisher
	logger   logger.Logger
	now      func() time.Time
}

func NewBootstrapUseCase(repo user.Repository, events service.EventPublisher, log logger.Logger) *BootstrapUseCase {
	return &BootstrapUseCase{
		userRepo: repo,
		events:   events,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ResolveOrCreate returns the local user for identity, creating it from the
// identity claims on first contact. Under PolicyLenient a nil user with a
// nil error means "no user".
func (uc *BootstrapUseCase) ResolveOrCreate(ctx context.Context, identity *user.Identity, policy Policy) (*user.User, error) {
	ctx, span := tracer.Start(ctx, "ResolveOrCreate")
	defer span.End()

	u, err := uc.resolveOrCreate(ctx, identity)
	if err == nil {
		return u, nil
	}
	span.RecordError(err)

	if policy == PolicyLenient {
		uc.logger.Warn("Could not resolve user, continuing without one", zap.Error(err))
		return nil, nil
	}
	return nil, err
}

func (uc *BootstrapUseCase) resolveOrCreate(ctx context.Context, identity *user.Identity) (*user.User, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, apperror.NewUnauthorized("no authenticated identity", nil)
	}

	existing, err := uc.userRepo.FindByExternalID(ctx, identity.ExternalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, apperror.NewInternal("failed to look up user", err)
	}

	if identity.Email == "" {
		return nil, apperror.NewIdentity("no email found for identity " + identity.ExternalID)
	}

	created, err := uc.userRepo.Create(ctx, user.NewFromIdentity(identity, uc.now()))
	if err != nil {
		return nil, apperror.NewInternal("failed to create user", err)
	}

	uc.logger.Info("User created from identity claims",
		zap.String("user_id", created.ID.String()),
		zap.String("external_id", created.ExternalID),
	)
	uc.publish(service.ProfileEventPayload{
		EventType:  service.ProfileEventUserCreated,
		UserID:     created.ID,
		ExternalID: created.ExternalID,
	})
	return created, nil
}

func (uc *BootstrapUseCase) publish(payload service.ProfileEventPayload) {
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
