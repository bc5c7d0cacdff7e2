package home

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/career-onboard/internal/application/service"
	userUC "github.com/khoahotran/career-onboard/internal/application/usecase/user"
	"github.com/khoahotran/career-onboard/internal/domain/insight"
	"github.com/khoahotran/career-onboard/internal/domain/user"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

var tracer = otel.Tracer("home_usecase")

// HomeView is what the home page renders from. It is cached per identity
// under service.HomePath.
type HomeView struct {
	User        *user.User               `json:"user"`
	Insight     *insight.IndustryInsight `json:"insight"`
	IsOnboarded bool                     `json:"isOnboarded"`
}

type GetHomeViewUseCase struct {
	bootstrap   *userUC.BootstrapUseCase
	userRepo    user.Repository
	insightRepo insight.Repository
	cache       service.ViewCache
	logger      logger.Logger
}

func NewGetHomeViewUseCase(
	bootstrap *userUC.BootstrapUseCase,
	uRepo user.Repository,
	iRepo insight.Repository,
	cache service.ViewCache,
	log logger.Logger,
) *GetHomeViewUseCase {
	return &GetHomeViewUseCase{
		bootstrap:   bootstrap,
		userRepo:    uRepo,
		insightRepo: iRepo,
		cache:       cache,
		logger:      log,
	}
}

// Execute never fails: without a usable identity it returns an empty view.
// It creates the local user on first contact.
func (uc *GetHomeViewUseCase) Execute(ctx context.Context, identity *user.Identity) *HomeView {
	ctx, span := tracer.Start(ctx, "GetHomeView")
	defer span.End()

	if identity != nil && identity.ExternalID != "" {
		if view, ok := uc.cached(ctx, identity.ExternalID); ok {
			return view
		}
	}

	u, _ := uc.bootstrap.ResolveOrCreate(ctx, identity, userUC.PolicyLenient)
	if u == nil {
		return &HomeView{}
	}

	view := uc.build(ctx, u)
	uc.fill(ctx, u.ExternalID, view)
	return view
}

// WarmHomeView rebuilds the view for an existing user and overwrites the
// cached copy. Callers run it after committing a change to the user.
func (uc *GetHomeViewUseCase) WarmHomeView(ctx context.Context, externalID string) error {
	ctx, span := tracer.Start(ctx, "WarmHomeView")
	defer span.End()

	u, err := uc.userRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("warm home view: %w", err)
	}
	uc.store(ctx, externalID, uc.build(ctx, u))
	return nil
}

func (uc *GetHomeViewUseCase) build(ctx context.Context, u *user.User) *HomeView {
	view := &HomeView{User: u, IsOnboarded: u.IsOnboarded()}
	if !view.IsOnboarded {
		return view
	}

	in, err := uc.insightRepo.FindByIndustry(ctx, *u.Industry)
	switch {
	case err == nil:
		view.Insight = in
	case errors.Is(err, insight.ErrInsightNotFound):
	default:
		uc.logger.Warn("Failed to load industry insight for home view",
			zap.String("industry", *u.Industry), zap.Error(err))
	}
	return view
}

func (uc *GetHomeViewUseCase) cached(ctx context.Context, externalID string) (*HomeView, bool) {
	if uc.cache == nil {
		return nil, false
	}
	raw, ok, err := uc.cache.Get(ctx, service.HomePath, externalID)
	if err != nil {
		uc.logger.Warn("Home view cache read failed", zap.String("external_id", externalID), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var view HomeView
	if err := json.Unmarshal(raw, &view); err != nil {
		uc.logger.Warn("Discarding undecodable cached home view", zap.String("external_id", externalID), zap.Error(err))
		return nil, false
	}
	uc.logger.Debug("Home view served from cache", zap.String("external_id", externalID))
	return &view, true
}

func (uc *GetHomeViewUseCase) store(ctx context.Context, externalID string, view *HomeView) {
	raw, ok := uc.encode(view)
	if !ok {
		return
	}
	if err := uc.cache.Set(ctx, service.HomePath, externalID, raw); err != nil {
		uc.logger.Warn("Home view cache write failed", zap.String("external_id", externalID), zap.Error(err))
	}
}

// fill caches a view built on the read path. It never replaces a cached
// view, which may come from an update that committed after this read.
func (uc *GetHomeViewUseCase) fill(ctx context.Context, externalID string, view *HomeView) {
	raw, ok := uc.encode(view)
	if !ok {
		return
	}
	stored, err := uc.cache.SetIfAbsent(ctx, service.HomePath, externalID, raw)
	if err != nil {
		uc.logger.Warn("Home view cache write failed", zap.String("external_id", externalID), zap.Error(err))
		return
	}
	if !stored {
		uc.logger.Debug("Home view already cached, keeping it", zap.String("external_id", externalID))
	}
}

func (uc *GetHomeViewUseCase) encode(view *HomeView) ([]byte, bool) {
	if uc.cache == nil {
		return nil, false
	}
	raw, err := json.Marshal(view)
	if err != nil {
		uc.logger.Warn("Failed to encode home view", zap.Error(err))
		return nil, false
	}
	return raw, true
}
