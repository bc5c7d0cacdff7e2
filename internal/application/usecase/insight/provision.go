package insight

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/career-onboard/internal/application/service"
	"github.com/khoahotran/career-onboard/internal/domain/insight"
	"github.com/khoahotran/career-onboard/internal/metrics"
	"github.com/khoahotran/career-onboard/pkg/apperror"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

// Provisioner returns the insight for an industry, creating it on first use.
// It must run inside the caller's transaction: the repository passed to
// EnsureInsight is expected to be bound to it.
type Provisioner struct {
	generator service.InsightGenerator
	refresh   time.Duration
	metrics   *metrics.Metrics
	logger    logger.Logger
	now       func() time.Time
}

func NewProvisioner(gen service.InsightGenerator, refresh time.Duration, m *metrics.Metrics, log logger.Logger) *Provisioner {
	if refresh <= 0 {
		refresh = insight.RefreshInterval
	}
	return &Provisioner{
		generator: gen,
		refresh:   refresh,
		metrics:   m,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (p *Provisioner) EnsureInsight(ctx context.Context, repo insight.Repository, industry string) (*insight.IndustryInsight, error) {
	ctx, span := tracer.Start(ctx, "EnsureInsight")
	defer span.End()
	span.SetAttributes(attribute.String("industry", industry))

	l := p.logger.With(zap.String("industry", industry))

	existing, err := repo.FindByIndustry(ctx, industry)
	if err == nil {
		p.count("existing")
		return existing, nil
	}
	if !errors.Is(err, insight.ErrInsightNotFound) {
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to look up industry insight", err)
	}

	source := "generated"
	generated, genErr := p.generator.GenerateInsights(ctx, industry)
	if genErr != nil {
		l.Error("Error generating industry insights, storing defaults", genErr)
		source = "fallback"
		generated = nil
	}

	candidate := generated.Normalize(industry, p.now(), p.refresh)
	stored, err := repo.Create(ctx, candidate)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	p.count(source)
	l.Info("Industry insight provisioned", zap.String("source", source), zap.Time("next_updated", stored.NextUpdated))
	return stored, nil
}

func (p *Provisioner) count(source string) {
	if p.metrics != nil {
		p.metrics.InsightsProvisionedTotal.WithLabelValues(source).Inc()
	}
}
