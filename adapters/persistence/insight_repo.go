package persistence

import (
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/khoahotran/career-onboard/internal/domain/insight"
	"github.com/khoahotran/career-onboard/pkg/apperror"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

var insightColumns = []string{
	"id", "industry", "salary_ranges", "growth_rate", "demand_level::text",
	"top_skills", "market_outlook::text", "key_trends", "recommended_skills",
	"last_updated", "next_updated",
}

type postgresInsightRepo struct {
	db     DBTX
	logger logger.Logger
}

func NewPostgresInsightRepo(db DBTX, logger logger.Logger) insight.Repository {
	return &postgresInsightRepo{db: db, logger: logger}
}

func (r *postgresInsightRepo) scanInsight(row pgx.Row) (*insight.IndustryInsight, error) {
	in := &insight.IndustryInsight{}
	var salaryBytes []byte
	var demand, outlook string

	err := row.Scan(
		&in.ID,
		&in.Industry,
		&salaryBytes,
		&in.GrowthRate,
		&demand,
		&in.TopSkills,
		&outlook,
		&in.KeyTrends,
		&in.RecommendedSkills,
		&in.LastUpdated,
		&in.NextUpdated,
	)
	if err != nil {
		return nil, err
	}

	in.DemandLevel = insight.DemandLevel(demand)
	in.MarketOutlook = insight.MarketOutlook(outlook)
	in.TopSkills = nonNil(in.TopSkills)
	in.KeyTrends = nonNil(in.KeyTrends)
	in.RecommendedSkills = nonNil(in.RecommendedSkills)

	if err := json.Unmarshal(salaryBytes, &in.SalaryRanges); err != nil {
		r.logger.Warn("Failed to unmarshal salary_ranges", zap.String("industry", in.Industry), zap.Error(err))
		in.SalaryRanges = []insight.SalaryRange{}
	}
	return in, nil
}

func (r *postgresInsightRepo) FindByIndustry(ctx context.Context, industry string) (*insight.IndustryInsight, error) {
	query, args, err := psql.Select(insightColumns...).
		From("industry_insights").
		Where(sq.Eq{"industry": industry}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build insight query", err)
	}

	in, err := r.scanInsight(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, insight.ErrInsightNotFound
		}
		return nil, apperror.NewInternal("failed to query industry insight", err)
	}
	return in, nil
}

func (r *postgresInsightRepo) Create(ctx context.Context, in *insight.IndustryInsight) (*insight.IndustryInsight, error) {
	salaryBytes, err := json.Marshal(nonNil(in.SalaryRanges))
	if err != nil {
		return nil, apperror.NewInternal("failed to marshal salary_ranges", err)
	}

	query, args, err := psql.Insert("industry_insights").
		Columns(
			"id", "industry", "salary_ranges", "growth_rate", "demand_level", "top_skills",
			"market_outlook", "key_trends", "recommended_skills", "last_updated", "next_updated",
		).
		Values(
			in.ID,
			in.Industry,
			salaryBytes,
			in.GrowthRate,
			sq.Expr("?::demand_level", string(in.DemandLevel)),
			nonNil(in.TopSkills),
			sq.Expr("?::market_outlook", string(in.MarketOutlook)),
			nonNil(in.KeyTrends),
			nonNil(in.RecommendedSkills),
			in.LastUpdated,
			in.NextUpdated,
		).
		Suffix("ON CONFLICT (industry) DO NOTHING RETURNING " + joinColumns(insightColumns)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build insight insert", err)
	}

	created, err := r.scanInsight(r.db.QueryRow(ctx, query, args...))
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, translatePgError("failed to insert industry insight", err)
	}

	// A concurrent transaction provisioned the same industry and committed
	// first; the existing row wins.
	r.logger.Info("Industry insight already provisioned concurrently", zap.String("industry", in.Industry))
	return r.FindByIndustry(ctx, in.Industry)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
