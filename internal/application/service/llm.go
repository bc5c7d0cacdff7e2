package service

import (
	"context"

	"github.com/khoahotran/career-onboard/internal/domain/insight"
)

type LLMService interface {
	GenerateChatResponse(ctx context.Context, prompt string) (string, error)
}

// InsightGenerator produces labor-market data for one industry. Callers
// treat it as unreliable.
type InsightGenerator interface {
	GenerateInsights(ctx context.Context, industry string) (*insight.Generated, error)
}
