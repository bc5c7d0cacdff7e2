package insight

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/career-onboard/internal/application/service"
	"github.com/khoahotran/career-onboard/internal/domain/insight"
	"github.com/khoahotran/career-onboard/pkg/apperror"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

//go:embed prompts/industry_insights.md
var industryInsightsPromptRaw string

var industryInsightsTemplate = template.Must(template.New("industry_insights").Parse(industryInsightsPromptRaw))

var tracer = otel.Tracer("insight_usecase")

// GenerateInsightsUseCase asks the LLM for industry data and decodes its
// JSON answer.
type GenerateInsightsUseCase struct {
	llm    service.LLMService
	logger logger.Logger
}

var _ service.InsightGenerator = (*GenerateInsightsUseCase)(nil)

func NewGenerateInsightsUseCase(llm service.LLMService, log logger.Logger) *GenerateInsightsUseCase {
	return &GenerateInsightsUseCase{llm: llm, logger: log}
}

func (uc *GenerateInsightsUseCase) GenerateInsights(ctx context.Context, industry string) (*insight.Generated, error) {
	ctx, span := tracer.Start(ctx, "GenerateInsights")
	defer span.End()
	span.SetAttributes(attribute.String("industry", industry))

	var prompt bytes.Buffer
	if err := industryInsightsTemplate.Execute(&prompt, struct{ Industry string }{industry}); err != nil {
		return nil, apperror.NewGeneration("failed to render prompt", err)
	}

	text, err := uc.llm.GenerateChatResponse(ctx, prompt.String())
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewGeneration("llm request failed", err)
	}

	generated, err := DecodeGenerated(text)
	if err != nil {
		uc.logger.Warn("LLM returned malformed insight JSON", zap.String("industry", industry), zap.Error(err))
		span.RecordError(err)
		return nil, apperror.NewGeneration("malformed llm response", err)
	}
	return generated, nil
}

// DecodeGenerated parses an LLM answer, tolerating a surrounding Markdown
// code fence.
func DecodeGenerated(text string) (*insight.Generated, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var g insight.Generated
	if err := json.Unmarshal([]byte(cleaned), &g); err != nil {
		return nil, err
	}
	return &g, nil
}
