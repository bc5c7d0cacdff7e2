package insight

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type DemandLevel string

const (
	DemandLow    DemandLevel = "LOW"
	DemandMedium DemandLevel = "MEDIUM"
	DemandHigh   DemandLevel = "HIGH"
)

type MarketOutlook string

const (
	OutlookNegative MarketOutlook = "NEGATIVE"
	OutlookNeutral  MarketOutlook = "NEUTRAL"
	OutlookPositive MarketOutlook = "POSITIVE"
)

// RefreshInterval is the default distance between creation and NextUpdated.
const RefreshInterval = 7 * 24 * time.Hour

type SalaryRange struct {
	Role     string  `json:"role"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Location string  `json:"location"`
}

type IndustryInsight struct {
	ID                uuid.UUID     `json:"id"`
	Industry          string        `json:"industry"`
	SalaryRanges      []SalaryRange `json:"salary_ranges"`
	GrowthRate        float64       `json:"growth_rate"`
	DemandLevel       DemandLevel   `json:"demand_level"`
	TopSkills         []string      `json:"top_skills"`
	MarketOutlook     MarketOutlook `json:"market_outlook"`
	KeyTrends         []string      `json:"key_trends"`
	RecommendedSkills []string      `json:"recommended_skills"`
	LastUpdated       time.Time     `json:"last_updated"`
	NextUpdated       time.Time     `json:"next_updated"`
}

// Generated is the structured result of the AI generator. Every field may be
// missing; Normalize fills the gaps.
type Generated struct {
	SalaryRanges      []SalaryRange `json:"salaryRanges"`
	GrowthRate        *float64      `json:"growthRate"`
	DemandLevel       string        `json:"demandLevel"`
	TopSkills         []string      `json:"topSkills"`
	MarketOutlook     string        `json:"marketOutlook"`
	KeyTrends         []string      `json:"keyTrends"`
	RecommendedSkills []string      `json:"recommendedSkills"`
}

var ErrInsightNotFound = errors.New("industry insight not found")

func ParseDemandLevel(s string) DemandLevel {
	switch d := DemandLevel(strings.ToUpper(strings.TrimSpace(s))); d {
	case DemandLow, DemandMedium, DemandHigh:
		return d
	default:
		return DemandMedium
	}
}

func ParseMarketOutlook(s string) MarketOutlook {
	switch o := MarketOutlook(strings.ToUpper(strings.TrimSpace(s))); o {
	case OutlookNegative, OutlookNeutral, OutlookPositive:
		return o
	default:
		return OutlookNeutral
	}
}

// Normalize turns g into a storable insight for industry. A nil g yields
// the minimal default record.
func (g *Generated) Normalize(industry string, now time.Time, refresh time.Duration) *IndustryInsight {
	in := Default(industry, now, refresh)
	if g == nil {
		return in
	}
	if g.SalaryRanges != nil {
		in.SalaryRanges = g.SalaryRanges
	}
	if g.GrowthRate != nil {
		in.GrowthRate = *g.GrowthRate
	}
	in.DemandLevel = ParseDemandLevel(g.DemandLevel)
	in.MarketOutlook = ParseMarketOutlook(g.MarketOutlook)
	if g.TopSkills != nil {
		in.TopSkills = g.TopSkills
	}
	if g.KeyTrends != nil {
		in.KeyTrends = g.KeyTrends
	}
	if g.RecommendedSkills != nil {
		in.RecommendedSkills = g.RecommendedSkills
	}
	return in
}

// Default is the minimal record stored when generation is unavailable.
func Default(industry string, now time.Time, refresh time.Duration) *IndustryInsight {
	if refresh <= 0 {
		refresh = RefreshInterval
	}
	return &IndustryInsight{
		ID:                uuid.New(),
		Industry:          industry,
		SalaryRanges:      []SalaryRange{},
		GrowthRate:        0,
		DemandLevel:       DemandMedium,
		TopSkills:         []string{},
		MarketOutlook:     OutlookNeutral,
		KeyTrends:         []string{},
		RecommendedSkills: []string{},
		LastUpdated:       now,
		NextUpdated:       now.Add(refresh),
	}
}

type Repository interface {
	FindByIndustry(ctx context.Context, industry string) (*IndustryInsight, error)
	// Create stores in unless the industry already exists; the stored row is
	// returned in both cases.
	Create(ctx context.Context, in *IndustryInsight) (*IndustryInsight, error)
}
