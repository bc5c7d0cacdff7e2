package http

import (
	"time"

	"github.com/khoahotran/career-onboard/internal/application/usecase/home"
	"github.com/khoahotran/career-onboard/internal/domain/insight"
	"github.com/khoahotran/career-onboard/internal/domain/user"
)

// User DTOs

type UserDTO struct {
	ID                  string    `json:"id"`
	ExternalID          string    `json:"externalId"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	ImageURL            string    `json:"imageUrl"`
	Industry            *string   `json:"industry"`
	Experience          int       `json:"experience"`
	Bio                 string    `json:"bio"`
	Skills              []string  `json:"skills"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func ToUserDTO(u *user.User) UserDTO {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	return UserDTO{
		ID:                  u.ID.String(),
		ExternalID:          u.ExternalID,
		Name:                u.Name,
		Email:               u.Email,
		ImageURL:            u.ImageURL,
		Industry:            u.Industry,
		Experience:          u.Experience,
		Bio:                 u.Bio,
		Skills:              skills,
		OnboardingCompleted: u.OnboardingCompleted,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

// UpdateProfileResponse is the updated user with the success flag merged in.
type UpdateProfileResponse struct {
	UserDTO
	Success bool `json:"success"`
}

// Insight DTOs

type SalaryRangeDTO struct {
	Role     string  `json:"role"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Location string  `json:"location"`
}

type IndustryInsightDTO struct {
	Industry          string           `json:"industry"`
	SalaryRanges      []SalaryRangeDTO `json:"salaryRanges"`
	GrowthRate        float64          `json:"growthRate"`
	DemandLevel       string           `json:"demandLevel"`
	TopSkills         []string         `json:"topSkills"`
	MarketOutlook     string           `json:"marketOutlook"`
	KeyTrends         []string         `json:"keyTrends"`
	RecommendedSkills []string         `json:"recommendedSkills"`
	LastUpdated       time.Time        `json:"lastUpdated"`
	NextUpdated       time.Time        `json:"nextUpdated"`
}

func ToIndustryInsightDTO(in *insight.IndustryInsight) IndustryInsightDTO {
	ranges := make([]SalaryRangeDTO, len(in.SalaryRanges))
	for i, r := range in.SalaryRanges {
		ranges[i] = SalaryRangeDTO(r)
	}
	return IndustryInsightDTO{
		Industry:          in.Industry,
		SalaryRanges:      ranges,
		GrowthRate:        in.GrowthRate,
		DemandLevel:       string(in.DemandLevel),
		TopSkills:         in.TopSkills,
		MarketOutlook:     string(in.MarketOutlook),
		KeyTrends:         in.KeyTrends,
		RecommendedSkills: in.RecommendedSkills,
		LastUpdated:       in.LastUpdated,
		NextUpdated:       in.NextUpdated,
	}
}

// Home DTOs

type HomeViewDTO struct {
	User        *UserDTO            `json:"user"`
	Insight     *IndustryInsightDTO `json:"insight"`
	IsOnboarded bool                `json:"isOnboarded"`
}

func ToHomeViewDTO(v *home.HomeView) HomeViewDTO {
	dto := HomeViewDTO{IsOnboarded: v.IsOnboarded}
	if v.User != nil {
		u := ToUserDTO(v.User)
		dto.User = &u
	}
	if v.Insight != nil {
		in := ToIndustryInsightDTO(v.Insight)
		dto.Insight = &in
	}
	return dto
}
