package profile

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// RawUpdate is the onboarding payload as it arrives: skills may be a comma
// separated string or a list, experience a string or a number.
type RawUpdate struct {
	Industry   string  `json:"industry"`
	Skills     any     `json:"skills"`
	Experience any     `json:"experience"`
	Bio        *string `json:"bio"`
}

// Update is the strictly typed form of RawUpdate.
type Update struct {
	Industry   string
	Skills     []string
	Experience int
	Bio        string
}

var (
	ErrIndustryRequired   = errors.New("industry is required")
	ErrInvalidSkills      = errors.New("skills must be a string or a list of strings")
	ErrNegativeExperience = errors.New("experience must not be negative")
	ErrInvalidExperience  = errors.New("experience must be a string or a number")
)

// Normalize keeps the industry exactly as given, since it is the insight
// lookup key. Only an empty industry is rejected.
func Normalize(raw RawUpdate) (Update, error) {
	if raw.Industry == "" {
		return Update{}, ErrIndustryRequired
	}

	skills, err := normalizeSkills(raw.Skills)
	if err != nil {
		return Update{}, err
	}

	experience, err := normalizeExperience(raw.Experience)
	if err != nil {
		return Update{}, err
	}

	bio := ""
	if raw.Bio != nil {
		bio = *raw.Bio
	}

	return Update{
		Industry:   raw.Industry,
		Skills:     skills,
		Experience: experience,
		Bio:        bio,
	}, nil
}

func normalizeSkills(v any) ([]string, error) {
	switch s := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		return SplitSkills(s), nil
	case []string:
		return append([]string{}, s...), nil
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: got element of type %T", ErrInvalidSkills, item)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidSkills, v)
	}
}

// SplitSkills splits a comma separated list, trims every entry and drops
// the empty ones.
func SplitSkills(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeExperience(v any) (int, error) {
	var n int
	switch e := v.(type) {
	case nil:
		return 0, nil
	case string:
		n = ParseLeadingInt(e)
	case int:
		n = e
	case int64:
		n = int(e)
	case float64:
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return 0, nil
		}
		n = int(e)
	case interface{ Int64() (int64, error) }:
		i, err := e.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidExperience, err)
		}
		n = int(i)
	default:
		return 0, fmt.Errorf("%w: got %T", ErrInvalidExperience, v)
	}
	if n < 0 {
		return 0, ErrNegativeExperience
	}
	return n, nil
}

// ParseLeadingInt parses the base-10 integer at the start of s, after
// leading whitespace and an optional sign. Input without leading digits
// yields 0.
func ParseLeadingInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// out of range
		return 0
	}
	return n
}
