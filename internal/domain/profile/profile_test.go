package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalize_RequiresIndustry(t *testing.T) {
	_, err := Normalize(RawUpdate{Skills: "go"})
	assert.ErrorIs(t, err, ErrIndustryRequired)
}

func TestNormalize_IndustryKeptVerbatim(t *testing.T) {
	for _, industry := range []string{"   ", " Tech ", "tech-software"} {
		upd, err := Normalize(RawUpdate{Industry: industry})
		require.NoError(t, err, "industry %q", industry)
		assert.Equal(t, industry, upd.Industry)
	}
}

func TestNormalize_Skills(t *testing.T) {
	tests := []struct {
		name   string
		skills any
		want   []string
	}{
		{"comma separated string", "a, b ,c", []string{"a", "b", "c"}},
		{"empty pieces dropped", "go,, sql ,", []string{"go", "sql"}},
		{"empty string", "", []string{}},
		{"string slice unchanged", []string{"x", "y"}, []string{"x", "y"}},
		{"decoded json array unchanged", []any{"x", " y"}, []string{"x", " y"}},
		{"duplicates kept in order", []any{"go", "go"}, []string{"go", "go"}},
		{"absent", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upd, err := Normalize(RawUpdate{Industry: "tech", Skills: tt.skills})
			require.NoError(t, err)
			assert.Equal(t, tt.want, upd.Skills)
		})
	}
}

func TestNormalize_SkillsRejectsNonStrings(t *testing.T) {
	_, err := Normalize(RawUpdate{Industry: "tech", Skills: []any{"go", 3.0}})
	assert.ErrorIs(t, err, ErrInvalidSkills)

	_, err = Normalize(RawUpdate{Industry: "tech", Skills: 42.0})
	assert.ErrorIs(t, err, ErrInvalidSkills)
}

func TestNormalize_Experience(t *testing.T) {
	tests := []struct {
		name       string
		experience any
		want       int
	}{
		{"numeric string", "5", 5},
		{"leading integer", "7 years", 7},
		{"padded", "  12", 12},
		{"non numeric string", "abc", 0},
		{"empty string", "", 0},
		{"absent", nil, 0},
		{"json number", 3.0, 3},
		{"fraction truncated", 5.9, 5},
		{"int", 4, 4},
		{"zero", 0.0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upd, err := Normalize(RawUpdate{Industry: "tech", Experience: tt.experience})
			require.NoError(t, err)
			assert.Equal(t, tt.want, upd.Experience)
		})
	}
}

func TestNormalize_NegativeExperience(t *testing.T) {
	_, err := Normalize(RawUpdate{Industry: "tech", Experience: "-2"})
	assert.ErrorIs(t, err, ErrNegativeExperience)
}

func TestNormalize_Bio(t *testing.T) {
	upd, err := Normalize(RawUpdate{Industry: "tech"})
	require.NoError(t, err)
	assert.Equal(t, "", upd.Bio)

	upd, err = Normalize(RawUpdate{Industry: "tech", Bio: strPtr("hello")})
	require.NoError(t, err)
	assert.Equal(t, "hello", upd.Bio)
}

func TestNormalize_FromJSON(t *testing.T) {
	body := `{"industry":"tech-software","skills":"Go, Postgres","experience":"3","bio":"backend dev"}`
	var raw RawUpdate
	require.NoError(t, json.Unmarshal([]byte(body), &raw))

	upd, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, Update{
		Industry:   "tech-software",
		Skills:     []string{"Go", "Postgres"},
		Experience: 3,
		Bio:        "backend dev",
	}, upd)

	var numeric RawUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"industry":"x","skills":["a"],"experience":8}`), &numeric))
	upd, err = Normalize(numeric)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, upd.Skills)
	assert.Equal(t, 8, upd.Experience)
}

func TestParseLeadingInt(t *testing.T) {
	assert.Equal(t, 42, ParseLeadingInt("42"))
	assert.Equal(t, 42, ParseLeadingInt("+42abc"))
	assert.Equal(t, -1, ParseLeadingInt("-1"))
	assert.Equal(t, 0, ParseLeadingInt("-"))
	assert.Equal(t, 0, ParseLeadingInt("x1"))
	assert.Equal(t, 0, ParseLeadingInt("99999999999999999999999"))
}
