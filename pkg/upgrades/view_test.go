package upgrades

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func sample() []Upgrade {
	return []Upgrade{
		{Project: "Lido", Headline: "Withdrawals enabled", Reasoning: "Shapella activated", Timestamp: "2024-03-01T10:00:00Z", Confidence: 0.97,
			AffectedSubtypes: []SubtypeImpact{{SubtypeCode: "STETH", Confidence: f(0.5)}, {SubtypeCode: "WSTETH", Confidence: f(0.1)}}},
		{Project: "Circle", Headline: "CCTP v2", Timestamp: "2024-01-15T00:00:00Z", Confidence: 0.45},
		{Project: "lido", Headline: "Oracle change", Reasoning: "new committee", Timestamp: "2024-02-01T00:00:00Z", Confidence: 0.72,
			AffectedSubtypes: []SubtypeImpact{{SubtypeCode: "STETH"}}},
		{Project: "Aave", Headline: "No date", Confidence: 0.25},
		{Project: "Aave", Headline: "Bad date", Timestamp: "not a date", Confidence: 0.1},
	}
}

func headlines(view []Upgrade) []string {
	out := make([]string, len(view))
	for i, u := range view {
		out[i] = u.Headline
	}
	return out
}

func TestBuildViewExampleOrdering(t *testing.T) {
	in := []Upgrade{
		{Project: "Foo", Headline: "A", Timestamp: "2024-01-01T00:00:00Z", Confidence: 0.96},
		{Project: "Bar", Headline: "B", Timestamp: "2024-02-01T00:00:00Z", Confidence: 0.5},
	}
	view := BuildView(in, FilterState{Project: "all"})
	assert.Equal(t, []string{"B", "A"}, headlines(view))
}

func TestBuildViewSortsUndatedLast(t *testing.T) {
	view := BuildView(sample(), DefaultFilterState())
	assert.Equal(t, []string{"Withdrawals enabled", "Oracle change", "CCTP v2", "No date", "Bad date"}, headlines(view))
}

func TestBuildViewDoesNotMutateInput(t *testing.T) {
	in := sample()
	before := headlines(in)
	_ = BuildView(in, DefaultFilterState())
	assert.Equal(t, before, headlines(in))
}

func TestBuildViewIdempotent(t *testing.T) {
	in := sample()
	state := FilterState{Project: "lido", Query: "e"}
	first := BuildView(in, state)
	second := BuildView(in, state)
	assert.Equal(t, first, second)
}

func TestBuildViewProjectFilter(t *testing.T) {
	view := BuildView(sample(), FilterState{Project: "lido"})
	require.Len(t, view, 2)
	for _, u := range view {
		assert.Equal(t, "lido", u.ProjectKey())
	}

	assert.Len(t, BuildView(sample(), FilterState{Project: "all"}), 5)
	assert.Len(t, BuildView(sample(), FilterState{}), 5, "empty project selects all")
	assert.Empty(t, BuildView(sample(), FilterState{Project: "uniswap"}))
}

func TestBuildViewTextSearch(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Withdrawals enabled", "Oracle change", "CCTP v2", "No date", "Bad date"}},
		{"SHAPELLA", []string{"Withdrawals enabled"}},
		{"cctp", []string{"CCTP v2"}},
		{"committee", []string{"Oracle change"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := headlines(BuildView(sample(), FilterState{Query: tt.query}))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildViewStatusTier(t *testing.T) {
	tests := []struct {
		tier StatusTier
		want []string
	}{
		{TierConfirmed, []string{"Withdrawals enabled"}},
		{TierImminent, []string{"Oracle change"}},
		{TierInProgress, []string{"CCTP v2"}},
		{TierSpeculative, []string{"No date"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			assert.Equal(t, tt.want, headlines(BuildView(sample(), FilterState{Tier: tt.tier})))
		})
	}
}

func TestBuildViewSubtypeConfidence(t *testing.T) {
	u := Upgrade{Project: "x", Headline: "h", AffectedSubtypes: []SubtypeImpact{{Confidence: f(0.5)}, {Confidence: f(0.1)}}}
	assert.Len(t, BuildView([]Upgrade{u}, FilterState{MinSubtypeConfidence: 0.4}), 1)
	assert.Empty(t, BuildView([]Upgrade{u}, FilterState{MinSubtypeConfidence: 0.6}))

	// absent subtype confidence counts as 0, and records without subtypes never pass
	view := BuildView(sample(), FilterState{MinSubtypeConfidence: 0.01})
	assert.Equal(t, []string{"Withdrawals enabled"}, headlines(view))
}

func TestNormalizeClampsThreshold(t *testing.T) {
	for _, v := range []float64{-0.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Zero(t, FilterState{MinSubtypeConfidence: v}.Normalize().MinSubtypeConfidence, "threshold %v", v)
	}
	assert.Equal(t, 0.3, FilterState{MinSubtypeConfidence: 0.3}.Normalize().MinSubtypeConfidence)
}

func TestProjects(t *testing.T) {
	got := Projects(append(sample(), Upgrade{Headline: "no project"}))
	assert.Equal(t, []string{"aave", "circle", "lido"}, got)
	assert.Empty(t, Projects(nil))
}

func TestParseTimestamp(t *testing.T) {
	for _, in := range []string{
		"2024-01-01T00:00:00Z",
		"2024-01-01T00:00:00.123456+00:00",
		"2024-01-01T00:00:00",
		"2024-01-01 00:00:00",
		"2024-01-01",
	} {
		ts, ok := ParseTimestamp(in)
		if !ok {
			t.Errorf("ParseTimestamp(%q) failed", in)
			continue
		}
		if ts.Year() != 2024 || ts.YearDay() != 1 {
			t.Errorf("ParseTimestamp(%q) = %v", in, ts)
		}
	}
	if _, ok := ParseTimestamp("yesterday"); ok {
		t.Error("expected failure for free text")
	}
}
