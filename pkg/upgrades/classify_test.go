package upgrades

import (
	"math"
	"testing"
)

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{1.0, LabelConfirmed},
		{0.95, LabelConfirmed},
		{0.9499, LabelImminent},
		{0.70, LabelImminent},
		{0.6999, LabelInProgress},
		{0.40, LabelInProgress},
		{0.3999, LabelSpeculative},
		{0.20, LabelSpeculative},
		{0.1999, LabelIrrelevant},
		{0, LabelIrrelevant},
		{-0.5, LabelIrrelevant},
		{1.7, LabelConfirmed},
		{math.NaN(), LabelIrrelevant},
	}
	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestStatusTierContainsMatchesClassify(t *testing.T) {
	tierForLabel := map[string]StatusTier{
		LabelConfirmed:   TierConfirmed,
		LabelImminent:    TierImminent,
		LabelInProgress:  TierInProgress,
		LabelSpeculative: TierSpeculative,
	}
	for i := 0; i <= 1000; i++ {
		score := float64(i) / 1000
		label := Classify(score)
		for _, tier := range StatusTiers[1:] {
			want := tierForLabel[label] == tier
			if got := tier.Contains(score); got != want {
				t.Fatalf("%s.Contains(%v) = %v, want %v (label %q)", tier, score, got, want, label)
			}
		}
		if !TierAll.Contains(score) {
			t.Fatalf("TierAll must contain %v", score)
		}
	}
}

func TestParseStatusTier(t *testing.T) {
	for _, in := range []string{"", "all", " ALL "} {
		got, err := ParseStatusTier(in)
		if err != nil || got != TierAll {
			t.Fatalf("ParseStatusTier(%q) = %q, %v", in, got, err)
		}
	}
	got, err := ParseStatusTier("In-Progress")
	if err != nil || got != TierInProgress {
		t.Fatalf("ParseStatusTier(In-Progress) = %q, %v", got, err)
	}
	if _, err := ParseStatusTier("deployed"); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}
