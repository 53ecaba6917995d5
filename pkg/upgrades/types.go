package upgrades

import (
	"fmt"
	"math"
	"strings"
)

// Upgrade is a single feed entry describing a protocol change event.
// Values are treated as a read-only snapshot once loaded.
type Upgrade struct {
	ID                string          `json:"id,omitempty"`
	Project           string          `json:"project"`
	Network           string          `json:"network,omitempty"`
	Headline          string          `json:"headline"`
	Reasoning         string          `json:"reasoning,omitempty"`
	Timestamp         string          `json:"timestamp,omitempty"`
	Confidence        float64         `json:"confidence"`
	Status            string          `json:"status,omitempty"`
	UpgradeType       string          `json:"upgrade_type,omitempty"`
	PrimarySource     string          `json:"primary_source,omitempty"`
	SupportingSources []string        `json:"supporting_sources,omitempty"`
	AffectedSubtypes  []SubtypeImpact `json:"affected_subtypes,omitempty"`
}

// SubtypeImpact describes how an upgrade affects one token/asset subtype.
type SubtypeImpact struct {
	SubtypeCode  string   `json:"subtype_code"`
	ImpactType   string   `json:"impact_type"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Reason       string   `json:"reason"`
	TokenContext string   `json:"token_context,omitempty"`
}

// Key returns the identity used to de-duplicate records: the explicit id when
// present, project_headline otherwise.
func (u Upgrade) Key() string {
	if u.ID != "" {
		return u.ID
	}
	return fmt.Sprintf("%s_%s", u.Project, u.Headline)
}

// ProjectKey is the lowercased project used for grouping and filtering.
func (u Upgrade) ProjectKey() string {
	return strings.ToLower(u.Project)
}

// StrengthOrZero returns the subtype confidence, 0 when absent.
func (s SubtypeImpact) StrengthOrZero() float64 {
	if s.Confidence == nil {
		return 0
	}
	return *s.Confidence
}

// AllProjects is the project selector sentinel that disables project filtering.
const AllProjects = "all"

// StatusTier is a confidence range selectable in the status filter.
type StatusTier string

const (
	TierAll         StatusTier = "all"
	TierConfirmed   StatusTier = "confirmed"
	TierImminent    StatusTier = "imminent"
	TierInProgress  StatusTier = "in-progress"
	TierSpeculative StatusTier = "speculative"
)

// StatusTiers lists the selectable tiers in display order.
var StatusTiers = []StatusTier{TierAll, TierConfirmed, TierImminent, TierInProgress, TierSpeculative}

// ParseStatusTier maps a selector value to a tier. The empty string is TierAll.
func ParseStatusTier(s string) (StatusTier, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TierAll, nil
	}
	for _, t := range StatusTiers {
		if string(t) == s {
			return t, nil
		}
	}
	return TierAll, fmt.Errorf("unknown status tier %q", s)
}

// FilterState is the user-selected filter configuration.
type FilterState struct {
	Project              string     `json:"project"`
	Tier                 StatusTier `json:"tier"`
	MinSubtypeConfidence float64    `json:"min_subtype_confidence"`
	Query                string     `json:"query"`
}

// DefaultFilterState returns the state a session starts with.
func DefaultFilterState() FilterState {
	return FilterState{Project: AllProjects, Tier: TierAll}
}

// Normalize fills empty selector values with their "all" sentinels,
// lowercases the project key and clamps the threshold to a finite, non-negative value.
func (f FilterState) Normalize() FilterState {
	f.Project = strings.ToLower(strings.TrimSpace(f.Project))
	if f.Project == "" {
		f.Project = AllProjects
	}
	if f.Tier == "" {
		f.Tier = TierAll
	}
	if f.MinSubtypeConfidence < 0 || math.IsNaN(f.MinSubtypeConfidence) || math.IsInf(f.MinSubtypeConfidence, 0) {
		f.MinSubtypeConfidence = 0
	}
	return f
}
