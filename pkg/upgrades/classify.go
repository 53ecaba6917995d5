package upgrades

// Confidence tier labels.
const (
	LabelConfirmed   = "Confirmed"
	LabelImminent    = "Imminent/Certain"
	LabelInProgress  = "In Progress"
	LabelSpeculative = "Speculative"
	LabelIrrelevant  = "Irrelevant"
)

// Classify maps a confidence score to its display tier. Each threshold
// belongs to the higher tier. NaN falls through to LabelIrrelevant.
func Classify(score float64) string {
	switch {
	case score >= 0.95:
		return LabelConfirmed
	case score >= 0.70:
		return LabelImminent
	case score >= 0.40:
		return LabelInProgress
	case score >= 0.20:
		return LabelSpeculative
	default:
		return LabelIrrelevant
	}
}

// Contains reports whether score lies in the tier's half-open range.
// TierAll (and any unknown tier) contains every score.
func (t StatusTier) Contains(score float64) bool {
	switch t {
	case TierConfirmed:
		return score >= 0.95
	case TierImminent:
		return score >= 0.7 && score < 0.95
	case TierInProgress:
		return score >= 0.4 && score < 0.7
	case TierSpeculative:
		return score >= 0.2 && score < 0.4
	default:
		return true
	}
}

// Label is the selector text for a tier.
func (t StatusTier) Label() string {
	switch t {
	case TierConfirmed:
		return LabelConfirmed
	case TierImminent:
		return LabelImminent
	case TierInProgress:
		return LabelInProgress
	case TierSpeculative:
		return LabelSpeculative
	default:
		return "All Statuses"
	}
}
