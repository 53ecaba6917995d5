package upgrades

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats the data sources emit.
// Values without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Projects returns the distinct lowercased project keys, sorted.
func Projects(all []Upgrade) []string {
	keys := lo.Uniq(lo.FilterMap(all, func(u Upgrade, _ int) (string, bool) {
		return u.ProjectKey(), u.Project != ""
	}))
	sort.Strings(keys)
	return keys
}

// BuildView returns a new slice holding the records that pass every active
// predicate of state, newest first. Records with a missing or unparsable
// timestamp go after all dated ones; ties keep input order. The input slice
// is not modified.
func BuildView(all []Upgrade, state FilterState) []Upgrade {
	state = state.Normalize()

	type dated struct {
		u  Upgrade
		at time.Time
		ok bool
	}
	sorted := make([]dated, len(all))
	for i, u := range all {
		at, ok := ParseTimestamp(u.Timestamp)
		sorted[i] = dated{u: u, at: at, ok: ok}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.at.After(b.at)
	})

	query := strings.ToLower(state.Query)
	view := make([]Upgrade, 0, len(sorted))
	for _, d := range sorted {
		if matches(d.u, state, query) {
			view = append(view, d.u)
		}
	}
	return view
}

func matches(u Upgrade, state FilterState, query string) bool {
	if state.Project != AllProjects && u.ProjectKey() != state.Project {
		return false
	}
	if query != "" &&
		!strings.Contains(strings.ToLower(u.Headline), query) &&
		!strings.Contains(strings.ToLower(u.Reasoning), query) {
		return false
	}
	if !state.Tier.Contains(u.Confidence) {
		return false
	}
	if state.MinSubtypeConfidence > 0 {
		return lo.SomeBy(u.AffectedSubtypes, func(s SubtypeImpact) bool {
			return s.StrengthOrZero() >= state.MinSubtypeConfidence
		})
	}
	return true
}
