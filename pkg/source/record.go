package source

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
	"github.com/tidwall/gjson"
)

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
const epochMillisThreshold = 1e12

// recordFromJSON builds an Upgrade from one JSON object. Fields holding an
// unexpected type fall back to their zero value instead of failing the row.
func recordFromJSON(obj gjson.Result) upgrades.Upgrade {
	u := upgrades.Upgrade{
		ID:                lenientString(obj.Get("id")),
		Project:           lenientString(obj.Get("project")),
		Network:           lenientString(obj.Get("network")),
		Headline:          lenientString(obj.Get("headline")),
		Reasoning:         lenientString(obj.Get("reasoning")),
		Timestamp:         lenientTimestamp(obj.Get("timestamp")),
		Confidence:        lenientFloat(obj.Get("confidence")),
		Status:            lenientString(obj.Get("status")),
		UpgradeType:       lenientString(obj.Get("upgrade_type")),
		PrimarySource:     lenientString(obj.Get("primary_source")),
		SupportingSources: lenientStrings(obj.Get("supporting_sources")),
	}

	subtypes := obj.Get("affected_subtypes")
	if subtypes.IsArray() {
		for _, s := range subtypes.Array() {
			if !s.IsObject() {
				continue
			}
			impact := upgrades.SubtypeImpact{
				SubtypeCode:  lenientString(s.Get("subtype_code")),
				ImpactType:   lenientString(s.Get("impact_type")),
				Reason:       lenientString(s.Get("reason")),
				TokenContext: lenientString(s.Get("token_context")),
			}
			if c, ok := parseFloat(s.Get("confidence")); ok {
				impact.Confidence = &c
			}
			u.AffectedSubtypes = append(u.AffectedSubtypes, impact)
		}
	}
	return u
}

func lenientString(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	}
	return ""
}

func lenientStrings(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, item := range v.Array() {
		if s := lenientString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lenientFloat(v gjson.Result) float64 {
	f, _ := parseFloat(v)
	return f
}

// parseFloat accepts finite numbers and numeric strings.
func parseFloat(v gjson.Result) (float64, bool) {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// lenientTimestamp keeps string timestamps as they are and turns epoch
// numbers (seconds, or milliseconds past 1e12) into RFC 3339 UTC.
func lenientTimestamp(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		n := v.Num
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return ""
		}
		var t time.Time
		if math.Abs(n) >= epochMillisThreshold {
			t = time.UnixMilli(int64(n))
		} else {
			sec, frac := math.Modf(n)
			t = time.Unix(int64(sec), int64(frac*1e9))
		}
		return t.UTC().Format(time.RFC3339Nano)
	}
	return ""
}
