package upgrades

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// UnknownTime is shown for records without a usable timestamp.
const UnknownTime = "Unknown Time"

// FormatTimeAgo renders ts relative to now. Future timestamps fall through to
// the absolute date, formatted in now's location.
func FormatTimeAgo(ts string, now time.Time) string {
	t, ok := ParseTimestamp(ts)
	if !ok {
		return UnknownTime
	}

	elapsed := now.Sub(t)
	absolute := t.In(now.Location()).Format("Jan 2, 2006")
	if elapsed < 0 {
		return absolute
	}

	secs := int64(elapsed / time.Second)
	mins := secs / 60
	hours := mins / 60
	days := hours / 24

	switch {
	case secs < 60:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	}
	return absolute
}

// FormatLabel turns a snake_case enum value into space-joined capitalized
// words ("deployed_mainnet" -> "Deployed Mainnet"). Empty is "Unknown".
func FormatLabel(s string) string {
	if s == "" {
		return "Unknown"
	}
	words := strings.Split(s, "_")
	for i, w := range words {
		words[i] = Capitalize(w)
	}
	return strings.Join(words, " ")
}

// Capitalize upper-cases the first rune and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// DisplayProject is the selector text for a lowercased project key.
func DisplayProject(key string) string {
	return Capitalize(key)
}

// Percent formats a [0,1] score as a whole percentage without the sign.
// Out-of-range scores are not clamped.
func Percent(score float64) string {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return "0"
	}
	return strconv.FormatFloat(math.Round(score*100), 'f', 0, 64)
}

// ImpactClass returns the style key for an impact type ("Rate Change" -> "rate-change").
func ImpactClass(impact string) string {
	s := strings.ToLower(strings.TrimSpace(impact))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	if s == "" {
		return "unknown"
	}
	return s
}

// StatusClass returns the style key for a status value.
func StatusClass(status string) string {
	if status == "" {
		return "unknown"
	}
	return strings.ToLower(status)
}
