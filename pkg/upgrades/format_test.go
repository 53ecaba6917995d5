package upgrades

import (
	"testing"
	"time"
)

func TestFormatTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) string { return now.Add(-d).Format(time.RFC3339) }

	tests := []struct {
		name string
		ts   string
		want string
	}{
		{"missing", "", UnknownTime},
		{"garbage", "soon", UnknownTime},
		{"seconds", at(30 * time.Second), "Just now"},
		{"minutes", at(5 * time.Minute), "5m ago"},
		{"59 minutes", at(59*time.Minute + 59*time.Second), "59m ago"},
		{"hours", at(3 * time.Hour), "3h ago"},
		{"one day", at(30 * time.Hour), "Yesterday"},
		{"days", at(3 * 24 * time.Hour), "3d ago"},
		{"week", at(7 * 24 * time.Hour), "Jun 8, 2024"},
		{"old", "2023-01-05T08:00:00Z", "Jan 5, 2023"},
		{"future", "2024-06-15T12:00:30Z", "Jun 15, 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimeAgo(tt.ts, now); got != tt.want {
				t.Errorf("FormatTimeAgo(%q) = %q, want %q", tt.ts, got, tt.want)
			}
		})
	}
}

func TestFormatLabel(t *testing.T) {
	tests := map[string]string{
		"":                      "Unknown",
		"deployed_mainnet":      "Deployed Mainnet",
		"approved_not_deployed": "Approved Not Deployed",
		"hardFork":              "HardFork",
	}
	for in, want := range tests {
		if got := FormatLabel(in); got != want {
			t.Errorf("FormatLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := map[float64]string{
		0:     "0",
		0.5:   "50",
		0.96:  "96",
		0.005: "1",
		1.5:   "150",
	}
	for in, want := range tests {
		if got := Percent(in); got != want {
			t.Errorf("Percent(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestImpactClassAndDisplay(t *testing.T) {
	if got := ImpactClass("Rate Change"); got != "rate-change" {
		t.Errorf("ImpactClass = %q", got)
	}
	if got := ImpactClass(""); got != "unknown" {
		t.Errorf("ImpactClass(empty) = %q", got)
	}
	if got := DisplayProject("lido"); got != "Lido" {
		t.Errorf("DisplayProject = %q", got)
	}
	if got := StatusClass("DEPLOYED_MAINNET"); got != "deployed_mainnet" {
		t.Errorf("StatusClass = %q", got)
	}
}
