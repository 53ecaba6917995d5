package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sw33tLie/upgradefeed/internal/utils"
	"github.com/sw33tLie/upgradefeed/pkg/feed"
	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
)

// Terminal renders the latest view as plain text when flushed.
type Terminal struct {
	Out io.Writer
	Now func() time.Time

	errMsg string
	view   []upgrades.Upgrade
}

var _ feed.UI = (*Terminal)(nil)

func (t *Terminal) SetLoading(loading bool) {
	utils.Log.WithField("loading", loading).Debug("Loading state changed")
}

func (t *Terminal) ShowError(message string) { t.errMsg = message }

func (t *Terminal) PopulateProjects(projects []string) {
	utils.Log.WithField("projects", len(projects)).Debug("Project vocabulary ready")
}

func (t *Terminal) OnFilterChanged(state upgrades.FilterState) {}

func (t *Terminal) RenderCards(view []upgrades.Upgrade) { t.view = view }

// Flush writes either the error, the empty-state message or one block per
// record.
func (t *Terminal) Flush() error {
	if t.errMsg != "" {
		_, err := fmt.Fprintln(t.Out, t.errMsg)
		return err
	}
	if len(t.view) == 0 {
		_, err := fmt.Fprintln(t.Out, EmptyStateMessage)
		return err
	}

	now := time.Now()
	if t.Now != nil {
		now = t.Now()
	}
	for i, u := range t.view {
		if i > 0 {
			if _, err := fmt.Fprintln(t.Out); err != nil {
				return err
			}
		}
		if err := writeTextCard(t.Out, u, now); err != nil {
			return err
		}
	}
	return nil
}

func writeTextCard(w io.Writer, u upgrades.Upgrade, now time.Time) error {
	out := &errWriter{w: w}
	fmt.Fprintf(out, "[%s] %s · %s · %s (Conf: %s%%)\n",
		u.Project,
		upgrades.FormatTimeAgo(u.Timestamp, now),
		u.Headline,
		upgrades.Classify(u.Confidence),
		upgrades.Percent(u.Confidence),
	)
	if u.Reasoning != "" {
		fmt.Fprintf(out, "    %s\n", u.Reasoning)
	}

	var meta []string
	if u.Status != "" {
		meta = append(meta, "Status: "+upgrades.FormatLabel(u.Status))
	}
	if u.UpgradeType != "" {
		meta = append(meta, "Type: "+upgrades.FormatLabel(u.UpgradeType))
	}
	if u.Network != "" {
		meta = append(meta, "Network: "+u.Network)
	}
	if n := len(u.SupportingSources); n > 0 {
		meta = append(meta, fmt.Sprintf("Supporting sources: %d", n))
	}
	if len(meta) > 0 {
		fmt.Fprintf(out, "    %s\n", strings.Join(meta, " | "))
	}

	if len(u.AffectedSubtypes) > 0 {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, s := range u.AffectedSubtypes {
			strength := "-"
			if s.Confidence != nil {
				strength = upgrades.Percent(*s.Confidence) + "%"
			}
			reason := s.Reason
			if s.TokenContext != "" {
				reason += " [" + s.TokenContext + "]"
			}
			fmt.Fprintf(tw, "    %s\t%s\t%s\t%s\n", s.SubtypeCode, s.ImpactType, strength, reason)
		}
		tw.Flush()
	}

	if u.PrimarySource != "" {
		fmt.Fprintf(out, "    %s\n", u.PrimarySource)
	}
	return out.err
}

// errWriter keeps the first write error and drops every later write.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// JSON collects the controller output into a single document.
type JSON struct {
	Out    io.Writer
	Indent bool

	doc jsonDocument
}

type jsonDocument struct {
	Projects []string             `json:"projects"`
	Filters  upgrades.FilterState `json:"filters"`
	Count    int                  `json:"count"`
	Upgrades []upgrades.Upgrade   `json:"upgrades"`
	Error    string               `json:"error,omitempty"`
}

var _ feed.UI = (*JSON)(nil)

func (j *JSON) SetLoading(loading bool)                    {}
func (j *JSON) ShowError(message string)                   { j.doc.Error = message }
func (j *JSON) PopulateProjects(projects []string)         { j.doc.Projects = projects }
func (j *JSON) OnFilterChanged(state upgrades.FilterState) { j.doc.Filters = state }

func (j *JSON) RenderCards(view []upgrades.Upgrade) {
	j.doc.Upgrades = view
	j.doc.Count = len(view)
}

func (j *JSON) Flush() error {
	doc := j.doc
	if doc.Projects == nil {
		doc.Projects = []string{}
	}
	if doc.Upgrades == nil {
		doc.Upgrades = []upgrades.Upgrade{}
	}
	enc := json.NewEncoder(j.Out)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(doc)
}
