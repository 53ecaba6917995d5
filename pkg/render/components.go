package render

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
	"github.com/weppos/publicsuffix-go/publicsuffix"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const (
	EmptyStateMessage = "No upgrades match your filters."
	placeholderHref   = "#"

	clockIcon   = `<svg width="14" height="14" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><circle cx="12" cy="12" r="10"></circle><polyline points="12 6 12 12 16 14"></polyline></svg>`
	packageIcon = `<svg width="14" height="14" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M21 16V8a2 2 0 0 0-1-1.73l-7-4a2 2 0 0 0-2 0l-7 4A2 2 0 0 0 3 8v8a2 2 0 0 0 1 1.73l7 4a2 2 0 0 0 2 0l7-4A2 2 0 0 0 21 16z"></path></svg>`
	linkIcon    = `<svg class="w-3.5 h-3.5" fill="none" stroke="currentColor" viewBox="0 0 24 24"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M10 6H6a2 2 0 00-2 2v10a2 2 0 002 2h10a2 2 0 002-2v-4M14 4h6m0 0v6m0-6L10 14"/></svg>`
)

// MinSubtypeConfidenceChoices are the thresholds offered by the selector.
var MinSubtypeConfidenceChoices = []float64{0, 0.3, 0.5, 0.7, 0.9}

// FilterBar renders the selectors and search field. Every control submits
// the form, so each change recomputes the view.
func FilterBar(projects []string, state upgrades.FilterState, rich bool) g.Node {
	selectClass := "px-3 py-2.5 border border-slate-700 rounded-lg bg-slate-800/50 text-slate-200 focus:ring-2 focus:ring-cyan-500"

	projectOptions := []g.Node{
		Option(Value(upgrades.AllProjects), g.Text("All Protocols"), g.If(state.Project == upgrades.AllProjects, Selected())),
	}
	for _, p := range projects {
		projectOptions = append(projectOptions,
			Option(Value(p), g.Text(upgrades.DisplayProject(p)), g.If(state.Project == p, Selected())),
		)
	}

	controls := []g.Node{
		Select(ID("protocol-filter"), Name("project"), Class(selectClass), g.Attr("onchange", "this.form.submit()"),
			g.Group(projectOptions),
		),
	}

	if rich {
		var tierOptions []g.Node
		for _, t := range upgrades.StatusTiers {
			tierOptions = append(tierOptions, Option(Value(string(t)), g.Text(t.Label()), g.If(state.Tier == t, Selected())))
		}
		var confOptions []g.Node
		for _, c := range MinSubtypeConfidenceChoices {
			label := "Any subtype confidence"
			if c > 0 {
				label = "Subtype ≥ " + upgrades.Percent(c) + "%"
			}
			confOptions = append(confOptions,
				Option(Value(strconv.FormatFloat(c, 'f', -1, 64)), g.Text(label), g.If(state.MinSubtypeConfidence == c, Selected())),
			)
		}
		controls = append(controls,
			Select(ID("status-filter"), Name("tier"), Class(selectClass), g.Attr("onchange", "this.form.submit()"), g.Group(tierOptions)),
			Select(ID("subtype-confidence-filter"), Name("min_conf"), Class(selectClass), g.Attr("onchange", "this.form.submit()"), g.Group(confOptions)),
		)
	}

	controls = append(controls,
		Div(Class("relative flex-1"),
			Input(
				ID("search-input"),
				Type("search"),
				Name("q"),
				Placeholder("Search headlines and reasoning..."),
				Value(state.Query),
				Class("w-full px-4 py-2.5 border border-slate-700 rounded-lg focus:ring-2 focus:ring-cyan-500 focus:border-cyan-500 bg-slate-800/50 text-slate-200 placeholder-slate-500"),
			),
		),
		Button(Type("submit"),
			Class("px-6 py-2.5 bg-cyan-600 text-white font-medium rounded-lg hover:bg-cyan-500 transition-all duration-200"),
			g.Text("Search"),
		),
	)

	return Form(Method("GET"), Action("/"), Class("filters flex flex-col sm:flex-row gap-2 items-stretch sm:items-center mb-6"),
		g.Group(controls),
	)
}

// Feed renders the card list, or only the empty-state indicator when view
// is empty.
func Feed(view []upgrades.Upgrade, now time.Time) g.Node {
	if len(view) == 0 {
		return EmptyState()
	}
	cards := make([]g.Node, 0, len(view))
	for _, u := range view {
		cards = append(cards, UpgradeCard(u, now))
	}
	return Div(ID("feed"), Class("feed grid gap-4"), g.Group(cards))
}

func EmptyState() g.Node {
	return Div(ID("empty-state"), Class("empty-state text-center py-16 text-slate-500"),
		P(g.Text(EmptyStateMessage)),
	)
}

// ErrorState replaces the feed after a failed load.
func ErrorState(message string) g.Node {
	return Div(ID("feed"), Class("feed"),
		Div(Class("empty-state text-center py-16"),
			P(Class("load-error text-red-400"), g.Text(message)),
		),
	)
}

// UpgradeCard renders one record. The whole card links to the primary
// source in a new browsing context without an opener reference.
func UpgradeCard(u upgrades.Upgrade, now time.Time) g.Node {
	href := safeHref(u.PrimarySource)

	body := []g.Node{
		Div(Class("card-header flex items-center justify-between mb-3"),
			Span(Class("protocol-pill px-2.5 py-1 text-xs font-semibold rounded-full bg-cyan-500/10 text-cyan-300 border border-cyan-500/30"), g.Text(u.Project)),
			Span(Class("timestamp inline-flex items-center gap-1 text-xs text-slate-400"),
				g.Raw(clockIcon),
				g.Text(upgrades.FormatTimeAgo(u.Timestamp, now)),
			),
		),
		H2(Class("card-title text-lg font-semibold text-slate-100 mb-2"), g.Text(u.Headline)),
	}
	if u.Reasoning != "" {
		body = append(body, Div(Class("card-body text-sm text-slate-400 leading-relaxed mb-3"), g.Text(u.Reasoning)))
	}
	if len(u.AffectedSubtypes) > 0 {
		body = append(body, SubtypeTable(u.AffectedSubtypes))
	}
	body = append(body, cardMeta(u))

	return A(Href(href), Target("_blank"), Rel("noopener noreferrer"),
		Class("card block bg-slate-800/30 border border-slate-700/50 rounded-xl p-5 hover:border-cyan-500/40 hover:bg-slate-800/50 transition-all duration-200"),
		g.Group(body),
	)
}

// safeHref only lets http and https links through.
func safeHref(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return placeholderHref
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return placeholderHref
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return raw
	}
	return placeholderHref
}

func cardMeta(u upgrades.Upgrade) g.Node {
	items := []g.Node{ConfidenceBadge(u.Confidence)}

	if u.Status != "" {
		items = append(items, metaItem("Status",
			Span(Class("status-indicator status-"+upgrades.StatusClass(u.Status))),
			Span(g.Text(upgrades.FormatLabel(u.Status))),
		))
	}
	if u.UpgradeType != "" {
		items = append(items, metaItem("Upgrade Type", g.Raw(packageIcon), Span(g.Text(upgrades.FormatLabel(u.UpgradeType)))))
	}
	if u.Network != "" {
		items = append(items, metaItem("Network", Span(g.Text(u.Network))))
	}
	if n := len(u.SupportingSources); n > 0 {
		label := strconv.Itoa(n) + " supporting sources"
		if n == 1 {
			label = "1 supporting source"
		}
		items = append(items, metaItem("Supporting Sources", Span(g.Text(label))))
	}
	if domain := sourceDomain(u.PrimarySource); domain != "" {
		items = append(items, metaItem("Primary Source", g.Raw(linkIcon), Span(Class("source-domain"), g.Text(domain))))
	}

	return Div(Class("card-meta flex flex-wrap items-center gap-3 mt-3 text-xs text-slate-400"), g.Group(items))
}

func metaItem(title string, children ...g.Node) g.Node {
	return Div(Class("meta-item inline-flex items-center gap-1.5"), g.Attr("title", title), g.Group(children))
}

// ConfidenceBadge shows the tier label and the score as a percentage.
func ConfidenceBadge(score float64) g.Node {
	label := upgrades.Classify(score)
	var colors string
	switch label {
	case upgrades.LabelConfirmed:
		colors = "bg-emerald-900/50 text-emerald-300 border border-emerald-800"
	case upgrades.LabelImminent:
		colors = "bg-cyan-900/50 text-cyan-300 border border-cyan-800"
	case upgrades.LabelInProgress:
		colors = "bg-amber-900/50 text-amber-300 border border-amber-800"
	case upgrades.LabelSpeculative:
		colors = "bg-violet-900/50 text-violet-300 border border-violet-800"
	default:
		colors = "bg-slate-700 text-slate-300"
	}
	return Span(Class("confidence-badge tier-"+tierKey(label)+" inline-flex items-center gap-1 px-2 py-0.5 text-[11px] font-semibold rounded-md "+colors),
		g.Attr("title", "Agent Confidence"),
		Span(Class("tier-label"), g.Text(label)),
		Span(Class("confidence-value"), g.Text("Conf: "+upgrades.Percent(score)+"%")),
	)
}

// SubtypeTable renders the per-subtype breakdown.
func SubtypeTable(subtypes []upgrades.SubtypeImpact) g.Node {
	rows := make([]g.Node, 0, len(subtypes))
	for _, s := range subtypes {
		impact := []g.Node{
			Span(Class("impact-badge impact-"+upgrades.ImpactClass(s.ImpactType)+" px-1.5 py-0.5 rounded bg-slate-700/60 text-slate-200"),
				g.Text(s.ImpactType),
			),
		}
		if s.Confidence != nil {
			impact = append(impact, Span(Class("impact-strength ml-1 text-slate-400"), g.Text(upgrades.Percent(*s.Confidence)+"%")))
		}

		detail := []g.Node{Span(Class("subtype-reason"), g.Text(s.Reason))}
		if s.TokenContext != "" {
			detail = append(detail, Code(Class("token-context block mt-1 text-[11px] text-slate-500"), g.Text(s.TokenContext)))
		}

		rows = append(rows, Tr(Class("subtype-row border-t border-slate-700/50"),
			Td(Class("px-2 py-1.5 font-mono text-slate-200"), g.Text(s.SubtypeCode)),
			Td(Class("px-2 py-1.5 whitespace-nowrap"), g.Group(impact)),
			Td(Class("px-2 py-1.5 text-slate-400"), g.Group(detail)),
		))
	}

	return Table(Class("subtype-table w-full text-xs mb-3"),
		THead(Tr(
			Th(Class("px-2 py-1 text-left text-slate-500 uppercase"), g.Text("Subtype")),
			Th(Class("px-2 py-1 text-left text-slate-500 uppercase"), g.Text("Impact")),
			Th(Class("px-2 py-1 text-left text-slate-500 uppercase"), g.Text("Detail")),
		)),
		TBody(g.Group(rows)),
	)
}

func tierKey(label string) string {
	switch label {
	case upgrades.LabelImminent:
		return "imminent"
	case upgrades.LabelInProgress:
		return "in-progress"
	default:
		return strings.ToLower(label)
	}
}

// sourceDomain returns the registrable domain of a source URL, falling back
// to the host. Unusable URLs give "".
func sourceDomain(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return host
	}
	return domain
}
