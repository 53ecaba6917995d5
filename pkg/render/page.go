// Package render holds the user interfaces the feed controller drives: an
// HTML page built with gomponents, a terminal listing and a JSON document.
package render

import (
	"io"
	"time"

	"github.com/sw33tLie/upgradefeed/pkg/feed"
	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const defaultTitle = "Protocol Upgrade Feed"

// PageOptions configures an HTML page.
type PageOptions struct {
	Title       string
	RichFilters bool
	Now         func() time.Time
}

// Page retains the latest controller output and renders it as a complete
// HTML document.
type Page struct {
	opts PageOptions

	loading  bool
	errMsg   string
	projects []string
	state    upgrades.FilterState
	view     []upgrades.Upgrade
}

var _ feed.UI = (*Page)(nil)

func NewPage(opts PageOptions) *Page {
	if opts.Title == "" {
		opts.Title = defaultTitle
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Page{opts: opts, state: upgrades.DefaultFilterState()}
}

func (p *Page) SetLoading(loading bool)                    { p.loading = loading }
func (p *Page) ShowError(message string)                   { p.errMsg = message }
func (p *Page) PopulateProjects(projects []string)         { p.projects = projects }
func (p *Page) OnFilterChanged(state upgrades.FilterState) { p.state = state }
func (p *Page) RenderCards(view []upgrades.Upgrade)        { p.view = view }

// Node builds the document for the current state.
func (p *Page) Node() g.Node {
	var content g.Node
	if p.errMsg != "" {
		content = ErrorState(p.errMsg)
	} else {
		content = Feed(p.view, p.opts.Now())
	}

	loadingClass := "loading text-center py-4 text-slate-500"
	if !p.loading {
		loadingClass += " hidden"
	}

	return PageLayout(p.opts.Title,
		Main(Class("container mx-auto max-w-5xl px-4 py-8"),
			Header(Class("mb-6"),
				H1(Class("text-3xl font-bold text-white"), g.Text(p.opts.Title)),
				P(Class("text-slate-400 mt-1"), g.Text("Upgrade events detected across tracked protocols, newest first.")),
			),
			FilterBar(p.projects, p.state, p.opts.RichFilters),
			Div(ID("loading"), Class(loadingClass), g.Text("Loading...")),
			content,
		),
	)
}

func (p *Page) Render(w io.Writer) error {
	return p.Node().Render(w)
}

// PageLayout wraps content in the document shell.
func PageLayout(title string, content g.Node) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(Lang("en"),
			Head(
				Meta(Charset("UTF-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(title)),
				Link(Rel("preconnect"), Href("https://fonts.googleapis.com")),
				Link(Rel("stylesheet"), Href("https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700&display=swap")),
				Script(Src("https://cdn.tailwindcss.com")),
				Script(g.Raw(`tailwind.config={theme:{extend:{fontFamily:{sans:['Inter','ui-sans-serif','system-ui','sans-serif']}}}}`)),
				StyleEl(g.Raw(`
					::selection { background: #0891b2; color: white; }
					a:focus-visible, button:focus-visible, input:focus-visible, select:focus-visible {
						outline: 2px solid #06b6d4;
						outline-offset: 2px;
					}
					.status-indicator { width: 8px; height: 8px; border-radius: 9999px; background: #64748b; }
					.status-deployed_mainnet, .status-executed, .status-live { background: #10b981; }
					.status-scheduled, .status-approved { background: #06b6d4; }
					.status-proposed, .status-voting { background: #f59e0b; }
				`)),
			),
			Body(Class("bg-slate-950 font-sans antialiased leading-normal tracking-tight min-h-screen text-slate-300"),
				content,
			),
		),
	})
}
