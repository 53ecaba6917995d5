package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sw33tLie/upgradefeed/internal/utils"
	"github.com/sw33tLie/upgradefeed/pkg/feed"
	"github.com/sw33tLie/upgradefeed/pkg/render"
	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
)

// FilterStateFromQuery reads project, q, tier and min_conf. Unknown tiers
// and unparsable or non-finite thresholds fall back to their defaults.
func FilterStateFromQuery(q url.Values) upgrades.FilterState {
	state := upgrades.FilterState{
		Project: strings.ToLower(strings.TrimSpace(q.Get("project"))),
		Query:   strings.TrimSpace(q.Get("q")),
	}

	tier, err := upgrades.ParseStatusTier(q.Get("tier"))
	if err != nil {
		utils.Log.WithField("tier", q.Get("tier")).Warn("Ignoring unknown status tier")
		tier = upgrades.TierAll
	}
	state.Tier = tier

	if raw := strings.TrimSpace(q.Get("min_conf")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			utils.Log.WithField("min_conf", raw).Warn("Ignoring invalid subtype confidence threshold")
		} else {
			state.MinSubtypeConfidence = v
		}
	}
	return state.Normalize()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := render.NewPage(render.PageOptions{
		Title:       s.Title,
		RichFilters: s.RichFilters,
		Now:         s.now,
	})
	c := feed.New(s.Loader, page, feed.Options{RichFilters: s.RichFilters})

	status := http.StatusOK
	if err := c.Load(r.Context()); err != nil {
		status = http.StatusBadGateway
	} else {
		c.ApplyFilters(FilterStateFromQuery(r.URL.Query()))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	noCache(w)
	w.WriteHeader(status)
	if err := page.Render(w); err != nil {
		utils.Log.WithError(err).Error("Error rendering page")
	}
}

func (s *Server) handleUpgrades(w http.ResponseWriter, r *http.Request) {
	ui := &render.JSON{Out: w}
	c := feed.New(s.Loader, ui, feed.Options{RichFilters: s.RichFilters})

	status := http.StatusOK
	if err := c.Load(r.Context()); err != nil {
		status = http.StatusBadGateway
	} else {
		c.ApplyFilters(FilterStateFromQuery(r.URL.Query()))
	}

	w.Header().Set("Content-Type", "application/json")
	noCache(w)
	w.WriteHeader(status)
	if err := ui.Flush(); err != nil {
		utils.Log.WithError(err).Error("Error encoding upgrades")
	}
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	noCache(w)
	items, err := s.Loader.Load(r.Context())
	if err != nil {
		utils.Log.WithError(err).Error("Error loading upgrades")
		http.Error(w, feed.LoadErrorMessage, http.StatusBadGateway)
		return
	}

	projects := upgrades.Projects(items)
	if projects == nil {
		projects = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(projects); err != nil {
		utils.Log.WithError(err).Error("Error encoding projects")
	}
}

// noCache keeps every response fresh; each request reloads the source.
func noCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
}
