// Package feed wires a data source to a UI: one load per session, then a
// full view recomputation on every filter change.
package feed

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/sw33tLie/upgradefeed/internal/utils"
	"github.com/sw33tLie/upgradefeed/pkg/source"
	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
)

// LoadErrorMessage is the user-visible text shown when loading fails.
const LoadErrorMessage = "Error loading data. Please ensure the upgrades data source is reachable."

// UI is the display boundary the controller drives.
type UI interface {
	SetLoading(loading bool)
	ShowError(message string)
	PopulateProjects(projects []string)
	OnFilterChanged(state upgrades.FilterState)
	RenderCards(view []upgrades.Upgrade)
}

// Options toggles the optional filter capabilities.
type Options struct {
	// RichFilters enables the status-tier and minimum subtype confidence
	// predicates. Without it those fields are reset to their defaults.
	RichFilters bool
}

// Controller owns the loaded snapshot and the current filter state.
// It is confined to one goroutine.
type Controller struct {
	loader source.Loader
	ui     UI
	opts   Options

	all      []upgrades.Upgrade
	projects []string
	state    upgrades.FilterState
	loadErr  error
}

func New(loader source.Loader, ui UI, opts Options) *Controller {
	return &Controller{
		loader: loader,
		ui:     ui,
		opts:   opts,
		state:  upgrades.DefaultFilterState(),
	}
}

// Load fetches the record set, builds the project vocabulary and renders the
// default view. On failure the UI shows LoadErrorMessage and the record set
// stays empty. The loading indicator is cleared exactly once either way.
func (c *Controller) Load(ctx context.Context) error {
	c.ui.SetLoading(true)
	defer c.ui.SetLoading(false)

	items, err := c.loader.Load(ctx)
	if err != nil {
		c.loadErr = err
		utils.Log.WithFields(logrus.Fields{
			"source": c.loader.Name(),
			"error":  err,
		}).Error("Error loading upgrades")
		c.ui.ShowError(LoadErrorMessage)
		return err
	}

	c.all = items
	c.loadErr = nil
	c.projects = upgrades.Projects(items)
	c.ui.PopulateProjects(c.projects)
	c.ApplyFilters(c.state)
	return nil
}

// ApplyFilters records state and re-renders the view. After a failed load
// nothing is rendered, so the error stays visible.
func (c *Controller) ApplyFilters(state upgrades.FilterState) {
	state = state.Normalize()
	if !c.opts.RichFilters {
		state.Tier = upgrades.TierAll
		state.MinSubtypeConfidence = 0
	}
	c.state = state
	c.ui.OnFilterChanged(state)

	if c.loadErr != nil {
		return
	}
	view := upgrades.BuildView(c.all, state)
	utils.Log.WithFields(logrus.Fields{
		"project": state.Project,
		"tier":    state.Tier,
		"query":   state.Query,
		"shown":   len(view),
		"total":   len(c.all),
	}).Debug("Applied filters")
	c.ui.RenderCards(view)
}

// Upgrades returns a copy of the loaded record set.
func (c *Controller) Upgrades() []upgrades.Upgrade {
	return append([]upgrades.Upgrade(nil), c.all...)
}

// Projects returns the vocabulary computed at load time.
func (c *Controller) Projects() []string {
	return append([]string(nil), c.projects...)
}

func (c *Controller) State() upgrades.FilterState { return c.state }

// View recomputes the current view without rendering it.
func (c *Controller) View() []upgrades.Upgrade {
	if c.loadErr != nil {
		return []upgrades.Upgrade{}
	}
	return upgrades.BuildView(c.all, c.state)
}

func (c *Controller) Err() error { return c.loadErr }
