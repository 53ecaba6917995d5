package source

import (
	"context"
	"os"

	"github.com/sw33tLie/upgradefeed/internal/utils"
	"github.com/sw33tLie/upgradefeed/pkg/storage"
	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
)

// SQLite reads the local upgrades table written by "db import". A missing
// database file is a load error, not an empty feed.
type SQLite struct {
	Path string
}

func (s *SQLite) Name() string { return "sqlite" }

func (s *SQLite) Load(ctx context.Context) ([]upgrades.Upgrade, error) {
	path, err := utils.GetAbsDBPath(s.Path)
	if err != nil {
		return nil, &DataLoadError{Source: s.Name(), Op: "resolve path", Err: err}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &DataLoadError{Source: s.Name(), Op: "open", Err: err}
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, &DataLoadError{Source: s.Name(), Op: "open", Err: err}
	}
	defer db.Close()

	items, err := db.ListUpgrades(ctx)
	if err != nil {
		return nil, &DataLoadError{Source: s.Name(), Op: "query", Err: err}
	}
	utils.Log.WithField("count", len(items)).Info("Loaded upgrades from local database")
	return items, nil
}

var _ Loader = (*SQLite)(nil)
