// Package source loads upgrade records from the configured data source.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/sw33tLie/upgradefeed/internal/utils"
	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
	"github.com/tidwall/gjson"
)

// Loader fetches the full ordered record set in one call.
type Loader interface {
	Name() string
	Load(ctx context.Context) ([]upgrades.Upgrade, error)
}

// DataLoadError is the only failure a Loader reports: transport errors,
// non-success statuses and undecodable bodies.
type DataLoadError struct {
	Source     string
	Op         string
	StatusCode int
	Err        error
}

func (e *DataLoadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: unexpected status %d", e.Source, e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// IsDataLoadError reports whether err carries a *DataLoadError.
func IsDataLoadError(err error) bool {
	var dle *DataLoadError
	return errors.As(err, &dle)
}

// Decode parses a JSON array of records. Rows holding an object-valued
// "payload" field are unwrapped; rows with a null payload and non-object
// rows are skipped. Only invalid JSON or a non-array body is an error.
func Decode(body []byte) ([]upgrades.Upgrade, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("response is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("expected a JSON array, got %s", root.Type)
	}

	rows := root.Array()
	out := make([]upgrades.Upgrade, 0, len(rows))
	for i, row := range rows {
		if !row.IsObject() {
			utils.Log.WithField("row", i).Debug("Skipping non-object row")
			continue
		}
		record := row
		if payload := row.Get("payload"); payload.Exists() {
			if !payload.IsObject() {
				utils.Log.WithField("row", i).Debug("Skipping row without payload object")
				continue
			}
			record = payload
		}
		out = append(out, recordFromJSON(record))
	}
	return out, nil
}
