// Package ingest provides the business logic for load data ingestion.
// This package has no HTTP dependencies and can be driven by any frontend.
package ingest

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Kind describes one of the known record kinds and its backing table.
type Kind struct {
	Key         string // Unique identifier, also the table name: "load_fcst_d"
	Label       string // Display name: "Day-Ahead Load Forecast"
	ValueColumn string // "load_fcst" or "load_act"
	HasRevision bool   // Forecast kinds carry a revision column
	FileKey     string // Canonical blob key for range queries
}

// Table returns the database table backing this kind.
func (k Kind) Table() string {
	return k.Key
}

// RequiredColumns returns the header columns a file of this kind must carry.
func (k Kind) RequiredColumns() []string {
	cols := []string{"date", "time", k.ValueColumn}
	if k.HasRevision {
		cols = append(cols, "revision")
	}
	return cols
}

// actualLoadPrefix marks file names that carry observed load rather
// than a forecast publication.
const actualLoadPrefix = "load_act"

var kinds = map[string]Kind{
	"load_act": {
		Key:         "load_act",
		Label:       "Actual Load",
		ValueColumn: "load_act",
		FileKey:     "load_act.csv",
	},
	"load_fcst_d": {
		Key:         "load_fcst_d",
		Label:       "Day-Ahead Load Forecast",
		ValueColumn: "load_fcst",
		HasRevision: true,
		FileKey:     "d_load_fcst.csv",
	},
	"load_fcst_id": {
		Key:         "load_fcst_id",
		Label:       "Intraday Load Forecast",
		ValueColumn: "load_fcst",
		HasRevision: true,
		FileKey:     "id_load_fcst.csv",
	},
	"load_fcst_wk": {
		Key:         "load_fcst_wk",
		Label:       "Week-Ahead Load Forecast",
		ValueColumn: "load_fcst",
		HasRevision: true,
		FileKey:     "wk_load_fcst.csv",
	},
	"load_fcst_ens": {
		Key:         "load_fcst_ens",
		Label:       "Ensemble Load Forecast",
		ValueColumn: "load_fcst",
		HasRevision: true,
		FileKey:     "ens_load_fcst.csv",
	},
}

// KindByKey returns a kind definition by its key.
func KindByKey(key string) (Kind, bool) {
	k, ok := kinds[key]
	return k, ok
}

// AllKinds returns every known kind, sorted by key for consistent ordering.
func AllKinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// KindForFile infers the record kind from a file name.
//
// Names beginning with the actual-load prefix map to the shared load_act
// table. Anything else is a forecast file whose leading underscore-delimited
// token selects the source table, e.g. "d_load_fcst_archive.csv" maps to
// load_fcst_d.
func KindForFile(fileName string) (Kind, error) {
	base := strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))

	if strings.HasPrefix(base, actualLoadPrefix) {
		return kinds["load_act"], nil
	}

	source, _, _ := strings.Cut(base, "_")
	if k, ok := kinds["load_fcst_"+source]; ok {
		return k, nil
	}
	return Kind{}, fmt.Errorf("%q: %w", fileName, ErrUnknownKind)
}
