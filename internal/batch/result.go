package batch

import (
	"sort"
	"strings"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

// Row is the flattened projection of one successful record: identity,
// geolocation, and every terminal field under the results namespace,
// keyed by its path with the namespace stripped.
type Row struct {
	Shot   string
	Lon    float64
	Lat    float64
	Fields map[string]waveform.Value
}

// Failure is one failure ledger entry.
type Failure struct {
	Shot   string
	Reason string
}

// Counts summarizes a batch run.
type Counts struct {
	Attempted int
	Filtered  int
	Succeeded int
	Failed    int
}

// Result aggregates a batch run: exported rows for the non-failed
// records, the failure ledger, and summary counts. Row order is
// unspecified in parallel mode; sort by shot when order matters.
type Result struct {
	Rows     []Row
	Failures []Failure
	Counts   Counts
}

// SortByShot orders rows and ledger entries by shot identifier.
func (r *Result) SortByShot() {
	sort.Slice(r.Rows, func(i, j int) bool { return r.Rows[i].Shot < r.Rows[j].Shot })
	sort.Slice(r.Failures, func(i, j int) bool { return r.Failures[i].Shot < r.Failures[j].Shot })
}

// rowFor projects a finished record into a result row.
func rowFor(rec *waveform.Record) Row {
	row := Row{
		Shot:   rec.Shot(),
		Lon:    coord(rec, "metadata/coords/lon"),
		Lat:    coord(rec, "metadata/coords/lat"),
		Fields: map[string]waveform.Value{},
	}
	for _, p := range rec.Paths() {
		if !strings.HasPrefix(p, "results/") {
			continue
		}
		v, err := rec.Get(p)
		if err != nil {
			continue
		}
		key := strings.ReplaceAll(strings.TrimPrefix(p, "results/"), "/", "_")
		row.Fields[key] = v
	}
	return row
}

func coord(rec *waveform.Record, path string) float64 {
	v, err := rec.Get(path)
	if err != nil {
		return 0
	}
	s, _ := waveform.AsScalar(v)
	return s
}
