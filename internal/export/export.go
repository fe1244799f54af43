// Package export writes batch results for external tabular and
// geospatial tooling. Two projections exist: flat rows, one line per
// successful shot, and per-bin waveform traces, one line per waveform
// sample.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/batch"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

// WriteResultRows writes the flat projection of a batch result:
// identity, geolocation, and every scalar results field. Columns are
// the sorted union of field names across rows; a field an individual
// row lacks is left empty. Array-valued fields do not fit a flat row
// and are rejected.
func WriteResultRows(path string, res *batch.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()
	if err := writeResultRows(f, res); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

func writeResultRows(w io.Writer, res *batch.Result) error {
	cols := map[string]bool{}
	for _, row := range res.Rows {
		for k := range row.Fields {
			cols[k] = true
		}
	}
	names := make([]string, 0, len(cols))
	for k := range cols {
		names = append(names, k)
	}
	sort.Strings(names)

	cw := csv.NewWriter(w)
	header := append([]string{"shot_number", "lon", "lat"}, names...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range res.Rows {
		line := []string{row.Shot, formatFloat(row.Lon), formatFloat(row.Lat)}
		for _, name := range names {
			v, ok := row.Fields[name]
			if !ok {
				line = append(line, "")
				continue
			}
			cell, err := formatValue(name, v)
			if err != nil {
				return fmt.Errorf("shot %s: %w", row.Shot, err)
			}
			line = append(line, cell)
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(name string, v waveform.Value) (string, error) {
	switch x := v.(type) {
	case waveform.Scalar:
		return formatFloat(float64(x)), nil
	case waveform.Text:
		return string(x), nil
	default:
		return "", fmt.Errorf("field %q: %T does not fit a flat row", name, v)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
