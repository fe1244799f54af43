package params

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

// Table is a per-shot parameter lookup loaded from a two-column CSV of
// shot identifier and value. A header row is skipped when its second
// column is not numeric.
type Table struct {
	path   string
	values map[string]float64
}

// LoadTable reads a per-shot parameter table from path.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parameter table: %w", err)
	}
	defer f.Close()
	values, err := readTable(f)
	if err != nil {
		return nil, fmt.Errorf("parameter table %s: %w", path, err)
	}
	return &Table{path: path, values: values}, nil
}

func readTable(r io.Reader) (map[string]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	values := map[string]float64{}
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			if first {
				first = false
				continue
			}
			return nil, fmt.Errorf("row for shot %q: non-numeric value %q", row[0], row[1])
		}
		first = false
		if _, dup := values[row[0]]; dup {
			return nil, fmt.Errorf("duplicate entry for shot %q", row[0])
		}
		values[row[0]] = v
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no entries")
	}
	return values, nil
}

func (t *Table) Validate() error {
	if len(t.values) == 0 {
		return fmt.Errorf("parameter table %s: empty", t.path)
	}
	return nil
}

func (t *Table) Value(rec *waveform.Record) (float64, bool) {
	v, ok := t.values[rec.Shot()]
	return v, ok
}
