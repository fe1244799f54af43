package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

// TraceWriter writes per-bin waveform traces: for each record, one CSV
// row per waveform sample, with the configured columns read from record
// paths. Every configured column must resolve to an array of the same
// length within a record.
type TraceWriter struct {
	cols map[string]string
}

// NewTraceWriter maps column names to record field paths.
func NewTraceWriter(cols map[string]string) *TraceWriter {
	return &TraceWriter{cols: cols}
}

// WriteFile writes traces for the records to a CSV file.
func (tw *TraceWriter) WriteFile(path string, records []*waveform.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()
	if err := tw.Write(f, records); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// Write writes traces for the records; failed records are skipped.
func (tw *TraceWriter) Write(w io.Writer, records []*waveform.Record) error {
	names := make([]string, 0, len(tw.cols))
	for name := range tw.cols {
		names = append(names, name)
	}
	sort.Strings(names)

	cw := csv.NewWriter(w)
	header := append([]string{"shot_number", "bin"}, names...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Failed() {
			continue
		}
		if err := tw.writeRecord(cw, rec, names); err != nil {
			return fmt.Errorf("shot %s: %w", rec.Shot(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (tw *TraceWriter) writeRecord(cw *csv.Writer, rec *waveform.Record, names []string) error {
	arrays := make([][]float64, len(names))
	length := -1
	for i, name := range names {
		v, err := rec.Get(tw.cols[name])
		if err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		a, ok := waveform.AsArray(v)
		if !ok {
			return fmt.Errorf("column %q: path %s is not an array", name, tw.cols[name])
		}
		if length == -1 {
			length = len(a)
		} else if len(a) != length {
			return fmt.Errorf("column %q has %d bins, first column has %d", name, len(a), length)
		}
		arrays[i] = a
	}
	for bin := 0; bin < length; bin++ {
		line := make([]string, 0, len(names)+2)
		line = append(line, rec.Shot(), fmt.Sprintf("%d", bin))
		for _, a := range arrays {
			line = append(line, formatFloat(a[bin]))
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	return nil
}
