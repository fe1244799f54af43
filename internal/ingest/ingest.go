// Package ingest builds waveform records from pre-extracted shot
// bundles. A bundle is the YAML hand-off from the granule extraction
// layer: one document per batch, one entry per shot, with the raw
// waveform, ancillary values, and shot metadata already parsed out of
// the satellite formats.
package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

type bundle struct {
	Shots []shotDoc `yaml:"shots"`
}

type shotDoc struct {
	ShotNumber  string             `yaml:"shot_number"`
	Beam        string             `yaml:"beam"`
	Lon         *float64           `yaml:"lon"`
	Lat         *float64           `yaml:"lat"`
	Time        string             `yaml:"time"`
	QualityFlag *float64           `yaml:"quality_flag"`
	SurfaceFlag *float64           `yaml:"surface_flag"`
	NumModes    *float64           `yaml:"num_modes"`
	Landcover   map[string]float64 `yaml:"landcover"`
	MeanNoise   *float64           `yaml:"mean_noise"`
	Wf          []float64          `yaml:"wf"`
	Rh          []float64          `yaml:"rh"`
	Elev        *elevDoc           `yaml:"elev"`
}

type elevDoc struct {
	Top    *float64 `yaml:"top"`
	Bottom *float64 `yaml:"bottom"`
	Ground *float64 `yaml:"ground"`
}

// Load reads a shot bundle file and constructs one record per shot.
// Shot identifiers must be present and unique. Optional fields a shot
// lacks are simply absent from its record; a pipeline step that needs
// them will fail for that record alone.
func Load(path string) ([]*waveform.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shot bundle: %w", err)
	}
	return Parse(data)
}

// Parse decodes a shot bundle document.
func Parse(data []byte) ([]*waveform.Record, error) {
	var b bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse shot bundle: %w", err)
	}
	if len(b.Shots) == 0 {
		return nil, fmt.Errorf("shot bundle has no shots")
	}
	seen := map[string]bool{}
	records := make([]*waveform.Record, 0, len(b.Shots))
	for i, doc := range b.Shots {
		if doc.ShotNumber == "" {
			return nil, fmt.Errorf("shot %d: missing shot_number", i)
		}
		if seen[doc.ShotNumber] {
			return nil, fmt.Errorf("duplicate shot_number %q", doc.ShotNumber)
		}
		seen[doc.ShotNumber] = true
		rec, err := buildRecord(doc)
		if err != nil {
			return nil, fmt.Errorf("shot %s: %w", doc.ShotNumber, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func buildRecord(doc shotDoc) (*waveform.Record, error) {
	rec := waveform.New(doc.ShotNumber)
	set := func(path string, v waveform.Value) error {
		return rec.Set(path, v)
	}

	if err := set("metadata/shot_number", waveform.Text(doc.ShotNumber)); err != nil {
		return nil, err
	}
	if doc.Beam != "" {
		if err := set("metadata/beam", waveform.Text(doc.Beam)); err != nil {
			return nil, err
		}
	}
	if doc.Lon != nil && doc.Lat != nil {
		coords := waveform.Mapping{
			"lon": waveform.Scalar(*doc.Lon),
			"lat": waveform.Scalar(*doc.Lat),
		}
		if err := set("metadata/coords", coords); err != nil {
			return nil, err
		}
	}
	if doc.Time != "" {
		if err := set("metadata/time", waveform.Text(doc.Time)); err != nil {
			return nil, err
		}
	}

	flags := waveform.Mapping{}
	if doc.QualityFlag != nil {
		flags["quality"] = waveform.Scalar(*doc.QualityFlag)
	}
	if doc.SurfaceFlag != nil {
		flags["surface"] = waveform.Scalar(*doc.SurfaceFlag)
	}
	if len(flags) > 0 {
		if err := set("metadata/flags", flags); err != nil {
			return nil, err
		}
	}
	if doc.NumModes != nil {
		modes := waveform.Mapping{"num_modes": waveform.Scalar(*doc.NumModes)}
		if err := set("metadata/modes", modes); err != nil {
			return nil, err
		}
	}
	if len(doc.Landcover) > 0 {
		lc := waveform.Mapping{}
		for k, v := range doc.Landcover {
			lc[k] = waveform.Scalar(v)
		}
		if err := set("metadata/landcover", lc); err != nil {
			return nil, err
		}
	}

	if len(doc.Wf) > 0 {
		if err := set("raw/wf", waveform.Array(doc.Wf)); err != nil {
			return nil, err
		}
	}
	if doc.MeanNoise != nil {
		if err := set("raw/mean_noise", waveform.Scalar(*doc.MeanNoise)); err != nil {
			return nil, err
		}
	}
	if len(doc.Rh) > 0 {
		if err := set("raw/rh", waveform.Array(doc.Rh)); err != nil {
			return nil, err
		}
	}
	if doc.Elev != nil {
		elev := waveform.Mapping{}
		if doc.Elev.Top != nil {
			elev["top"] = waveform.Scalar(*doc.Elev.Top)
		}
		if doc.Elev.Bottom != nil {
			elev["bottom"] = waveform.Scalar(*doc.Elev.Bottom)
		}
		if doc.Elev.Ground != nil {
			elev["ground"] = waveform.Scalar(*doc.Elev.Ground)
		}
		if len(elev) > 0 {
			if err := set("raw/elev", elev); err != nil {
				return nil, err
			}
		}
	}
	return rec, nil
}

// RawPaths is the field contract the extraction layer supplies: the
// paths a well-formed shot provides, used for static pipeline
// validation. A shot missing one of these at run time fails
// individually during step input resolution.
func RawPaths() []string {
	return []string{
		"raw/wf",
		"raw/mean_noise",
		"raw/rh",
		"raw/elev/top",
		"raw/elev/bottom",
		"raw/elev/ground",
		"metadata/shot_number",
		"metadata/beam",
		"metadata/coords/lon",
		"metadata/coords/lat",
		"metadata/time",
		"metadata/flags/quality",
		"metadata/flags/surface",
		"metadata/modes/num_modes",
		"metadata/landcover/modis_treecover",
		"metadata/landcover/modis_nonvegetated",
		"metadata/landcover/landsat_treecover",
	}
}
