package algorithms

import (
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/pipeline"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

// DefaultHSE is the height scaling exponent used when no per-shot or
// configured value is supplied.
const DefaultHSE = 1.7

// BiwfPipeline returns the built-in biomass index pipeline. The hse
// source decides where the height scaling exponent comes from: a fixed
// constant or a per-shot parameter field.
func BiwfPipeline(hse pipeline.Source) []pipeline.StepSpec {
	return []pipeline.StepSpec{
		{
			Name:     "height",
			Function: "calc_height",
			Inputs: map[string]pipeline.Source{
				"wf":          pipeline.FromPath("raw/wf"),
				"elev_top":    pipeline.FromPath("raw/elev/top"),
				"elev_bottom": pipeline.FromPath("raw/elev/bottom"),
				"elev_ground": pipeline.FromPath("raw/elev/ground"),
			},
			OutputPath: "processed/ht",
		},
		{
			Name:       "dz",
			Function:   "calc_dz",
			Inputs:     map[string]pipeline.Source{"ht": pipeline.FromPath("processed/ht")},
			OutputPath: "processed/dz",
		},
		{
			Name:     "noise",
			Function: "remove_noise",
			Inputs: map[string]pipeline.Source{
				"wf":         pipeline.FromPath("raw/wf"),
				"mean_noise": pipeline.FromPath("raw/mean_noise"),
			},
			OutputPath: "processed/wf_noise_removed",
		},
		{
			Name:       "normalize",
			Function:   "normalize_waveform",
			Inputs:     map[string]pipeline.Source{"wf": pipeline.FromPath("processed/wf_noise_removed")},
			OutputPath: "processed/wf_noise_norm",
		},
		{
			Name:       "smooth",
			Function:   "smooth_waveform",
			Inputs:     map[string]pipeline.Source{"wf": pipeline.FromPath("processed/wf_noise_norm")},
			Params:     map[string]waveform.Value{"sd": waveform.Scalar(3)},
			OutputPath: "processed/wf_noise_norm_smooth",
		},
		{
			Name:     "dp_dz",
			Function: "calc_dp_dz",
			Inputs: map[string]pipeline.Source{
				"wf": pipeline.FromPath("processed/wf_noise_norm_smooth"),
				"dz": pipeline.FromPath("processed/dz"),
			},
			OutputPath: "processed/dp_dz",
		},
		{
			Name:     "segment",
			Function: "separate_veg_ground",
			Inputs: map[string]pipeline.Source{
				"wf": pipeline.FromPath("processed/dp_dz"),
				"ht": pipeline.FromPath("processed/ht"),
				"rh": pipeline.FromPath("raw/rh"),
			},
			Params:     map[string]waveform.Value{"veg_floor": waveform.Scalar(5)},
			OutputPath: "processed/veg_ground_sep",
		},
		{
			Name:     "ground_return",
			Function: "create_ground_return",
			Inputs: map[string]pipeline.Source{
				"wf":            pipeline.FromPath("processed/dp_dz"),
				"ht":            pipeline.FromPath("processed/ht"),
				"ground_bottom": pipeline.FromPath("processed/veg_ground_sep/ground_bottom"),
			},
			Params:     map[string]waveform.Value{"sd_ratio": waveform.Scalar(0.25)},
			OutputPath: "processed/ground_return",
		},
		{
			Name:     "isolate_veg",
			Function: "isolate_vegetation",
			Inputs: map[string]pipeline.Source{
				"wf":            pipeline.FromPath("processed/dp_dz"),
				"ht":            pipeline.FromPath("processed/ht"),
				"veg_top":       pipeline.FromPath("processed/veg_ground_sep/veg_top"),
				"ground_return": pipeline.FromPath("processed/ground_return"),
			},
			OutputPath: "processed/dp_dz_veg_only",
		},
		{
			Name:     "bi",
			Function: "calc_biomass_index",
			Inputs: map[string]pipeline.Source{
				"dp_dz": pipeline.FromPath("processed/dp_dz_veg_only"),
				"dz":    pipeline.FromPath("processed/dz"),
				"ht":    pipeline.FromPath("processed/ht"),
				"hse":   hse,
			},
			OutputPath: "results/biomass_index",
		},
	}
}
