package algorithms

import "github.com/i-c-grant/ni-meister-gedi-biomass/internal/pipeline"

// DefaultRegistry returns a registry populated with the built-in
// waveform kernels. Alternate biomass formulations are registered alongside the
// defaults so pipeline configurations can swap them in by name.
func DefaultRegistry() *pipeline.Registry {
	r := pipeline.NewRegistry()
	r.MustRegister("calc_height", CalcHeight,
		[]string{"wf", "elev_top", "elev_bottom", "elev_ground"})
	r.MustRegister("calc_dz", CalcDz, []string{"ht"})
	r.MustRegister("remove_noise", RemoveNoise, []string{"wf", "mean_noise"})
	r.MustRegister("normalize_waveform", NormalizeWaveform, []string{"wf"})
	r.MustRegister("smooth_waveform", SmoothWaveform, []string{"wf", "sd"})
	r.MustRegister("calc_dp_dz", CalcDpDz, []string{"wf", "dz"})
	r.MustRegister("truncate_waveform", TruncateWaveform,
		[]string{"wf", "ht", "floor", "ceiling"})
	r.MustRegister("separate_veg_ground", SeparateVegGround,
		[]string{"wf", "ht", "rh", "veg_floor"})
	r.MustRegister("create_ground_return", CreateGroundReturn,
		[]string{"wf", "ht", "ground_bottom", "sd_ratio"})
	r.MustRegister("isolate_vegetation", IsolateVegetation,
		[]string{"wf", "ht", "veg_top", "ground_return"})
	r.MustRegister("calc_biomass_index", CalcBiomassIndex,
		[]string{"dp_dz", "dz", "ht", "hse"})
	r.MustRegister("calc_biomass_index_simple", CalcBiomassIndexSimple,
		[]string{"dp_dz", "dz", "ht", "floor", "ceiling", "hse"})
	r.MustRegister("calc_gap_prob", CalcGapProb,
		[]string{"wf_per_height", "veg_first_idx", "veg_last_idx", "ground_last_idx"})
	return r
}
