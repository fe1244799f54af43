package filter

import "github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"

// Quality filters read per-shot indicator fields stored at ingest time.
// Each is independently configurable; a record missing the indicator is
// rejected.

func buildQualityFlag(params Params) (Predicate, error) {
	want, err := floatParam(params, "value", 1)
	if err != nil {
		return nil, err
	}
	return func(rec *waveform.Record) bool {
		flag, ok := recScalar(rec, "metadata/flags/quality")
		return ok && flag == want
	}, nil
}

func buildMinModes(params Params) (Predicate, error) {
	min, err := floatParam(params, "min", 1)
	if err != nil {
		return nil, err
	}
	return func(rec *waveform.Record) bool {
		modes, ok := recScalar(rec, "metadata/modes/num_modes")
		return ok && modes >= min
	}, nil
}

func buildMinTreecover(params Params) (Predicate, error) {
	min, err := floatParam(params, "min", 10)
	if err != nil {
		return nil, err
	}
	return func(rec *waveform.Record) bool {
		cover, ok := recScalar(rec, "metadata/landcover/modis_treecover")
		return ok && cover > min
	}, nil
}

// buildMinSeparation keeps waveforms whose canopy top sits at least min
// meters above the ground return, read from the RH100 percentile.
func buildMinSeparation(params Params) (Predicate, error) {
	min, err := floatParam(params, "min", 0)
	if err != nil {
		return nil, err
	}
	return func(rec *waveform.Record) bool {
		v, err := rec.Get("raw/rh")
		if err != nil {
			return false
		}
		rh, ok := waveform.AsArray(v)
		if !ok || len(rh) < 101 {
			return false
		}
		return rh[100] >= min
	}, nil
}
