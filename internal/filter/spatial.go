package filter

import (
	"fmt"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

type point struct{ lon, lat float64 }

type ring []point

// buildSpatial keeps waveforms whose footprint lies inside the boundary
// rings. Without rings the filter passes everything, matching an absent
// boundary. Rings are closed implicitly; holes are not supported.
func buildSpatial(params Params) (Predicate, error) {
	rings, err := ringsParam(params, "rings")
	if err != nil {
		return nil, err
	}
	if len(rings) == 0 {
		return func(*waveform.Record) bool { return true }, nil
	}
	return func(rec *waveform.Record) bool {
		lon, ok := recScalar(rec, "metadata/coords/lon")
		if !ok {
			return false
		}
		lat, ok := recScalar(rec, "metadata/coords/lat")
		if !ok {
			return false
		}
		p := point{lon: lon, lat: lat}
		for _, r := range rings {
			if r.contains(p) {
				return true
			}
		}
		return false
	}, nil
}

// contains runs an even-odd ray cast from the point toward +lon.
func (r ring) contains(p point) bool {
	inside := false
	n := len(r)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := r[i], r[j]
		if (a.lat > p.lat) != (b.lat > p.lat) {
			cross := (b.lon-a.lon)*(p.lat-a.lat)/(b.lat-a.lat) + a.lon
			if p.lon < cross {
				inside = !inside
			}
		}
	}
	return inside
}

func ringsParam(params Params, name string) ([]ring, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return nil, nil
	}
	if typed, ok := v.([][][]float64); ok {
		return typedRings(name, typed)
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("parameter %q: expected list of rings, got %T", name, v)
	}
	rings := make([]ring, 0, len(raw))
	for i, rv := range raw {
		pts, ok := rv.([]any)
		if !ok {
			return nil, fmt.Errorf("parameter %q: ring %d is not a list", name, i)
		}
		if len(pts) < 3 {
			return nil, fmt.Errorf("parameter %q: ring %d has %d points, need at least 3", name, i, len(pts))
		}
		r := make(ring, 0, len(pts))
		for j, pv := range pts {
			pair, ok := pv.([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("parameter %q: ring %d point %d is not a [lon, lat] pair", name, i, j)
			}
			lon, okLon := asFloat(pair[0])
			lat, okLat := asFloat(pair[1])
			if !okLon || !okLat {
				return nil, fmt.Errorf("parameter %q: ring %d point %d has non-numeric coordinates", name, i, j)
			}
			r = append(r, point{lon: lon, lat: lat})
		}
		rings = append(rings, r)
	}
	return rings, nil
}

func typedRings(name string, raw [][][]float64) ([]ring, error) {
	rings := make([]ring, 0, len(raw))
	for i, pts := range raw {
		if len(pts) < 3 {
			return nil, fmt.Errorf("parameter %q: ring %d has %d points, need at least 3", name, i, len(pts))
		}
		r := make(ring, 0, len(pts))
		for j, pair := range pts {
			if len(pair) != 2 {
				return nil, fmt.Errorf("parameter %q: ring %d point %d is not a [lon, lat] pair", name, i, j)
			}
			r = append(r, point{lon: pair[0], lat: pair[1]})
		}
		rings = append(rings, r)
	}
	return rings, nil
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
