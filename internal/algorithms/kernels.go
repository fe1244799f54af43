package algorithms

import (
	"errors"
	"fmt"
	"math"

	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/pipeline"
	"github.com/i-c-grant/ni-meister-gedi-biomass/internal/waveform"
)

// CalcHeight computes the height above ground of each waveform return.
// Elevations run linearly from the top to the bottom of the receive
// window; subtracting the ground elevation yields per-bin heights.
func CalcHeight(args pipeline.Args) (waveform.Value, error) {
	wf, err := arrayArg(args, "wf")
	if err != nil {
		return nil, err
	}
	top, err := scalarArg(args, "elev_top")
	if err != nil {
		return nil, err
	}
	bottom, err := scalarArg(args, "elev_bottom")
	if err != nil {
		return nil, err
	}
	ground, err := scalarArg(args, "elev_ground")
	if err != nil {
		return nil, err
	}
	if len(wf) < 2 {
		return nil, fmt.Errorf("waveform too short: %d bins", len(wf))
	}
	ht := linspace(top, bottom, len(wf))
	for i := range ht {
		ht[i] -= ground
	}
	return waveform.Array(ht), nil
}

// CalcDz returns the height increment between adjacent waveform bins.
func CalcDz(args pipeline.Args) (waveform.Value, error) {
	ht, err := arrayArg(args, "ht")
	if err != nil {
		return nil, err
	}
	if len(ht) < 2 {
		return nil, errors.New("height array too short for increment")
	}
	return waveform.Scalar(ht[0] - ht[1]), nil
}

// RemoveNoise subtracts the mean noise level, flooring at zero.
func RemoveNoise(args pipeline.Args) (waveform.Value, error) {
	wf, err := arrayArg(args, "wf")
	if err != nil {
		return nil, err
	}
	mean, err := scalarArg(args, "mean_noise")
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(wf))
	for i, v := range wf {
		out[i] = math.Max(v-mean, 0)
	}
	return waveform.Array(out), nil
}

// NormalizeWaveform divides the waveform by its total return energy.
func NormalizeWaveform(args pipeline.Args) (waveform.Value, error) {
	wf, err := arrayArg(args, "wf")
	if err != nil {
		return nil, err
	}
	total := nanSum(wf)
	if total == 0 {
		return nil, errors.New("waveform has zero total energy")
	}
	out := make([]float64, len(wf))
	for i, v := range wf {
		out[i] = v / total
	}
	return waveform.Array(out), nil
}

// SmoothWaveform applies a Gaussian filter with standard deviation sd.
func SmoothWaveform(args pipeline.Args) (waveform.Value, error) {
	wf, err := arrayArg(args, "wf")
	if err != nil {
		return nil, err
	}
	sd, err := scalarArg(args, "sd")
	if err != nil {
		return nil, err
	}
	if sd <= 0 {
		return nil, fmt.Errorf("smoothing sd must be positive, got %v", sd)
	}
	return waveform.Array(gaussianSmooth(wf, sd)), nil
}

// CalcDpDz converts waveform returns to return energy per unit height,
// clamping negative returns to zero.
func CalcDpDz(args pipeline.Args) (waveform.Value, error) {
	wf, err := arrayArg(args, "wf")
	if err != nil {
		return nil, err
	}
	dz, err := scalarArg(args, "dz")
	if err != nil {
		return nil, err
	}
	if dz == 0 {
		return nil, errors.New("zero height increment")
	}
	out := make([]float64, len(wf))
	for i, v := range wf {
		d := v / dz
		if d < 0 {
			d = 0
		}
		out[i] = d
	}
	return waveform.Array(out), nil
}

// TruncateWaveform masks returns outside [floor, ceiling] meters above
// ground with NaN.
func TruncateWaveform(args pipeline.Args) (waveform.Value, error) {
	wf, err := arrayArg(args, "wf")
	if err != nil {
		return nil, err
	}
	ht, err := arrayArg(args, "ht")
	if err != nil {
		return nil, err
	}
	floor, err := scalarArg(args, "floor")
	if err != nil {
		return nil, err
	}
	ceiling, err := scalarArg(args, "ceiling")
	if err != nil {
		return nil, err
	}
	if len(wf) != len(ht) {
		return nil, fmt.Errorf("length mismatch: wf %d, ht %d", len(wf), len(ht))
	}
	out := make([]float64, len(wf))
	for i, v := range wf {
		if ht[i] >= floor && ht[i] <= ceiling {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return waveform.Array(out), nil
}

// SeparateVegGround locates the ground return region and the vegetation
// return region within a waveform.
//
// The ground return is assumed symmetric: the below-noise offset found
// under the ground peak is mirrored above it. The vegetation region runs
// from the top of the canopy (the RH100 height) down to either the
// configured floor or the top of the ground return, whichever is lower.
func SeparateVegGround(args pipeline.Args) (waveform.Value, error) {
	wf, err := arrayArg(args, "wf")
	if err != nil {
		return nil, err
	}
	ht, err := arrayArg(args, "ht")
	if err != nil {
		return nil, err
	}
	rh, err := arrayArg(args, "rh")
	if err != nil {
		return nil, err
	}
	vegFloor, err := scalarArg(args, "veg_floor")
	if err != nil {
		return nil, err
	}
	if len(wf) != len(ht) {
		return nil, fmt.Errorf("length mismatch: wf %d, ht %d", len(wf), len(ht))
	}
	if len(rh) < 101 {
		return nil, fmt.Errorf("relative height array has %d entries, want 101", len(rh))
	}
	rh100 := rh[100]

	// First return at or below the canopy top.
	vegFirst := 0
	for i, h := range ht {
		if h <= rh100 {
			vegFirst = i
			break
		}
	}
	groundIdx := argMinAbs(ht)

	// Noise level from the part of the waveform above the canopy; fall
	// back to the full above-ground waveform when that region is empty
	// or everything below the ground peak exceeds it.
	noise := stdDev(wf[:vegFirst]) * 2
	offset, found := firstBelow(wf[groundIdx:], noise)
	if !found {
		upper := groundIdx - 1
		if upper < 0 {
			upper = 0
		}
		noise = stdDev(wf[:upper]) * 2
		offset, found = firstBelow(wf[groundIdx:], noise)
		if !found {
			return nil, fmt.Errorf("no returns below noise level %v found below ground return", noise)
		}
	}

	lastGround := groundIdx + offset
	if lastGround > len(wf)-1 {
		lastGround = len(wf) - 1
	}
	firstGround := groundIdx - offset
	if firstGround < 0 {
		firstGround = 0
	}

	lastVegHeight := math.Min(vegFloor, -ht[lastGround])
	vegLast := -1
	for i, h := range ht {
		if h >= lastVegHeight {
			vegLast = i
		}
	}
	if vegLast < 0 {
		return nil, fmt.Errorf("no vegetation returns above height %v", lastVegHeight)
	}

	// Half a bin of buffer above the highest detected return covers the
	// canopy dropoff before the first empty bin.
	vegBuffer := (ht[1] - ht[0]) * 0.5

	return waveform.Mapping{
		"ground_top":    waveform.Scalar(ht[firstGround]),
		"ground_bottom": waveform.Scalar(ht[lastGround]),
		"veg_top":       waveform.Scalar(rh100 + vegBuffer),
		"veg_bottom":    waveform.Scalar(ht[vegLast]),
	}, nil
}

// firstBelow returns the first index whose value is below the threshold.
func firstBelow(xs []float64, threshold float64) (int, bool) {
	for i, x := range xs {
		if x < threshold {
			return i, true
		}
	}
	return 0, false
}

// CreateGroundReturn models the ground return as a Gaussian centered at
// the ground peak, scaled to the peak's amplitude. The spread follows
// the depth of the ground return region scaled by sd_ratio.
func CreateGroundReturn(args pipeline.Args) (waveform.Value, error) {
	wf, err := arrayArg(args, "wf")
	if err != nil {
		return nil, err
	}
	ht, err := arrayArg(args, "ht")
	if err != nil {
		return nil, err
	}
	groundBottom, err := scalarArg(args, "ground_bottom")
	if err != nil {
		return nil, err
	}
	sdRatio, err := scalarArg(args, "sd_ratio")
	if err != nil {
		return nil, err
	}
	if len(wf) != len(ht) {
		return nil, fmt.Errorf("length mismatch: wf %d, ht %d", len(wf), len(ht))
	}
	sigma := math.Abs(groundBottom) * sdRatio * 2
	if sigma == 0 {
		return nil, errors.New("ground return has zero spread")
	}
	peak := wf[argMinAbs(ht)]
	out := make([]float64, len(wf))
	for i := range out {
		out[i] = round2(math.Exp(-(ht[i]*ht[i])/(2*sigma*sigma))) * peak
	}
	return waveform.Array(out), nil
}

// IsolateVegetation removes the modeled ground return from the waveform
// and zeroes returns above the canopy top.
func IsolateVegetation(args pipeline.Args) (waveform.Value, error) {
	wf, err := arrayArg(args, "wf")
	if err != nil {
		return nil, err
	}
	ht, err := arrayArg(args, "ht")
	if err != nil {
		return nil, err
	}
	vegTop, err := scalarArg(args, "veg_top")
	if err != nil {
		return nil, err
	}
	ground, err := arrayArg(args, "ground_return")
	if err != nil {
		return nil, err
	}
	if len(wf) != len(ht) || len(wf) != len(ground) {
		return nil, fmt.Errorf("length mismatch: wf %d, ht %d, ground %d",
			len(wf), len(ht), len(ground))
	}
	out := make([]float64, len(wf))
	for i, v := range wf {
		d := v - ground[i]
		if d < 0 {
			d = 0
		}
		if ht[i] > vegTop {
			d = 0
		}
		out[i] = d
	}
	return waveform.Array(out), nil
}

// CalcBiomassIndex computes the Ni-Meister biomass index: the sum of
// per-height return energy weighted by height raised to the height
// scaling exponent, with below-ground returns contributing negatively to
// cancel the above-ground half of the ground return.
func CalcBiomassIndex(args pipeline.Args) (waveform.Value, error) {
	dpDz, err := arrayArg(args, "dp_dz")
	if err != nil {
		return nil, err
	}
	dz, err := scalarArg(args, "dz")
	if err != nil {
		return nil, err
	}
	ht, err := arrayArg(args, "ht")
	if err != nil {
		return nil, err
	}
	hse, err := scalarArg(args, "hse")
	if err != nil {
		return nil, err
	}
	if len(dpDz) != len(ht) {
		return nil, fmt.Errorf("length mismatch: dp_dz %d, ht %d", len(dpDz), len(ht))
	}
	var index float64
	for i, d := range dpDz {
		if math.IsNaN(d) {
			continue
		}
		index += d * math.Pow(math.Abs(ht[i]), hse) * sign(ht[i])
	}
	return waveform.Scalar(index * dz), nil
}

// CalcBiomassIndexSimple is CalcBiomassIndex restricted to returns
// within [floor, ceiling] meters above ground.
func CalcBiomassIndexSimple(args pipeline.Args) (waveform.Value, error) {
	dpDz, err := arrayArg(args, "dp_dz")
	if err != nil {
		return nil, err
	}
	dz, err := scalarArg(args, "dz")
	if err != nil {
		return nil, err
	}
	ht, err := arrayArg(args, "ht")
	if err != nil {
		return nil, err
	}
	floor, err := scalarArg(args, "floor")
	if err != nil {
		return nil, err
	}
	ceiling, err := scalarArg(args, "ceiling")
	if err != nil {
		return nil, err
	}
	hse, err := scalarArg(args, "hse")
	if err != nil {
		return nil, err
	}
	if len(dpDz) != len(ht) {
		return nil, fmt.Errorf("length mismatch: dp_dz %d, ht %d", len(dpDz), len(ht))
	}
	var index float64
	for i, d := range dpDz {
		if math.IsNaN(d) || ht[i] < floor || ht[i] > ceiling {
			continue
		}
		index += d * math.Pow(math.Abs(ht[i]), hse) * sign(ht[i])
	}
	return waveform.Scalar(index * dz), nil
}

// CalcGapProb derives gap probability, vegetation cover, and foliage
// profiles from per-height return energy and the vegetation and ground
// region indices.
func CalcGapProb(args pipeline.Args) (waveform.Value, error) {
	w, err := arrayArg(args, "wf_per_height")
	if err != nil {
		return nil, err
	}
	vegFirst, err := indexArg(args, "veg_first_idx", len(w))
	if err != nil {
		return nil, err
	}
	vegLast, err := indexArg(args, "veg_last_idx", len(w))
	if err != nil {
		return nil, err
	}
	groundLast, err := indexArg(args, "ground_last_idx", len(w))
	if err != nil {
		return nil, err
	}
	if vegFirst > vegLast || vegLast > groundLast {
		return nil, fmt.Errorf("index order: veg %d..%d, ground end %d",
			vegFirst, vegLast, groundLast)
	}

	vegSum := nanSum(w[vegFirst:vegLast])
	groundStart := vegLast + 1
	if groundStart > groundLast {
		groundStart = groundLast
	}
	groundSum := nanSum(w[groundStart:groundLast])
	total := vegSum + groundSum
	if total == 0 {
		return nil, errors.New("zero total return energy in vegetation and ground regions")
	}
	vegCover := vegSum / total

	pGap := make([]float64, len(w))
	for i := range pGap {
		pGap[i] = math.NaN()
	}
	for i, c := range nanCumSum(w[vegFirst:vegLast]) {
		pGap[vegFirst+i] = 1 - c/total
	}

	foliageAccum := make([]float64, len(w))
	foliageDens := make([]float64, len(w))
	for i := range w {
		foliageAccum[i] = -math.Log(pGap[i]) / 0.5
		foliageDens[i] = w[i] / pGap[i] / 0.5
	}

	return waveform.Mapping{
		"veg_cover":       waveform.Scalar(vegCover),
		"gap_prob":        waveform.Array(pGap),
		"foliage_density": waveform.Array(foliageDens),
		"foliage_accum":   waveform.Array(foliageAccum),
	}, nil
}
