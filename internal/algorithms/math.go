package algorithms

import "math"

// linspace returns n evenly spaced values from start to stop inclusive.
func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// nanSum sums a slice, skipping NaN entries.
func nanSum(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		if !math.IsNaN(x) {
			sum += x
		}
	}
	return sum
}

// nanCumSum returns the running sum of a slice, skipping NaN entries.
func nanCumSum(xs []float64) []float64 {
	out := make([]float64, len(xs))
	var sum float64
	for i, x := range xs {
		if !math.IsNaN(x) {
			sum += x
		}
		out[i] = sum
	}
	return out
}

// stdDev returns the population standard deviation, or NaN for an empty
// slice.
func stdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)))
}

// argMinAbs returns the first index of the minimum absolute value.
func argMinAbs(xs []float64) int {
	idx := 0
	min := math.Abs(xs[0])
	for i, x := range xs {
		if a := math.Abs(x); a < min {
			min = a
			idx = i
		}
	}
	return idx
}

// round2 rounds to two decimal places, half away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// gaussianSmooth applies a one-dimensional Gaussian filter with the
// given standard deviation. The kernel is truncated at four standard
// deviations and the input is extended by reflection at both edges.
func gaussianSmooth(wf []float64, sd float64) []float64 {
	radius := int(4*sd + 0.5)
	if radius < 1 || len(wf) == 0 {
		out := make([]float64, len(wf))
		copy(out, wf)
		return out
	}
	weights := make([]float64, 2*radius+1)
	var total float64
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-0.5 * float64(i) * float64(i) / (sd * sd))
		weights[i+radius] = w
		total += w
	}
	for i := range weights {
		weights[i] /= total
	}

	n := len(wf)
	reflect := func(i int) int {
		for i < 0 || i >= n {
			if i < 0 {
				i = -i - 1
			}
			if i >= n {
				i = 2*n - i - 1
			}
		}
		return i
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var acc float64
		for k := -radius; k <= radius; k++ {
			acc += wf[reflect(i+k)] * weights[k+radius]
		}
		out[i] = acc
	}
	return out
}
