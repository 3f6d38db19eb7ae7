package analytics

import "math"

// Default rolling windows in trading days (roughly 21 per month).
const (
	// ReturnWindow is the rolling period-return window (~3 months).
	ReturnWindow = 63
	// RiskWindow is the rolling correlation/beta window (~6 months).
	RiskWindow = 126
)

// RollingReturn compounds (1+r) over each trailing window and subtracts
// one. Positions before a full window, or windows containing a NaN,
// yield NaN.
func RollingReturn(returns []float64, window int) []float64 {
	out := nanSlice(len(returns))
	if window <= 0 || window > len(returns) {
		return out
	}

	for i := window - 1; i < len(returns); i++ {
		prod := 1.0
		valid := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(returns[j]) {
				valid = false
				break
			}
			prod *= 1 + returns[j]
		}
		if valid {
			out[i] = prod - 1
		}
	}
	return out
}

// RollingCorrelation computes the trailing Pearson correlation of two
// return series over the window.
func RollingCorrelation(a, b []float64, window int) []float64 {
	n := minLen(a, b)
	out := nanSlice(n)
	if window <= 1 || window > n {
		return out
	}

	for i := window - 1; i < n; i++ {
		cov, varA, varB, ok := windowMoments(a, b, i-window+1, i)
		if !ok || varA == 0 || varB == 0 {
			continue
		}
		out[i] = cov / math.Sqrt(varA*varB)
	}
	return out
}

// RollingBeta computes the trailing regression beta of asset returns
// against benchmark returns: cov(asset, bench) / var(bench).
func RollingBeta(asset, bench []float64, window int) []float64 {
	n := minLen(asset, bench)
	out := nanSlice(n)
	if window <= 1 || window > n {
		return out
	}

	for i := window - 1; i < n; i++ {
		cov, _, varB, ok := windowMoments(asset, bench, i-window+1, i)
		if !ok || varB == 0 {
			continue
		}
		out[i] = cov / varB
	}
	return out
}

// Drawdown returns level/cummax − 1 for a level series.
func Drawdown(levels []float64) []float64 {
	out := nanSlice(len(levels))
	peak := math.NaN()
	for i, v := range levels {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(peak) || v > peak {
			peak = v
		}
		if peak != 0 {
			out[i] = v/peak - 1
		}
	}
	return out
}

// Sub subtracts b from a elementwise; NaN propagates.
func Sub(a, b []float64) []float64 {
	n := minLen(a, b)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] - b[i]
	}
	return out
}

// windowMoments computes sample covariance and variances over the
// inclusive index range [lo, hi]. ok is false when the range holds NaN.
func windowMoments(a, b []float64, lo, hi int) (cov, varA, varB float64, ok bool) {
	n := float64(hi - lo + 1)

	var sumA, sumB float64
	for j := lo; j <= hi; j++ {
		if math.IsNaN(a[j]) || math.IsNaN(b[j]) {
			return 0, 0, 0, false
		}
		sumA += a[j]
		sumB += b[j]
	}
	meanA, meanB := sumA/n, sumB/n

	for j := lo; j <= hi; j++ {
		da, db := a[j]-meanA, b[j]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	// Sample (n-1) normalization, matching the original analysis.
	cov /= n - 1
	varA /= n - 1
	varB /= n - 1
	return cov, varA, varB, true
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func minLen(a, b []float64) int {
	if len(a) < len(b) {
		return len(a)
	}
	return len(b)
}
