package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingReturn(t *testing.T) {
	got := RollingReturn([]float64{0.1, 0.2, -0.1}, 2)
	require.Len(t, got, 3)

	assert.True(t, math.IsNaN(got[0]), "no value before a full window")
	assert.InDelta(t, 0.32, got[1], 1e-12) // 1.1*1.2-1
	assert.InDelta(t, 0.08, got[2], 1e-12) // 1.2*0.9-1
}

func TestRollingReturn_NaNPropagates(t *testing.T) {
	got := RollingReturn([]float64{0.1, math.NaN(), 0.2, 0.1}, 2)
	assert.True(t, math.IsNaN(got[1]))
	assert.True(t, math.IsNaN(got[2]))
	assert.InDelta(t, 1.2*1.1-1, got[3], 1e-12)
}

func TestRollingBeta_ScaledSeries(t *testing.T) {
	bench := []float64{0.01, -0.02, 0.03, 0.04, -0.01}
	asset := make([]float64, len(bench))
	for i, v := range bench {
		asset[i] = 2 * v
	}

	got := RollingBeta(asset, bench, 3)
	require.Len(t, got, 5)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	for i := 2; i < 5; i++ {
		assert.InDelta(t, 2.0, got[i], 1e-12)
	}
}

func TestRollingCorrelation(t *testing.T) {
	a := []float64{0.01, 0.02, 0.03, 0.04}
	b := []float64{0.02, 0.04, 0.06, 0.08}
	got := RollingCorrelation(a, b, 3)
	assert.InDelta(t, 1.0, got[2], 1e-12)
	assert.InDelta(t, 1.0, got[3], 1e-12)

	inv := []float64{-0.02, -0.04, -0.06, -0.08}
	got = RollingCorrelation(a, inv, 3)
	assert.InDelta(t, -1.0, got[3], 1e-12)
}

func TestRollingCorrelation_ZeroVariance(t *testing.T) {
	flat := []float64{0.01, 0.01, 0.01}
	moving := []float64{0.01, 0.02, 0.03}
	got := RollingCorrelation(flat, moving, 3)
	assert.True(t, math.IsNaN(got[2]))
}

func TestDrawdown(t *testing.T) {
	got := Drawdown([]float64{100, 110, 99, 121})
	require.Len(t, got, 4)
	assert.InDelta(t, 0, got[0], 1e-12)
	assert.InDelta(t, 0, got[1], 1e-12)
	assert.InDelta(t, -0.1, got[2], 1e-12)
	assert.InDelta(t, 0, got[3], 1e-12)
}

func TestSub(t *testing.T) {
	got := Sub([]float64{0.5, 0.3}, []float64{0.2, 0.4})
	assert.InDelta(t, 0.3, got[0], 1e-12)
	assert.InDelta(t, -0.1, got[1], 1e-12)
}

func TestWindowTooLarge(t *testing.T) {
	rets := []float64{0.1, 0.2}
	for _, got := range [][]float64{
		RollingReturn(rets, 5),
		RollingBeta(rets, rets, 5),
		RollingCorrelation(rets, rets, 5),
	} {
		for _, v := range got {
			assert.True(t, math.IsNaN(v))
		}
	}
}
