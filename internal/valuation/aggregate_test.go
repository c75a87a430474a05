package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapway/valuation-engine/internal/model"
)

func TestAverageEUR(t *testing.T) {
	assert.Equal(t, 600.0, averageEUR(model.Num(300), model.Num(600), model.Num(900), 1.0))

	// Absent years count as zero; the divisor stays three.
	assert.Equal(t, 300.0, averageEUR(model.Num(300), model.Number{}, model.Num(600), 1.0))

	// Conversion applies before whole-unit rounding.
	assert.Equal(t, 92.0, averageEUR(model.Num(100), model.Num(100), model.Num(100), 0.92))
	assert.Equal(t, 0.0, averageEUR(model.Number{}, model.Number{}, model.Number{}, 0.92))
}

func TestEbitMargin(t *testing.T) {
	m := ebitMargin(200, 50)
	require.NotNil(t, m)
	assert.Equal(t, 25.0, *m)

	m = ebitMargin(300, 100)
	require.NotNil(t, m)
	assert.Equal(t, 33.33, *m)

	assert.Nil(t, ebitMargin(0, 50))
	assert.Nil(t, ebitMargin(200, 0))
}

func TestCAGR(t *testing.T) {
	// 100 -> 144 over two periods is 20% per year.
	assert.Equal(t, 20.0, cagr2(model.Num(100), model.Num(144)))

	// Shrinking is negative.
	assert.Equal(t, -16.67, cagr2(model.Num(144), model.Num(100)))

	// Undefined endpoints or sign flips collapse to zero.
	assert.Equal(t, 0.0, cagr2(model.Number{}, model.Num(144)))
	assert.Equal(t, 0.0, cagr2(model.Num(100), model.Number{}))
	assert.Equal(t, 0.0, cagr2(model.Num(0), model.Num(144)))
	assert.Equal(t, 0.0, cagr2(model.Num(-100), model.Num(144)))
}

func TestVolatility(t *testing.T) {
	// Identical figures have no spread.
	assert.Equal(t, 0.0, volatility(model.Num(100), model.Num(100), model.Num(100)))

	// mean 110, deviations (-10, -10, +20), stdev sqrt(600/2).
	assert.Equal(t, 15.75, volatility(model.Num(100), model.Num(100), model.Num(130)))

	// Zero mean is undefined, not infinite.
	assert.Equal(t, 0.0, volatility(model.Num(-100), model.Num(0), model.Num(100)))
	assert.Equal(t, 0.0, volatility(model.Number{}, model.Number{}, model.Number{}))
}

func TestSafeRatio(t *testing.T) {
	assert.Equal(t, 2.5, safeRatio(5, 2))
	assert.Equal(t, 0.33, safeRatio(1, 3))
	assert.Equal(t, 0.0, safeRatio(5, 0))
}

func TestEURRateFallback(t *testing.T) {
	snap := testEngineSnapshot(t)
	w := &warnings{company: "t"}

	assert.Equal(t, 0.92, eurRate(snap, "USD", w))
	assert.Empty(t, w.list)

	assert.Equal(t, 1.0, eurRate(snap, "XXX", w))
	require.Len(t, w.list, 1)
	assert.Contains(t, w.list[0], "XXX")

	// Blank currency means figures are already EUR; no warning.
	assert.Equal(t, 1.0, eurRate(snap, "", w))
	assert.Len(t, w.list, 1)
}
