package valuation

import (
	"math"

	"github.com/tapway/valuation-engine/internal/model"
)

// normalizedEbit blends the latest historical EBIT with the first forecast
// year (60/40). Both figures must be present; zero is a legitimate value.
func normalizedEbit(latest, forecast model.Number) *float64 {
	if !latest.Valid || !forecast.Valid {
		return nil
	}
	v := 0.6*latest.Value + 0.4*forecast.Value
	return &v
}

// evRange computes the enterprise-value corridor in thousands of EUR. The
// low and high bounds are ±15% of the unrounded midpoint. midEUR is the
// midpoint in whole EUR, used for deal-size banding and bonus thresholds.
func evRange(normEbitLocal, adjMultiple *float64, rate float64) (lowK, midK, highK *int64, midEUR float64) {
	if normEbitLocal == nil || adjMultiple == nil {
		return nil, nil, nil, 0
	}
	midEUR = *normEbitLocal * *adjMultiple * rate
	midKF := midEUR / 1000

	low := int64(math.Round(midKF * 0.85))
	mid := int64(math.Round(midKF))
	high := int64(math.Round(midKF * 1.15))
	return &low, &mid, &high, midEUR
}

// evRangeEUR is the free-tier corridor in whole EUR. The bounds derive from
// the rounded midpoint, matching the simpler single-year report.
func evRangeEUR(ebitEUR, adjMultiple *float64) (low, mid, high *int64) {
	if ebitEUR == nil || adjMultiple == nil {
		return nil, nil, nil
	}
	m := int64(math.Round(*ebitEUR * *adjMultiple))
	l := int64(math.Round(float64(m) * 0.85))
	h := int64(math.Round(float64(m) * 1.15))
	return &l, &m, &h
}
