package valuation

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/tapway/valuation-engine/internal/model"
)

// warnings accumulates non-fatal anomalies for the result record.
type warnings struct {
	company string
	list    []string
}

func (w *warnings) addf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	w.list = append(w.list, msg)
	zap.L().Warn("valuation anomaly", zap.String("company", w.company), zap.String("detail", msg))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func clampScore(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

// eurRate resolves a currency to its EUR conversion rate. Unknown or blank
// currencies fall back to 1.0 with a recorded warning; conversion never aborts
// a valuation.
func eurRate(snap fxSource, currency string, w *warnings) float64 {
	if currency == "" {
		return 1.0
	}
	rate, ok := snap.FXRate(currency)
	if !ok {
		w.addf("no FX rate for currency %q, assuming 1.0", currency)
		return 1.0
	}
	return rate
}

type fxSource interface {
	FXRate(code string) (float64, bool)
}

// toEUR converts a local-currency amount and rounds to whole EUR.
func toEUR(local, rate float64) float64 { return math.Round(local * rate) }

// averageEUR is the three-year mean in EUR, rounded to whole units. Absent
// years count as zero; the divisor is always three.
func averageEUR(y1, y2, y3 model.Number, rate float64) float64 {
	return math.Round((y1.Or(0) + y2.Or(0) + y3.Or(0)) / 3 * rate)
}

// ebitMargin is average EBIT over average revenue as a percentage, defined
// only when both averages are non-zero.
func ebitMargin(revAvg, ebitAvg float64) *float64 {
	if revAvg == 0 || ebitAvg == 0 {
		return nil
	}
	m := round2(ebitAvg / revAvg * 100)
	return &m
}

// cagr2 is the two-period compound annual growth rate between the oldest and
// latest historical year, as a percentage. Zero when either endpoint is absent
// or zero, or when the endpoints have opposite signs.
func cagr2(y1, y3 model.Number) float64 {
	if !y1.Valid || y1.Value == 0 || !y3.Valid || y3.Value == 0 {
		return 0
	}
	ratio := y3.Value / y1.Value
	if ratio < 0 {
		return 0
	}
	return round2((math.Pow(ratio, 0.5) - 1) * 100)
}

// volatility is the population-flavored standard deviation of the three
// yearly figures (divisor 2) relative to their mean, as a percentage. Zero
// when the mean is zero. Absent years count as zero.
func volatility(y1, y2, y3 model.Number) float64 {
	v1, v2, v3 := y1.Or(0), y2.Or(0), y3.Or(0)
	mean := (v1 + v2 + v3) / 3
	if mean == 0 {
		return 0
	}
	ss := (v1-mean)*(v1-mean) + (v2-mean)*(v2-mean) + (v3-mean)*(v3-mean)
	stdev := math.Sqrt(ss / 2)
	return round2(stdev / mean * 100)
}

// safeRatio divides numerator by denominator, rounded to 2dp, or returns 0
// when the denominator is zero.
func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return round2(num / den)
}
