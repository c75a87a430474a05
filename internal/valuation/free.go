package valuation

import (
	"math"
	"strings"

	"github.com/tapway/valuation-engine/internal/model"
)

// runFree computes the single-year teaser valuation: an EV corridor from one
// revenue/EBIT pair plus a quick risk read.
func (e *Engine) runFree(res *model.ValuationResult, w *warnings) {
	in := &res.CompanyInput

	rate := eurRate(e.snap, in.CurrencyRef(), w)
	res.CalcFXRate = rate

	if in.Ebit.Valid {
		v := toEUR(in.Ebit.Value, rate)
		res.CalcEbitEUR = &v
	}
	var revEUR *float64
	if in.AnnualRevenue.Valid {
		v := toEUR(in.AnnualRevenue.Value, rate)
		revEUR = &v
	}

	conc := in.ConcentrationRef()
	f := resolveMultiple(e.snap, in, revEUR, conc, w)
	res.FactorBaseMultiple = f.base
	res.FactorCountryRisk = f.country
	res.FactorSizeAdj = f.size
	res.FactorConcAdj = f.conc
	res.FactorAdjMultiple = f.adjusted

	low, mid, high := evRangeEUR(res.CalcEbitEUR, f.adjusted)
	res.ValEVLow, res.ValEVMid, res.ValEVHigh = low, mid, high
	if mid != nil {
		res.ValEVLowDisplay = FormatThousandsEUR(int64(math.Round(float64(*low) / 1000)))
		res.ValEVMidDisplay = FormatThousandsEUR(int64(math.Round(float64(*mid) / 1000)))
		res.ValEVHighDisplay = FormatThousandsEUR(int64(math.Round(float64(*high) / 1000)))
	}

	res.RiskComment = freeRiskComment(in, conc, f.country)
	res.PlausibilityCheck = plausibility(in, conc)
	res.AcquisitionScore = e.acquisitionScore(in, revEUR, conc, f)
}

func freeRiskComment(in *model.CompanyInput, conc model.Number, countryDelta float64) string {
	var flags []string

	if conc.Valid {
		switch {
		case conc.Value >= 60:
			flags = append(flags, "Very high customer concentration")
		case conc.Value >= 45:
			flags = append(flags, "High customer concentration")
		}
	}

	rev, eb := in.AnnualRevenue.Or(0), in.Ebit.Or(0)
	if rev != 0 && eb != 0 && eb/rev < 0.05 {
		flags = append(flags, "Very low profitability")
	}

	if countryDelta <= -0.4 {
		flags = append(flags, "Elevated country risk")
	}

	if len(flags) == 0 {
		return "No major concentration risk"
	}
	return strings.Join(flags, " | ")
}

// plausibility sanity-checks the submitted figures. FAIL means the record is
// internally inconsistent; REVIEW means the figures are possible but unusual
// enough to warrant an analyst look.
func plausibility(in *model.CompanyInput, conc model.Number) string {
	rev := in.AnnualRevenue.Or(0)
	eb := in.Ebit.Or(0)
	t3 := conc.Or(0)

	if rev <= 0 || eb < 0 || t3 > 100 || t3 < 0 {
		return "FAIL"
	}

	margin := eb / rev
	if margin < 0.03 || margin > 0.45 {
		return "REVIEW"
	}

	// Without a headcount the revenue-per-employee check cannot pass.
	revPerEmp := math.Inf(1)
	if emp := in.Employees.Or(0); emp > 0 {
		revPerEmp = rev / emp
	}
	if revPerEmp < 50_000 || revPerEmp > 2_500_000 {
		return "REVIEW"
	}

	return "PASS"
}

// acquisitionScore is the free-tier composite: profitability, customer
// concentration, size, and multiple-adjustment terms, each in [0,1], blended
// by the configured weights and scaled to 0-100.
func (e *Engine) acquisitionScore(in *model.CompanyInput, revEUR *float64, conc model.Number, f multipleFactors) int {
	rev := in.AnnualRevenue.Or(0)
	eb := in.Ebit.Or(0)

	var term1 float64
	if rev > 0 {
		m := eb / rev
		switch {
		case m <= 0:
			term1 = 0
		case m <= 0.05:
			term1 = 0.2 * (m / 0.05)
		case m <= 0.15:
			term1 = 0.2 + 0.4*((m-0.05)/0.1)
		case m <= 0.25:
			term1 = 0.6 + 0.3*((m-0.15)/0.1)
		case m >= 0.3:
			term1 = 1
		default:
			term1 = 0.9 + 0.1*((m-0.25)/0.05)
		}
	}

	term2 := 1.0
	t3 := conc.Or(0)
	switch {
	case t3 >= 60:
		term2 = 0
	case t3 >= 45:
		term2 = 0.3 * (1 - (t3-45)/15)
	case t3 >= 30:
		term2 = 0.7 - 0.4*((t3-30)/15)
	}

	term3 := 0.2
	if revEUR != nil {
		switch {
		case *revEUR < 5_000_000:
			term3 = 0.2
		case *revEUR < 15_000_000:
			term3 = 0.5
		case *revEUR < 50_000_000:
			term3 = 0.7
		case *revEUR < 100_000_000:
			term3 = 0.9
		default:
			term3 = 1
		}
	}

	// The multiple term scores the net adjustment delta, not the absolute
	// multiple: a company whose adjustments push it above its sector base
	// reads as more attractive.
	term4 := 0.2
	d := f.country + f.size + f.conc
	switch {
	case d <= -0.3:
		term4 = 0.2
	case d < 0:
		term4 = 0.2 + 0.4*((d+0.3)/0.3)
	case d < 0.2:
		term4 = 0.6 + 0.2*(d/0.2)
	case d >= 0.4:
		term4 = 1
	default:
		term4 = 0.8 + 0.2*((d-0.2)/0.2)
	}

	wt := e.cfg.Free
	raw := 100 * (wt.Profitability*term1 + wt.Concentration*term2 + wt.Size*term3 + wt.Multiple*term4)
	return clampScore(raw)
}
