package valuation

import (
	"math"
	"strings"

	"github.com/tapway/valuation-engine/internal/model"
	"github.com/tapway/valuation-engine/internal/refdata"
)

// runStandard computes the three-year valuation with the attractiveness and
// deal-score composites.
func (e *Engine) runStandard(res *model.ValuationResult, w *warnings) {
	in := &res.CompanyInput

	rate := eurRate(e.snap, in.CurrencyRef(), w)
	res.CalcFXRate = rate

	revAvg := averageEUR(in.RevenueY1, in.RevenueY2, in.RevenueY3, rate)
	ebitAvg := averageEUR(in.EbitY1, in.EbitY2, in.EbitY3, rate)
	res.CalcRevAvgEUR = &revAvg
	res.CalcEbitAvgEUR = &ebitAvg
	res.CalcEbitMarginPct = ebitMargin(revAvg, ebitAvg)
	res.CalcEbitCAGRPct = cagr2(in.EbitY1, in.EbitY3)
	res.CalcRevCAGRPct = cagr2(in.RevenueY1, in.RevenueY3)
	res.CalcVolatilityPct = volatility(in.EbitY1, in.EbitY2, in.EbitY3)

	f := resolveMultiple(e.snap, in, &revAvg, in.Top3ConcentrationPct, w)
	res.FactorBaseMultiple = f.base
	res.FactorCountryRisk = f.country
	res.FactorSizeAdj = f.size
	res.FactorConcAdj = f.conc
	res.FactorAdjMultiple = f.adjusted

	if f.sectorOK {
		res.GrowthScore = f.sector.GrowthScore
		res.SectorContext = sectorContext(res.CalcEbitMarginPct, res.CalcRevCAGRPct, f.sector)
	}

	norm := normalizedEbit(in.EbitY3, in.EbitF1)
	if norm != nil {
		nEUR := math.Round(*norm * rate)
		res.ValNormEbitEUR = &nEUR
	}
	res.ValEVLowKEUR, res.ValEVMidKEUR, res.ValEVHighKEUR, _ = evRange(norm, f.adjusted, rate)

	res.FinancialStrength = marginRampScore(res.CalcEbitMarginPct)
	res.RiskManagement = standardRiskManagement(in)
	res.DataCompleteness = dataCompleteness(in)

	st := e.cfg.Standard
	res.InvestmentAttractiveness = clampScore(
		st.FinancialStrength*float64(res.FinancialStrength) +
			st.Growth*float64(res.GrowthScore) +
			st.RiskManagement*float64(res.RiskManagement) +
			st.SectorContext*float64(res.SectorContext) +
			st.DataCompleteness*float64(res.DataCompleteness))

	if score, ok := e.snap.DealSizeScore(revAvg); ok {
		res.DealabilitySizeSubscore = score
	}
	res.DealabilityDocSubscore = docSubscore(in.DocumentationReadiness)
	res.DealabilityFlexSubscore = flexSubscore(in.SellerFlexibility)
	res.DealabilityTimeSubscore = timelineSubscore(in.TargetTimelineMonths)
	res.DealabilityScore = int(math.Round(float64(res.DealabilitySizeSubscore+
		res.DealabilityDocSubscore+res.DealabilityFlexSubscore+res.DealabilityTimeSubscore) / 4))

	res.RiskFlags = standardRiskFlags(res.CalcRevCAGRPct, res.CalcEbitMarginPct)
	res.TapwayScore = clampScore(
		st.Attractiveness*float64(res.InvestmentAttractiveness) +
			st.Dealability*float64(res.DealabilityScore))
}

// sectorContext scores performance relative to the sector's target margin and
// CAGR. Negative ratios floor to zero so a shrinking business cannot drag the
// score below zero.
func sectorContext(margin *float64, revCAGR float64, m refdata.SectorMetrics) int {
	var marginRatio, cagrRatio float64
	if margin != nil && m.TargetMarginPct != 0 {
		marginRatio = *margin / m.TargetMarginPct
	}
	if m.TargetCAGRPct != 0 {
		cagrRatio = revCAGR / m.TargetCAGRPct
	}
	return clampScore(10 * (math.Max(0, marginRatio) + math.Max(0, cagrRatio)))
}

// marginRampScore maps the EBIT margin onto a piecewise 0-90 ramp. Absent
// margin scores zero.
func marginRampScore(margin *float64) int {
	if margin == nil {
		return 0
	}
	m := *margin / 100
	var score float64
	switch {
	case m < 0.05:
		score = 20 * m / 0.05
	case m < 0.15:
		score = 20 + 40*(m-0.05)/0.1
	case m < 0.25:
		score = 60 + 30*(m-0.15)/0.1
	default:
		score = 90
	}
	return clampScore(score)
}

func standardRiskManagement(in *model.CompanyInput) int {
	s1 := 100
	if in.FounderDependencyHigh.True() {
		s1 = 0
	}
	s2 := 100
	if in.SupplierDependencyHigh.True() {
		s2 = 0
	}
	s3 := 100
	if in.Top3ConcentrationPct.Or(0) > 50 {
		s3 = 50
	}
	s4 := 0
	if in.KeyStaffRetentionPlan.True() {
		s4 = 100
	}
	return int(math.Round(float64(s1+s2+s3+s4) / 4))
}

// dataCompleteness counts how many of the 23 standard-tier intake fields were
// provided. Zero and false are provided values; only absence counts against.
func dataCompleteness(in *model.CompanyInput) int {
	filled := 0
	for _, s := range []string{
		in.Sector, in.CountryRef(), in.CurrencyRef(),
		in.DocumentationReadiness, in.SellerFlexibility,
	} {
		if s != "" {
			filled++
		}
	}
	for _, n := range []model.Number{
		in.Employees,
		in.RevenueY1, in.RevenueY2, in.RevenueY3,
		in.EbitY1, in.EbitY2, in.EbitY3,
		in.RevenueF1, in.RevenueF2, in.RevenueF3,
		in.EbitF1, in.EbitF2, in.EbitF3,
		in.Top3ConcentrationPct, in.TargetTimelineMonths,
	} {
		if n.Valid {
			filled++
		}
	}
	for _, fl := range []model.Flag{
		in.FounderDependencyHigh, in.SupplierDependencyHigh, in.KeyStaffRetentionPlan,
	} {
		if fl.Valid {
			filled++
		}
	}
	return int(math.Round(float64(filled) / 23 * 100))
}

func docSubscore(s string) int {
	switch s {
	case "Full":
		return 100
	case "Partial":
		return 50
	}
	return 0
}

func flexSubscore(s string) int {
	switch s {
	case "High":
		return 100
	case "Medium":
		return 50
	}
	return 0
}

func timelineSubscore(months model.Number) int {
	if !months.Valid {
		return 0
	}
	switch {
	case months.Value <= 3:
		return 0
	case months.Value <= 6:
		return 50
	default:
		return 100
	}
}

func standardRiskFlags(revCAGR float64, margin *float64) string {
	var flags []string
	if revCAGR < 0 {
		flags = append(flags, "Negative revenue CAGR")
	}
	if margin != nil && *margin < 5.0 {
		flags = append(flags, "Low margin (<5%)")
	}
	if len(flags) == 0 {
		return "No major risk flags"
	}
	return strings.Join(flags, " | ")
}
