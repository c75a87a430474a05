package valuation

import (
	"math"
	"strings"
	"time"

	"github.com/tapway/valuation-engine/internal/model"
)

// ageWarningText is surfaced when the disclosure date is older than two years.
const ageWarningText = "⚠ Data older than 2 years"

// runEnterprise computes the full institutional valuation: the standard
// aggregates plus balance-sheet ratios, the seven-term risk blend, market
// context, reliability, and the institutional composite.
func (e *Engine) runEnterprise(res *model.ValuationResult, w *warnings) {
	in := &res.CompanyInput

	if in.ValuationDate != "" {
		in.ValuationDate = NormalizeDate(in.ValuationDate)
	}

	rate := eurRate(e.snap, in.CurrencyRef(), w)
	res.CalcFXRate = rate

	revAvg := averageEUR(in.RevenueY1, in.RevenueY2, in.RevenueY3, rate)
	ebitAvg := averageEUR(in.EbitY1, in.EbitY2, in.EbitY3, rate)
	res.CalcRevAvgEUR = &revAvg
	res.CalcEbitAvgEUR = &ebitAvg
	res.CalcEbitMarginPct = ebitMargin(revAvg, ebitAvg)
	res.CalcEbitCAGRPct = cagr2(in.EbitY1, in.EbitY3)
	res.CalcRevCAGRPct = cagr2(in.RevenueY1, in.RevenueY3)
	// Enterprise volatility reads revenue stability, not EBIT.
	res.CalcVolatilityPct = volatility(in.RevenueY1, in.RevenueY2, in.RevenueY3)

	if ebitAvg != 0 {
		res.CalcDebtEbitRatio = safeRatio(in.TotalDebt.Or(0), ebitAvg)
	}
	if liab := in.CurrentLiabilities.Or(0); liab != 0 {
		res.CalcCurrentRatio = round2(in.CurrentAssets.Or(0) / liab)
	}

	f := resolveMultiple(e.snap, in, &revAvg, in.Top3ConcentrationPct, w)
	res.FactorBaseMultiple = f.base
	res.FactorCountryRisk = f.country
	res.FactorSizeAdj = f.size
	res.FactorConcAdj = f.conc
	res.FactorAdjMultiple = f.adjusted

	norm := normalizedEbit(in.EbitY3, in.EbitF1)
	if norm != nil {
		nEUR := math.Round(*norm * rate)
		res.ValNormEbitEUR = &nEUR
	}
	var midEUR float64
	res.ValEVLowKEUR, res.ValEVMidKEUR, res.ValEVHighKEUR, midEUR = evRange(norm, f.adjusted, rate)

	if res.CalcEbitMarginPct != nil {
		res.FinancialStrength = clampScore(
			0.4**res.CalcEbitMarginPct +
				0.3*res.CalcRevCAGRPct +
				0.3*(100-res.CalcVolatilityPct))
	}

	res.RiskManagement = e.enterpriseRiskManagement(in, res, f.country, w)

	if f.adjusted != nil && f.sectorOK && res.CalcEbitMarginPct != nil {
		var r1, r2, r3 float64
		if f.sector.BaseMultiple != 0 {
			r1 = *f.adjusted / f.sector.BaseMultiple
		}
		if f.sector.TargetCAGRPct != 0 {
			r2 = res.CalcRevCAGRPct / f.sector.TargetCAGRPct
		}
		if f.sector.TargetMarginPct != 0 {
			r3 = *res.CalcEbitMarginPct / f.sector.TargetMarginPct
		}
		res.MarketContext = clampScore(math.Min(100, 50*r1+25*r2+25*r3))
	}

	if score, ok := e.snap.DealSizeScore(midEUR); ok {
		res.DealabilitySizeSubscore = score
	}
	res.DealabilityDocSubscore = docSubscore(in.DocumentationReadiness)
	res.DealabilityFlexSubscore = flexSubscore(in.SellerFlexibility)
	res.DealabilityTimeSubscore = timelineSubscore(in.TargetTimelineMonths)
	res.DealabilityScore = int(math.Round(float64(res.DealabilitySizeSubscore+
		res.DealabilityDocSubscore+res.DealabilityFlexSubscore+res.DealabilityTimeSubscore) / 4))

	res.ValuationReliability = e.reliability(in, res.CalcVolatilityPct)
	res.FXConfidence = fxConfidence(in.CurrencyRef())

	if f.adjusted != nil && in.Sector != "" {
		ref := 9.0
		switch strings.ToLower(strings.TrimSpace(in.Sector)) {
		case "manufacturing":
			ref = 7.0
		case "saas":
			ref = 12.0
		}
		gap := round1((*f.adjusted/ref - 1) * 100)
		res.PeerGapPct = &gap
	}

	if in.ValuationDate != "" {
		if t, err := ParseFlexibleDate(in.ValuationDate); err == nil {
			if t.Before(e.dayCutoff(730)) {
				res.AgeWarning = ageWarningText
			}
		}
	}

	ew := e.cfg.Enterprise
	if midEUR > ew.BonusEVThresholdEUR && in.FinancialsAudited.True() {
		res.InstBonus = int(math.Round(ew.BonusPoints))
	}

	res.RiskFlags = enterpriseRiskFlags(in, res, ebitAvg)

	res.TapwayInstitutionalScore = clampScore(
		ew.FinancialStrength*float64(res.FinancialStrength) +
			ew.RiskManagement*float64(res.RiskManagement) +
			ew.MarketContext*float64(res.MarketContext) +
			ew.Dealability*float64(res.DealabilityScore) +
			ew.Reliability*float64(res.ValuationReliability) +
			float64(res.InstBonus))
}

// enterpriseRiskManagement blends seven risk terms, each scored 0-100 before
// weighting: credit rating, leverage, liquidity, ownership concentration,
// management turnover, litigation, and country risk.
func (e *Engine) enterpriseRiskManagement(in *model.CompanyInput, res *model.ValuationResult, countryDelta float64, w *warnings) int {
	creditScore := 0
	if in.CreditRating != "" {
		if s, ok := e.snap.CreditScore(in.CreditRating); ok {
			creditScore = s
		} else {
			w.addf("unknown credit rating %q, scoring 0", in.CreditRating)
		}
	}

	litigation := 100.0
	if in.LitigationActive.True() {
		litigation = 50
	}

	rw := e.cfg.Enterprise.Risk
	sum := rw.Credit*float64(creditScore) +
		rw.Leverage*math.Max(0, 100-res.CalcDebtEbitRatio*20) +
		rw.Liquidity*math.Min(100, res.CalcCurrentRatio*50) +
		rw.Ownership*math.Max(0, 100-in.OwnershipPct.Or(0)) +
		rw.MgmtTurnover*math.Max(0, 100-in.MgmtTurnoverPct.Or(0)) +
		rw.Litigation*litigation +
		rw.CountryRisk*math.Max(0, 100-countryDelta*100)

	return clampScore(sum)
}

// reliability scores how much the EV corridor can be trusted: revenue
// stability (40%), audited financials (40%), and disclosure recency (20%,
// docked when older than 540 days).
func (e *Engine) reliability(in *model.CompanyInput, volPct float64) int {
	sVol := math.Max(0, 100-volPct)

	sAudit := 70.0
	if in.FinancialsAudited.True() {
		sAudit = 100
	}

	sDate := 100.0
	if in.ValuationDate != "" {
		if t, err := ParseFlexibleDate(in.ValuationDate); err == nil {
			if t.Before(e.dayCutoff(540)) {
				sDate = 70
			}
		}
	}

	return clampScore(0.4*sVol + 0.4*sAudit + 0.2*sDate)
}

// dayCutoff is UTC midnight of the current day minus the given number of
// days. Parsed disclosure dates carry no time of day, so recency comparisons
// must not either: a date exactly at the cutoff is still in range.
func (e *Engine) dayCutoff(days int) time.Time {
	now := e.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
}

func fxConfidence(currency string) int {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "EUR":
		return 100
	case "USD":
		return 95
	case "GBP":
		return 90
	}
	return 80
}

// enterpriseRiskFlags lists material risks in fixed order. Ratio-based flags
// only fire when the underlying ratio was actually computable.
func enterpriseRiskFlags(in *model.CompanyInput, res *model.ValuationResult, ebitAvg float64) string {
	var risks []string
	if ebitAvg != 0 && res.CalcDebtEbitRatio > 3 {
		risks = append(risks, "High Leverage")
	}
	if in.CurrentLiabilities.Or(0) != 0 && res.CalcCurrentRatio < 1 {
		risks = append(risks, "Low Liquidity")
	}
	if in.OwnershipPct.Or(0) > 50 {
		risks = append(risks, "High Conc")
	}
	if in.LitigationActive.True() {
		risks = append(risks, "Litigation")
	}
	if len(risks) == 0 {
		return "No major risks"
	}
	return strings.Join(risks, " | ")
}
