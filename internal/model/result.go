package model

import "time"

// ValuationResult is the flat output record: the submitted input plus every
// derived metric. Fields not produced by the selected variant stay at their
// zero value; nullable metrics are pointers so a genuine zero survives the
// round trip. Results are created fresh per computation and never mutated
// after return.
type ValuationResult struct {
	ID         string    `json:"id"`
	Variant    Variant   `json:"variant"`
	ComputedAt time.Time `json:"computed_at"`

	CompanyInput

	// Currency and aggregation.
	CalcFXRate         float64  `json:"calc_fx_rate"`
	CalcRevAvgEUR      *float64 `json:"calc_rev_avg_eur,omitempty"`
	CalcEbitAvgEUR     *float64 `json:"calc_ebit_avg_eur,omitempty"`
	CalcEbitEUR        *float64 `json:"calc_ebit_eur,omitempty"`
	CalcEbitMarginPct  *float64 `json:"calc_ebit_margin_pct,omitempty"`
	CalcEbitCAGRPct    float64  `json:"calc_ebit_cagr_pct"`
	CalcRevCAGRPct     float64  `json:"calc_rev_cagr_pct"`
	CalcVolatilityPct  float64  `json:"calc_volatility_pct"`
	CalcDebtEbitRatio  float64  `json:"calc_debt_ebitda_ratio"`
	CalcCurrentRatio   float64  `json:"calc_current_ratio"`

	// Multiple factors.
	FactorBaseMultiple *float64 `json:"factor_base_multiple,omitempty"`
	FactorCountryRisk  float64  `json:"factor_country_risk"`
	FactorSizeAdj      float64  `json:"factor_size_adj"`
	FactorConcAdj      float64  `json:"factor_conc_adj"`
	FactorAdjMultiple  *float64 `json:"factor_adj_multiple,omitempty"`

	// Enterprise value. Standard and enterprise report thousands of EUR;
	// the free tier reports whole EUR plus pre-formatted display strings.
	ValNormEbitEUR   *float64 `json:"val_norm_ebit_eur,omitempty"`
	ValEVLowKEUR     *int64   `json:"val_ev_low_eur,omitempty"`
	ValEVMidKEUR     *int64   `json:"val_ev_mid_eur,omitempty"`
	ValEVHighKEUR    *int64   `json:"val_ev_high_eur,omitempty"`
	ValEVLow         *int64   `json:"val_ev_low,omitempty"`
	ValEVMid         *int64   `json:"val_ev_mid,omitempty"`
	ValEVHigh        *int64   `json:"val_ev_high,omitempty"`
	ValEVLowDisplay  string   `json:"val_ev_low_eur_k,omitempty"`
	ValEVMidDisplay  string   `json:"val_ev_mid_eur_k,omitempty"`
	ValEVHighDisplay string   `json:"val_ev_high_eur_k,omitempty"`

	// Sub-scores (0-100).
	FinancialStrength        int `json:"financial_strength"`
	RiskManagement           int `json:"risk_management"`
	MarketContext            int `json:"market_context,omitempty"`
	GrowthScore              int `json:"growth_score,omitempty"`
	SectorContext            int `json:"sector_context,omitempty"`
	DataCompleteness         int `json:"data_completeness,omitempty"`
	DealabilitySizeSubscore  int `json:"dealability_size_subscore"`
	DealabilityDocSubscore   int `json:"dealability_documentation_subscore"`
	DealabilityFlexSubscore  int `json:"dealability_flexibility_subscore"`
	DealabilityTimeSubscore  int `json:"dealability_timeline_subscore"`
	DealabilityScore         int `json:"dealability_score"`
	ValuationReliability     int `json:"valuation_reliability,omitempty"`
	FXConfidence             int `json:"fx_confidence,omitempty"`
	InvestmentAttractiveness int `json:"investment_attractiveness,omitempty"`
	InstBonus                int `json:"inst_bonus,omitempty"`

	// Composites.
	AcquisitionScore         int `json:"acquisition_score,omitempty"`
	TapwayScore              int `json:"tapway_score,omitempty"`
	TapwayInstitutionalScore int `json:"tapway_institutional_score,omitempty"`

	// Analyst-facing text.
	PeerGapPct        *float64 `json:"peer_gap_pct,omitempty"`
	RiskFlags         string   `json:"risk_flags,omitempty"`
	RiskComment       string   `json:"risk_comment,omitempty"`
	PlausibilityCheck string   `json:"plausibility_check,omitempty"`
	AgeWarning        string   `json:"age_warning,omitempty"`

	// Non-fatal anomalies recorded during computation (reference lookup
	// misses and the like).
	Warnings []string `json:"warnings,omitempty"`
}
