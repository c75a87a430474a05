package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapway/valuation-engine/internal/model"
)

func enterpriseFixture() model.CompanyInput {
	return model.CompanyInput{
		CompanyName:   "Cupertino Devices Inc",
		Sector:        "Consumer Electronics Brands",
		CountryCode:   "US",
		CurrencyCode:  "USD",
		ValuationDate: "9/30/2024",
		Employees:     model.Num(161_000),

		RevenueY1: model.Num(274_515_000_000),
		RevenueY2: model.Num(365_817_000_000),
		RevenueY3: model.Num(394_328_000_000),
		EbitY1:    model.Num(66_288_000_000),
		EbitY2:    model.Num(108_949_000_000),
		EbitY3:    model.Num(114_301_000_000),

		RevenueF1: model.Num(420_000_000_000),
		EbitF1:    model.Num(120_000_000_000),

		TotalDebt:          model.Num(111_088_000_000),
		CurrentAssets:      model.Num(143_566_000_000),
		CurrentLiabilities: model.Num(145_308_000_000),
		CreditRating:       "AA+",
		OwnershipPct:       model.Num(60),
		MgmtTurnoverPct:    model.Num(8),
		LitigationActive:   model.No(),

		Top3ConcentrationPct:   model.Num(25),
		FounderDependencyHigh:  model.No(),
		SupplierDependencyHigh: model.No(),
		KeyStaffRetentionPlan:  model.Yes(),
		FinancialsAudited:      model.Yes(),
		DocumentationReadiness: "Full",
		SellerFlexibility:      "High",
		TargetTimelineMonths:   model.Num(3),
	}
}

func TestEnterpriseValuationWorkedExample(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Valuate(model.VariantEnterprise, enterpriseFixture())
	require.NoError(t, err)

	assert.Equal(t, "2024-09-30", res.ValuationDate)
	assert.Equal(t, 0.92, res.CalcFXRate)

	require.NotNil(t, res.CalcRevAvgEUR)
	assert.Equal(t, 317_295_733_333.0, *res.CalcRevAvgEUR)
	require.NotNil(t, res.CalcEbitAvgEUR)
	assert.Equal(t, 88_791_653_333.0, *res.CalcEbitAvgEUR)
	require.NotNil(t, res.CalcEbitMarginPct)
	assert.Equal(t, 27.98, *res.CalcEbitMarginPct)

	assert.Equal(t, 19.85, res.CalcRevCAGRPct)
	assert.Equal(t, 31.31, res.CalcEbitCAGRPct)
	// Enterprise volatility reads revenue spread.
	assert.Equal(t, 18.15, res.CalcVolatilityPct)

	assert.Equal(t, 1.25, res.CalcDebtEbitRatio)
	assert.Equal(t, 0.99, res.CalcCurrentRatio)

	// Base 9.0 with the size band saturated at +0.5 and neutral country and
	// concentration deltas.
	require.NotNil(t, res.FactorAdjMultiple)
	assert.Equal(t, 9.5, *res.FactorAdjMultiple)

	require.NotNil(t, res.ValNormEbitEUR)
	assert.Equal(t, 107_254_152_000.0, *res.ValNormEbitEUR)
	require.NotNil(t, res.ValEVMidKEUR)
	assert.Equal(t, int64(1_018_914_444), *res.ValEVMidKEUR)
	assert.Equal(t, int64(866_077_277), *res.ValEVLowKEUR)
	assert.Equal(t, int64(1_171_751_611), *res.ValEVHighKEUR)

	assert.Equal(t, 42, res.FinancialStrength)
	assert.Equal(t, 78, res.RiskManagement)
	assert.Equal(t, 100, res.MarketContext)

	assert.Equal(t, 100, res.DealabilitySizeSubscore)
	assert.Equal(t, 100, res.DealabilityDocSubscore)
	assert.Equal(t, 100, res.DealabilityFlexSubscore)
	assert.Equal(t, 0, res.DealabilityTimeSubscore)
	assert.Equal(t, 75, res.DealabilityScore)

	assert.Equal(t, 93, res.ValuationReliability)
	assert.Equal(t, 95, res.FXConfidence)

	require.NotNil(t, res.PeerGapPct)
	assert.Equal(t, 5.6, *res.PeerGapPct)

	assert.Empty(t, res.AgeWarning)
	assert.Equal(t, 3, res.InstBonus)
	assert.Equal(t, "Low Liquidity | High Conc", res.RiskFlags)
	assert.Equal(t, 69, res.TapwayInstitutionalScore)
	assert.Empty(t, res.Warnings)
}

func TestEnterpriseDealabilityBlend(t *testing.T) {
	e := newTestEngine(t)
	in := enterpriseFixture()
	in.SellerFlexibility = "Medium"
	in.TargetTimelineMonths = model.Num(12)

	res, err := e.Valuate(model.VariantEnterprise, in)
	require.NoError(t, err)

	// (100 + 100 + 50 + 100) / 4 rounds up.
	assert.Equal(t, 50, res.DealabilityFlexSubscore)
	assert.Equal(t, 100, res.DealabilityTimeSubscore)
	assert.Equal(t, 88, res.DealabilityScore)
}

func TestEnterpriseAgeWarningBoundary(t *testing.T) {
	e := newTestEngine(t)

	// testNow is 2025-08-29; exactly 730 days earlier is 2023-08-30.
	in := enterpriseFixture()
	in.ValuationDate = "2023-08-30"
	res, err := e.Valuate(model.VariantEnterprise, in)
	require.NoError(t, err)
	assert.Empty(t, res.AgeWarning)

	in.ValuationDate = "2023-08-29"
	res, err = e.Valuate(model.VariantEnterprise, in)
	require.NoError(t, err)
	assert.Equal(t, ageWarningText, res.AgeWarning)
}

func TestEnterpriseReliabilityDocksStaleDates(t *testing.T) {
	e := newTestEngine(t)

	in := enterpriseFixture()
	in.ValuationDate = "2023-09-01"
	res, err := e.Valuate(model.VariantEnterprise, in)
	require.NoError(t, err)

	// 0.4*81.85 + 0.4*100 + 0.2*70 = 86.74.
	assert.Equal(t, 87, res.ValuationReliability)
}

func TestEnterpriseReliabilityRecencyBoundary(t *testing.T) {
	e := newTestEngine(t)

	// testNow is 2025-08-29T12:00Z; 540 days earlier is 2024-03-07. A date
	// exactly at the cutoff is still recent regardless of the clock's hour.
	in := enterpriseFixture()
	in.ValuationDate = "2024-03-07"
	res, err := e.Valuate(model.VariantEnterprise, in)
	require.NoError(t, err)
	assert.Equal(t, 93, res.ValuationReliability)

	in.ValuationDate = "2024-03-06"
	res, err = e.Valuate(model.VariantEnterprise, in)
	require.NoError(t, err)
	assert.Equal(t, 87, res.ValuationReliability)
}

func TestEnterpriseInstBonusRequiresAuditAndScale(t *testing.T) {
	e := newTestEngine(t)

	in := enterpriseFixture()
	in.FinancialsAudited = model.No()
	res, err := e.Valuate(model.VariantEnterprise, in)
	require.NoError(t, err)
	assert.Equal(t, 0, res.InstBonus)

	small := enterpriseFixture()
	small.RevenueY1 = model.Num(4_000_000)
	small.RevenueY2 = model.Num(4_200_000)
	small.RevenueY3 = model.Num(4_400_000)
	small.EbitY1 = model.Num(500_000)
	small.EbitY2 = model.Num(520_000)
	small.EbitY3 = model.Num(540_000)
	small.EbitF1 = model.Num(560_000)
	small.TotalDebt = model.Num(500_000)
	small.CurrentAssets = model.Num(1_000_000)
	small.CurrentLiabilities = model.Num(400_000)

	res, err = e.Valuate(model.VariantEnterprise, small)
	require.NoError(t, err)
	assert.Equal(t, 0, res.InstBonus)
}

func TestEnterprisePeerGapReferences(t *testing.T) {
	e := newTestEngine(t)

	in := enterpriseFixture()
	in.Sector = "SaaS"
	res, err := e.Valuate(model.VariantEnterprise, in)
	require.NoError(t, err)

	// SaaS base 12.0 saturates size at +0.5; reference multiple 12.
	require.NotNil(t, res.PeerGapPct)
	assert.Equal(t, 4.2, *res.PeerGapPct)

	in.Sector = "Manufacturing"
	res, err = e.Valuate(model.VariantEnterprise, in)
	require.NoError(t, err)

	// Manufacturing base 7.0 + 0.5 against reference 7.
	require.NotNil(t, res.PeerGapPct)
	assert.Equal(t, 7.1, *res.PeerGapPct)
}

func TestEnterpriseUnknownCreditRatingWarns(t *testing.T) {
	e := newTestEngine(t)

	in := enterpriseFixture()
	in.CreditRating = "ZZ-"
	res, err := e.Valuate(model.VariantEnterprise, in)
	require.NoError(t, err)

	// Credit term drops to zero: 78 - 0.25*95 rounds to 54.
	assert.Equal(t, 54, res.RiskManagement)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "ZZ-")
}
