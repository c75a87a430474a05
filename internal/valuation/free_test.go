package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapway/valuation-engine/internal/model"
)

func TestFreeValuationWorkedExample(t *testing.T) {
	e := newTestEngine(t)
	in := model.CompanyInput{
		CompanyName:      "Acme Industrie GmbH",
		Sector:           "Manufacturing",
		Country:          "DE",
		Currency:         "EUR",
		AnnualRevenue:    model.Num(10_000_000),
		Ebit:             model.Num(1_200_000),
		Employees:        model.Num(50),
		Top3CustomersPct: model.Num(40),
	}

	res, err := e.Valuate(model.VariantFree, in)
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.CalcFXRate)
	require.NotNil(t, res.CalcEbitEUR)
	assert.Equal(t, 1_200_000.0, *res.CalcEbitEUR)

	// Manufacturing base 7.0; 10M revenue lands in the -1.0 size band and
	// 40% concentration in the -0.25 band.
	require.NotNil(t, res.FactorBaseMultiple)
	assert.Equal(t, 7.0, *res.FactorBaseMultiple)
	assert.Equal(t, -1.0, res.FactorSizeAdj)
	assert.Equal(t, -0.25, res.FactorConcAdj)
	require.NotNil(t, res.FactorAdjMultiple)
	assert.Equal(t, 5.75, *res.FactorAdjMultiple)

	require.NotNil(t, res.ValEVMid)
	assert.Equal(t, int64(6_900_000), *res.ValEVMid)
	assert.Equal(t, int64(5_865_000), *res.ValEVLow)
	assert.Equal(t, int64(7_935_000), *res.ValEVHigh)
	assert.Equal(t, "6,900k EUR", res.ValEVMidDisplay)
	assert.Equal(t, "5,865k EUR", res.ValEVLowDisplay)
	assert.Equal(t, "7,935k EUR", res.ValEVHighDisplay)

	assert.Equal(t, "No major concentration risk", res.RiskComment)
	assert.Equal(t, "PASS", res.PlausibilityCheck)

	// term1 0.48, term2 0.4333, term3 0.5, term4 0.2 under default weights.
	assert.Equal(t, 42, res.AcquisitionScore)
	assert.Empty(t, res.Warnings)
}

func TestFreeValuationUnknownCurrencyDefaults(t *testing.T) {
	e := newTestEngine(t)
	in := model.CompanyInput{
		CompanyName:   "Offshore Ltd",
		Currency:      "XXX",
		AnnualRevenue: model.Num(1_000_000),
		Ebit:          model.Num(100_000),
	}

	res, err := e.Valuate(model.VariantFree, in)
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.CalcFXRate)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "XXX")

	// No sector means no base and no EV corridor.
	assert.Nil(t, res.FactorBaseMultiple)
	assert.Nil(t, res.ValEVMid)
	assert.Empty(t, res.ValEVMidDisplay)
}

func TestFreeRiskComment(t *testing.T) {
	in := &model.CompanyInput{
		AnnualRevenue: model.Num(1_000_000),
		Ebit:          model.Num(10_000),
	}

	got := freeRiskComment(in, model.Num(65), -0.4)
	assert.Equal(t, "Very high customer concentration | Very low profitability | Elevated country risk", got)

	got = freeRiskComment(in, model.Num(50), 0)
	assert.Equal(t, "High customer concentration | Very low profitability", got)

	healthy := &model.CompanyInput{
		AnnualRevenue: model.Num(1_000_000),
		Ebit:          model.Num(150_000),
	}
	assert.Equal(t, "No major concentration risk", freeRiskComment(healthy, model.Num(20), 0))
}

func TestPlausibility(t *testing.T) {
	tests := []struct {
		name string
		in   model.CompanyInput
		conc model.Number
		want string
	}{
		{
			"missing revenue fails",
			model.CompanyInput{Ebit: model.Num(100)},
			model.Number{},
			"FAIL",
		},
		{
			"negative ebit fails",
			model.CompanyInput{AnnualRevenue: model.Num(1_000_000), Ebit: model.Num(-1)},
			model.Number{},
			"FAIL",
		},
		{
			"concentration above 100 fails",
			model.CompanyInput{AnnualRevenue: model.Num(1_000_000), Ebit: model.Num(100_000)},
			model.Num(110),
			"FAIL",
		},
		{
			"implausible margin reviews",
			model.CompanyInput{AnnualRevenue: model.Num(1_000_000), Ebit: model.Num(600_000), Employees: model.Num(10)},
			model.Number{},
			"REVIEW",
		},
		{
			"missing headcount reviews",
			model.CompanyInput{AnnualRevenue: model.Num(1_000_000), Ebit: model.Num(100_000)},
			model.Number{},
			"REVIEW",
		},
		{
			"healthy record passes",
			model.CompanyInput{AnnualRevenue: model.Num(1_000_000), Ebit: model.Num(100_000), Employees: model.Num(10)},
			model.Num(20),
			"PASS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plausibility(&tt.in, tt.conc))
		})
	}
}
