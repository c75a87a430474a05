package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapway/valuation-engine/internal/model"
)

func writeTempJSON(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCompanyInput(t *testing.T) {
	path := writeTempJSON(t, "acme.json", `{
		"company_name": "Acme Industrie GmbH",
		"sector": "Manufacturing",
		"annual_revenue": "10,000,000",
		"ebit": 1200000,
		"financials_audited": "Yes"
	}`)

	in, err := readCompanyInput(path)
	require.NoError(t, err)

	assert.Equal(t, "Acme Industrie GmbH", in.CompanyName)
	assert.Equal(t, 10_000_000.0, in.AnnualRevenue.Value)
	assert.Equal(t, 1_200_000.0, in.Ebit.Value)
	assert.True(t, in.FinancialsAudited.True())
}

func TestReadCompanyInputErrors(t *testing.T) {
	_, err := readCompanyInput(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := writeTempJSON(t, "bad.json", `{"company_name": `)
	_, err = readCompanyInput(bad)
	assert.Error(t, err)
}

func TestEVCorridorK(t *testing.T) {
	k := func(v int64) *int64 { return &v }

	res := &model.ValuationResult{
		ValEVLowKEUR:  k(20_103),
		ValEVMidKEUR:  k(23_650),
		ValEVHighKEUR: k(27_198),
	}
	low, mid, high, ok := evCorridorK(res)
	require.True(t, ok)
	assert.Equal(t, int64(20_103), low)
	assert.Equal(t, int64(23_650), mid)
	assert.Equal(t, int64(27_198), high)

	// Free tier reports whole EUR.
	free := &model.ValuationResult{
		ValEVLow:  k(5_865_000),
		ValEVMid:  k(6_900_000),
		ValEVHigh: k(7_935_000),
	}
	low, mid, high, ok = evCorridorK(free)
	require.True(t, ok)
	assert.Equal(t, int64(5_865), low)
	assert.Equal(t, int64(6_900), mid)
	assert.Equal(t, int64(7_935), high)

	_, _, _, ok = evCorridorK(&model.ValuationResult{})
	assert.False(t, ok)
}

func TestCompositeScore(t *testing.T) {
	res := &model.ValuationResult{
		Variant:                  model.VariantFree,
		AcquisitionScore:         42,
		TapwayScore:              67,
		TapwayInstitutionalScore: 69,
	}
	assert.Equal(t, 42, compositeScore(res))
	assert.Equal(t, "Acquisition score", compositeLabel(res.Variant))

	res.Variant = model.VariantStandard
	assert.Equal(t, 67, compositeScore(res))
	assert.Equal(t, "Tapway score", compositeLabel(res.Variant))

	res.Variant = model.VariantEnterprise
	assert.Equal(t, 69, compositeScore(res))
	assert.Equal(t, "Institutional score", compositeLabel(res.Variant))
}

func TestWriteResultTable(t *testing.T) {
	eng := builtinTestEngine(t)

	res, err := eng.Valuate(model.VariantFree, model.CompanyInput{
		CompanyName:      "Acme Industrie GmbH",
		Sector:           "Manufacturing",
		Country:          "DE",
		Currency:         "EUR",
		AnnualRevenue:    model.Num(10_000_000),
		Ebit:             model.Num(1_200_000),
		Employees:        model.Num(50),
		Top3CustomersPct: model.Num(40),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeResultTable(&buf, res))
	out := buf.String()

	assert.Contains(t, out, "Acme Industrie GmbH")
	assert.Contains(t, out, "6,900k EUR")
	assert.Contains(t, out, "Acquisition score")
	assert.Contains(t, out, "PASS")
	// Free tier has no dealability block.
	assert.NotContains(t, out, "Dealability")
}

func TestWriteResultJSONRoundTrips(t *testing.T) {
	eng := builtinTestEngine(t)

	res, err := eng.Valuate(model.VariantStandard, model.CompanyInput{
		CompanyName: "Cloudline SE",
		Sector:      "SaaS",
		RevenueY1:   model.Num(9_000_000),
		RevenueY2:   model.Num(10_000_000),
		RevenueY3:   model.Num(11_000_000),
		EbitY3:      model.Num(2_000_000),
		EbitF1:      model.Num(2_500_000),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeResultJSON(&buf, res))
	assert.Contains(t, buf.String(), `"company_name": "Cloudline SE"`)
	assert.Contains(t, buf.String(), `"variant": "standard"`)
}
