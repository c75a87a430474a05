// Package model defines the flat input and output records exchanged with the
// valuation engine. Inputs arrive as loosely typed JSON (numbers as strings,
// booleans as "Yes"/"No") and are normalized here so the engine only ever sees
// typed values with an explicit absent state.
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Variant selects the valuation pipeline richness.
type Variant string

const (
	VariantFree       Variant = "free"
	VariantStandard   Variant = "standard"
	VariantEnterprise Variant = "enterprise"
)

// ParseVariant normalizes a variant name.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free":
		return VariantFree, nil
	case "standard":
		return VariantStandard, nil
	case "enterprise":
		return VariantEnterprise, nil
	}
	return "", eris.Errorf("model: unknown variant %q (want free, standard, or enterprise)", s)
}

// Number is an optional numeric input. The zero value is absent, which is
// distinct from a legitimate 0 (zero EBIT is valid input; an absent figure is
// not). JSON numbers and numeric strings (with optional thousands separators)
// are both accepted.
type Number struct {
	Valid bool
	Value float64
}

// Num builds a present Number; handy in tests and fixtures.
func Num(v float64) Number { return Number{Valid: true, Value: v} }

// Or returns the value, or fallback when absent.
func (n Number) Or(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Value
}

// Ptr returns the value as a pointer, or nil when absent.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// UnmarshalJSON accepts a JSON number, a numeric string ("394,328,000,000"
// included), or null.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "model: number string")
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			*n = Number{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return eris.Errorf("model: invalid numeric value %q", s)
		}
		*n = Number{Valid: true, Value: v}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return eris.Wrap(err, "model: number")
	}
	*n = Number{Valid: true, Value: v}
	return nil
}

// MarshalJSON renders the value, or null when absent.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Flag is a tri-state boolean input. Native JSON booleans and "Yes"/"No"
// style strings are accepted case-insensitively; the zero value is unset.
type Flag struct {
	Valid bool
	Value bool
}

// Yes builds a set, true Flag.
func Yes() Flag { return Flag{Valid: true, Value: true} }

// No builds a set, false Flag.
func No() Flag { return Flag{Valid: true, Value: false} }

// True reports whether the flag is set and affirmative.
func (f Flag) True() bool { return f.Valid && f.Value }

// UnmarshalJSON accepts true/false, "Yes"/"No", "true"/"false", or null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = Flag{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "model: flag string")
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "":
			*f = Flag{}
		case "yes", "true", "y", "1":
			*f = Flag{Valid: true, Value: true}
		case "no", "false", "n", "0":
			*f = Flag{Valid: true, Value: false}
		default:
			return eris.Errorf("model: invalid boolean value %q", s)
		}
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return eris.Wrap(err, "model: flag")
	}
	*f = Flag{Valid: true, Value: v}
	return nil
}

// MarshalJSON renders the boolean, or null when unset.
func (f Flag) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// CompanyInput is the flat disclosure record submitted for valuation. It is
// immutable once handed to the engine. Year ordering: Y1 is the oldest
// historical year and Y3 the most recent; F1 is the next forecast year.
type CompanyInput struct {
	// Identification.
	CompanyName   string `json:"company_name"`
	Sector        string `json:"sector,omitempty"`
	CountryCode   string `json:"country_code,omitempty"`
	CurrencyCode  string `json:"currency_code,omitempty"`
	ValuationDate string `json:"valuation_date,omitempty"`
	Employees     Number `json:"employees,omitempty"`

	// Historical financials (local currency).
	RevenueY1 Number `json:"revenue_y1,omitempty"`
	RevenueY2 Number `json:"revenue_y2,omitempty"`
	RevenueY3 Number `json:"revenue_y3,omitempty"`
	EbitY1    Number `json:"ebit_y1,omitempty"`
	EbitY2    Number `json:"ebit_y2,omitempty"`
	EbitY3    Number `json:"ebit_y3,omitempty"`

	// Forecast financials.
	RevenueF1 Number `json:"revenue_f1,omitempty"`
	RevenueF2 Number `json:"revenue_f2,omitempty"`
	RevenueF3 Number `json:"revenue_f3,omitempty"`
	EbitF1    Number `json:"ebit_f1,omitempty"`
	EbitF2    Number `json:"ebit_f2,omitempty"`
	EbitF3    Number `json:"ebit_f3,omitempty"`

	// Balance sheet and capital structure.
	TotalDebt          Number `json:"total_debt,omitempty"`
	CurrentAssets      Number `json:"current_assets,omitempty"`
	CurrentLiabilities Number `json:"current_liabilities,omitempty"`
	CreditRating       string `json:"credit_rating,omitempty"`
	OwnershipPct       Number `json:"ownership_pct,omitempty"`
	MgmtTurnoverPct    Number `json:"mgmt_turnover_pct,omitempty"`
	LitigationActive   Flag   `json:"litigation_active,omitempty"`

	// Risk and operations.
	Top3ConcentrationPct   Number `json:"top3_concentration_pct,omitempty"`
	FounderDependencyHigh  Flag   `json:"founder_dependency_high,omitempty"`
	SupplierDependencyHigh Flag   `json:"supplier_dependency_high,omitempty"`
	KeyStaffRetentionPlan  Flag   `json:"key_staff_retention_plan,omitempty"`
	FinancialsAudited      Flag   `json:"financials_audited,omitempty"`
	DocumentationReadiness string `json:"documentation_readiness,omitempty"`
	SellerFlexibility      string `json:"seller_flexibility,omitempty"`
	TargetTimelineMonths   Number `json:"target_timeline_months,omitempty"`

	// Free-tier single-year aliases. The free intake form uses shorter field
	// names and a single reporting year.
	Country          string `json:"country,omitempty"`
	Currency         string `json:"currency,omitempty"`
	AnnualRevenue    Number `json:"annual_revenue,omitempty"`
	Ebit             Number `json:"ebit,omitempty"`
	Top3CustomersPct Number `json:"top3_customers_pct,omitempty"`
}

// CountryRef returns the country code, preferring the long-form field.
func (c *CompanyInput) CountryRef() string {
	if c.CountryCode != "" {
		return c.CountryCode
	}
	return c.Country
}

// CurrencyRef returns the currency code, preferring the long-form field.
func (c *CompanyInput) CurrencyRef() string {
	if c.CurrencyCode != "" {
		return c.CurrencyCode
	}
	return c.Currency
}

// ConcentrationRef returns the top-3 customer concentration percentage,
// preferring the long-form field.
func (c *CompanyInput) ConcentrationRef() Number {
	if c.Top3ConcentrationPct.Valid {
		return c.Top3ConcentrationPct
	}
	return c.Top3CustomersPct
}

// Validate checks the invariants required before any pipeline stage runs.
func (c *CompanyInput) Validate() error {
	if strings.TrimSpace(c.CompanyName) == "" {
		return eris.New("model: company name is required")
	}
	return nil
}
