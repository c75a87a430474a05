package valuation

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/tapway/valuation-engine/internal/config"
)

// DefaultEngineConfig returns a config.EngineConfig with the published
// composite weights.
func DefaultEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		Free: config.FreeWeights{
			Profitability: 0.30,
			Concentration: 0.25,
			Size:          0.25,
			Multiple:      0.20,
		},
		Standard: config.StandardWeights{
			FinancialStrength: 0.30,
			Growth:            0.25,
			RiskManagement:    0.20,
			SectorContext:     0.15,
			DataCompleteness:  0.10,
			Attractiveness:    0.60,
			Dealability:       0.40,
		},
		Enterprise: config.EnterpriseWeights{
			FinancialStrength:   0.25,
			RiskManagement:      0.20,
			MarketContext:       0.15,
			Dealability:         0.15,
			Reliability:         0.15,
			BonusPoints:         3,
			BonusEVThresholdEUR: 50_000_000,
			Risk: config.RiskBlendWeights{
				Credit:       0.25,
				Leverage:     0.15,
				Liquidity:    0.15,
				Ownership:    0.15,
				MgmtTurnover: 0.10,
				Litigation:   0.10,
				CountryRisk:  0.10,
			},
		},
	}
}

// ValidateConfig checks that an EngineConfig is internally consistent.
func ValidateConfig(c config.EngineConfig) error {
	var errs []string

	weights := map[string]float64{
		"free.profitability":                  c.Free.Profitability,
		"free.concentration":                  c.Free.Concentration,
		"free.size":                           c.Free.Size,
		"free.multiple":                       c.Free.Multiple,
		"standard.financial_strength":         c.Standard.FinancialStrength,
		"standard.growth":                     c.Standard.Growth,
		"standard.risk_management":            c.Standard.RiskManagement,
		"standard.sector_context":             c.Standard.SectorContext,
		"standard.data_completeness":          c.Standard.DataCompleteness,
		"standard.attractiveness":             c.Standard.Attractiveness,
		"standard.dealability":                c.Standard.Dealability,
		"enterprise.financial_strength":       c.Enterprise.FinancialStrength,
		"enterprise.risk_management":          c.Enterprise.RiskManagement,
		"enterprise.market_context":           c.Enterprise.MarketContext,
		"enterprise.dealability":              c.Enterprise.Dealability,
		"enterprise.reliability":              c.Enterprise.Reliability,
		"enterprise.bonus_points":             c.Enterprise.BonusPoints,
		"enterprise.bonus_ev_threshold_eur":   c.Enterprise.BonusEVThresholdEUR,
		"enterprise.risk.credit":              c.Enterprise.Risk.Credit,
		"enterprise.risk.leverage":            c.Enterprise.Risk.Leverage,
		"enterprise.risk.liquidity":           c.Enterprise.Risk.Liquidity,
		"enterprise.risk.ownership":           c.Enterprise.Risk.Ownership,
		"enterprise.risk.mgmt_turnover":       c.Enterprise.Risk.MgmtTurnover,
		"enterprise.risk.litigation":          c.Enterprise.Risk.Litigation,
		"enterprise.risk.country_risk":        c.Enterprise.Risk.CountryRisk,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	sums := map[string]float64{
		"free weights": c.Free.Profitability + c.Free.Concentration +
			c.Free.Size + c.Free.Multiple,
		"standard attractiveness weights": c.Standard.FinancialStrength +
			c.Standard.Growth + c.Standard.RiskManagement +
			c.Standard.SectorContext + c.Standard.DataCompleteness,
		"standard deal-score weights": c.Standard.Attractiveness + c.Standard.Dealability,
		"enterprise risk weights": c.Enterprise.Risk.Credit + c.Enterprise.Risk.Leverage +
			c.Enterprise.Risk.Liquidity + c.Enterprise.Risk.Ownership +
			c.Enterprise.Risk.MgmtTurnover + c.Enterprise.Risk.Litigation +
			c.Enterprise.Risk.CountryRisk,
	}
	for name, sum := range sums {
		if math.Abs(sum-1) > 0.01 {
			errs = append(errs, fmt.Sprintf("%s should sum to 1.0, got %.2f", name, sum))
		}
	}

	// The institutional composite leaves headroom for the bonus, so its
	// weights must sum below 1 but stay positive.
	entSum := c.Enterprise.FinancialStrength + c.Enterprise.RiskManagement +
		c.Enterprise.MarketContext + c.Enterprise.Dealability + c.Enterprise.Reliability
	if entSum <= 0 || entSum > 1.01 {
		errs = append(errs, fmt.Sprintf("enterprise composite weights must sum in (0, 1], got %.2f", entSum))
	}

	if len(errs) > 0 {
		return eris.Errorf("valuation: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
