package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultEngineConfigValidates(t *testing.T) {
	assert.NoError(t, ValidateConfig(DefaultEngineConfig()))
}

func TestValidateConfigRejectsNegativeWeight(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Standard.Growth = -0.25

	err := ValidateConfig(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "standard.growth")
}

func TestValidateConfigRejectsBadSums(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Free.Profitability = 0.9

	err := ValidateConfig(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "free weights")

	cfg = DefaultEngineConfig()
	cfg.Enterprise.Risk.Credit = 0.5
	err = ValidateConfig(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "enterprise risk weights")

	cfg = DefaultEngineConfig()
	cfg.Enterprise.FinancialStrength = 0
	cfg.Enterprise.RiskManagement = 0
	cfg.Enterprise.MarketContext = 0
	cfg.Enterprise.Dealability = 0
	cfg.Enterprise.Reliability = 0
	err = ValidateConfig(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "enterprise composite weights")
}
