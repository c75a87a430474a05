// Package config loads application configuration from file and environment
// and owns the global logger setup.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Refdata RefdataConfig `yaml:"refdata" mapstructure:"refdata"`
	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// RefdataConfig selects where reference series (sector multiples, FX rates,
// adjustment bands) are loaded from.
type RefdataConfig struct {
	// Source is one of "builtin", "yaml", "sqlite", or "postgres".
	Source string `yaml:"source" mapstructure:"source"`
	// Path is the snapshot file for the yaml and sqlite sources.
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Version     string `yaml:"version" mapstructure:"version"`
	// CacheTTLMinutes bounds how long a loaded snapshot is reused; 0 disables
	// caching.
	CacheTTLMinutes int `yaml:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`
}

// EngineConfig carries the per-variant composite weight tables. Sub-score
// internals are fixed formulas; only the blend weights are tunable.
type EngineConfig struct {
	Free       FreeWeights       `yaml:"free" mapstructure:"free"`
	Standard   StandardWeights   `yaml:"standard" mapstructure:"standard"`
	Enterprise EnterpriseWeights `yaml:"enterprise" mapstructure:"enterprise"`
}

// FreeWeights blends the acquisition score terms. Weights sum to 1.
type FreeWeights struct {
	Profitability float64 `yaml:"profitability" mapstructure:"profitability"`
	Concentration float64 `yaml:"concentration" mapstructure:"concentration"`
	Size          float64 `yaml:"size" mapstructure:"size"`
	Multiple      float64 `yaml:"multiple" mapstructure:"multiple"`
}

// StandardWeights blends the standard-tier composites. The attractiveness
// weights sum to 1, as do the two deal-score weights.
type StandardWeights struct {
	FinancialStrength float64 `yaml:"financial_strength" mapstructure:"financial_strength"`
	Growth            float64 `yaml:"growth" mapstructure:"growth"`
	RiskManagement    float64 `yaml:"risk_management" mapstructure:"risk_management"`
	SectorContext     float64 `yaml:"sector_context" mapstructure:"sector_context"`
	DataCompleteness  float64 `yaml:"data_completeness" mapstructure:"data_completeness"`

	Attractiveness float64 `yaml:"attractiveness" mapstructure:"attractiveness"`
	Dealability    float64 `yaml:"dealability" mapstructure:"dealability"`
}

// EnterpriseWeights blends the institutional composite. The five sub-score
// weights sum to 0.9, leaving headroom for the institutional bonus.
type EnterpriseWeights struct {
	FinancialStrength float64 `yaml:"financial_strength" mapstructure:"financial_strength"`
	RiskManagement    float64 `yaml:"risk_management" mapstructure:"risk_management"`
	MarketContext     float64 `yaml:"market_context" mapstructure:"market_context"`
	Dealability       float64 `yaml:"dealability" mapstructure:"dealability"`
	Reliability       float64 `yaml:"reliability" mapstructure:"reliability"`

	// BonusPoints is added when the EV midpoint exceeds BonusEVThresholdEUR
	// and the financials are audited.
	BonusPoints         float64 `yaml:"bonus_points" mapstructure:"bonus_points"`
	BonusEVThresholdEUR float64 `yaml:"bonus_ev_threshold_eur" mapstructure:"bonus_ev_threshold_eur"`

	Risk RiskBlendWeights `yaml:"risk" mapstructure:"risk"`
}

// RiskBlendWeights blends the enterprise risk-management terms. Sums to 1.
type RiskBlendWeights struct {
	Credit       float64 `yaml:"credit" mapstructure:"credit"`
	Leverage     float64 `yaml:"leverage" mapstructure:"leverage"`
	Liquidity    float64 `yaml:"liquidity" mapstructure:"liquidity"`
	Ownership    float64 `yaml:"ownership" mapstructure:"ownership"`
	MgmtTurnover float64 `yaml:"mgmt_turnover" mapstructure:"mgmt_turnover"`
	Litigation   float64 `yaml:"litigation" mapstructure:"litigation"`
	CountryRisk  float64 `yaml:"country_risk" mapstructure:"country_risk"`
}

// BatchConfig configures batch valuation runs.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TAPWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("batch.max_concurrent", 5)
	v.SetDefault("refdata.source", "builtin")
	v.SetDefault("refdata.cache_ttl_minutes", 60)

	v.SetDefault("engine.free.profitability", 0.30)
	v.SetDefault("engine.free.concentration", 0.25)
	v.SetDefault("engine.free.size", 0.25)
	v.SetDefault("engine.free.multiple", 0.20)

	v.SetDefault("engine.standard.financial_strength", 0.30)
	v.SetDefault("engine.standard.growth", 0.25)
	v.SetDefault("engine.standard.risk_management", 0.20)
	v.SetDefault("engine.standard.sector_context", 0.15)
	v.SetDefault("engine.standard.data_completeness", 0.10)
	v.SetDefault("engine.standard.attractiveness", 0.60)
	v.SetDefault("engine.standard.dealability", 0.40)

	v.SetDefault("engine.enterprise.financial_strength", 0.25)
	v.SetDefault("engine.enterprise.risk_management", 0.20)
	v.SetDefault("engine.enterprise.market_context", 0.15)
	v.SetDefault("engine.enterprise.dealability", 0.15)
	v.SetDefault("engine.enterprise.reliability", 0.15)
	v.SetDefault("engine.enterprise.bonus_points", 3)
	v.SetDefault("engine.enterprise.bonus_ev_threshold_eur", 50_000_000)
	v.SetDefault("engine.enterprise.risk.credit", 0.25)
	v.SetDefault("engine.enterprise.risk.leverage", 0.15)
	v.SetDefault("engine.enterprise.risk.liquidity", 0.15)
	v.SetDefault("engine.enterprise.risk.ownership", 0.15)
	v.SetDefault("engine.enterprise.risk.mgmt_turnover", 0.10)
	v.SetDefault("engine.enterprise.risk.litigation", 0.10)
	v.SetDefault("engine.enterprise.risk.country_risk", 0.10)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
