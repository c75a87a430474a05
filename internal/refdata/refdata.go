// Package refdata provides read-only access to the reference lookup series
// the valuation engine depends on: sector metrics, country and size
// adjustments, customer-concentration bands, FX rates, deal-size score bands,
// and credit-rating scores. A Snapshot is an immutable point-in-time copy;
// concurrent computations never observe a partially refreshed table.
package refdata

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// SectorMetrics holds the per-sector valuation anchors.
type SectorMetrics struct {
	BaseMultiple    float64 `yaml:"base_ebit_multiple" json:"base_ebit_multiple"`
	TargetMarginPct float64 `yaml:"target_ebit_margin_pct" json:"target_ebit_margin_pct"`
	TargetCAGRPct   float64 `yaml:"target_cagr_pct" json:"target_cagr_pct"`
	GrowthScore     int     `yaml:"score" json:"score"`
}

// Band is one row of an ascending-threshold series: the delta applies to any
// query value at or below Min, with the last band saturating larger values.
type Band struct {
	Min   float64 `yaml:"min" json:"min"`
	Delta float64 `yaml:"delta" json:"delta"`
}

// ScoreBand is one row of the deal-size score series: the score applies to
// any enterprise value at or above MinEV.
type ScoreBand struct {
	MinEV float64 `yaml:"min_ev" json:"min_ev"`
	Score int     `yaml:"score" json:"score"`
}

// Snapshot is a versioned, immutable copy of all reference series. Exact-key
// series are matched on trimmed, lower-cased keys; threshold series must be
// sorted ascending.
type Snapshot struct {
	Version string `yaml:"version" json:"version"`

	Sectors       map[string]SectorMetrics `yaml:"sectors" json:"sectors"`
	Countries     map[string]float64       `yaml:"countries" json:"countries"`
	FXRates       map[string]float64       `yaml:"fx_rates" json:"fx_rates"`
	CreditRatings map[string]int           `yaml:"credit_ratings" json:"credit_ratings"`

	SizeBands          []Band      `yaml:"size_bands" json:"size_bands"`
	ConcentrationBands []Band      `yaml:"concentration_bands" json:"concentration_bands"`
	DealSizeBands      []ScoreBand `yaml:"deal_size_bands" json:"deal_size_bands"`
}

// Provider loads a reference snapshot. Implementations are read-only.
type Provider interface {
	Load(ctx context.Context) (*Snapshot, error)
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

// Sector returns the metrics for a sector, matched case-insensitively.
func (s *Snapshot) Sector(name string) (SectorMetrics, bool) {
	m, ok := s.Sectors[normalizeKey(name)]
	return m, ok
}

// CountryDelta returns the country-risk multiple delta for a country code.
func (s *Snapshot) CountryDelta(code string) (float64, bool) {
	d, ok := s.Countries[normalizeKey(code)]
	return d, ok
}

// FXRate returns the rate-to-EUR for a currency code.
func (s *Snapshot) FXRate(code string) (float64, bool) {
	r, ok := s.FXRates[normalizeKey(code)]
	return r, ok
}

// CreditScore returns the 0-100 score for a credit rating. Rating symbols are
// matched case-sensitively ("AA+" and "aa+" are different tickers upstream,
// but the stored set is upper-case so a trimmed exact match suffices).
func (s *Snapshot) CreditScore(rating string) (int, bool) {
	v, ok := s.CreditRatings[strings.TrimSpace(rating)]
	return v, ok
}

// lookupBand applies the ascending-threshold rule: the first band whose Min
// is at or above the query value supplies the delta; past the last breakpoint
// the series saturates at the final delta.
func lookupBand(bands []Band, value float64) (float64, bool) {
	if len(bands) == 0 {
		return 0, false
	}
	for _, b := range bands {
		if value <= b.Min {
			return b.Delta, true
		}
	}
	return bands[len(bands)-1].Delta, true
}

// SizeDelta returns the size-adjustment delta for an averaged revenue figure.
func (s *Snapshot) SizeDelta(revenueEUR float64) (float64, bool) {
	return lookupBand(s.SizeBands, revenueEUR)
}

// ConcentrationDelta returns the concentration-adjustment delta for a top-3
// customer percentage.
func (s *Snapshot) ConcentrationDelta(top3Pct float64) (float64, bool) {
	return lookupBand(s.ConcentrationBands, top3Pct)
}

// DealSizeScore returns the dealability size sub-score for an enterprise
// value: the highest band whose floor the EV clears, defaulting to the first
// band for any positive EV below every floor.
func (s *Snapshot) DealSizeScore(evEUR float64) (int, bool) {
	if len(s.DealSizeBands) == 0 || evEUR <= 0 {
		return 0, false
	}
	score := s.DealSizeBands[0].Score
	for _, b := range s.DealSizeBands {
		if evEUR >= b.MinEV {
			score = b.Score
		} else {
			break
		}
	}
	return score, true
}

// Validate checks structural invariants: threshold series sorted ascending
// and at least the FX and sector series populated.
func (s *Snapshot) Validate() error {
	var errs []string
	if len(s.Sectors) == 0 {
		errs = append(errs, "sectors series is empty")
	}
	if len(s.FXRates) == 0 {
		errs = append(errs, "fx_rates series is empty")
	}
	if !sort.SliceIsSorted(s.SizeBands, func(i, j int) bool {
		return s.SizeBands[i].Min < s.SizeBands[j].Min
	}) {
		errs = append(errs, "size_bands not sorted ascending")
	}
	if !sort.SliceIsSorted(s.ConcentrationBands, func(i, j int) bool {
		return s.ConcentrationBands[i].Min < s.ConcentrationBands[j].Min
	}) {
		errs = append(errs, "concentration_bands not sorted ascending")
	}
	if !sort.SliceIsSorted(s.DealSizeBands, func(i, j int) bool {
		return s.DealSizeBands[i].MinEV < s.DealSizeBands[j].MinEV
	}) {
		errs = append(errs, "deal_size_bands not sorted ascending")
	}
	if len(errs) > 0 {
		return eris.Errorf("refdata: snapshot validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// normalized returns a copy of the snapshot with exact-key maps re-keyed to
// their normalized form, so providers can load raw table keys as-is.
func (s *Snapshot) normalized() *Snapshot {
	out := &Snapshot{
		Version:            s.Version,
		Sectors:            make(map[string]SectorMetrics, len(s.Sectors)),
		Countries:          make(map[string]float64, len(s.Countries)),
		FXRates:            make(map[string]float64, len(s.FXRates)),
		CreditRatings:      make(map[string]int, len(s.CreditRatings)),
		SizeBands:          append([]Band(nil), s.SizeBands...),
		ConcentrationBands: append([]Band(nil), s.ConcentrationBands...),
		DealSizeBands:      append([]ScoreBand(nil), s.DealSizeBands...),
	}
	for k, v := range s.Sectors {
		out.Sectors[normalizeKey(k)] = v
	}
	for k, v := range s.Countries {
		out.Countries[normalizeKey(k)] = v
	}
	for k, v := range s.FXRates {
		out.FXRates[normalizeKey(k)] = v
	}
	for k, v := range s.CreditRatings {
		out.CreditRatings[strings.TrimSpace(k)] = v
	}
	return out
}
