package refdata

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteProvider loads the reference tables from a local SQLite file, the
// offline distribution format of the constant tables.
type SQLiteProvider struct {
	dsn     string
	version string
}

// NewSQLite creates a provider for the given database path.
func NewSQLite(dsn, version string) *SQLiteProvider {
	return &SQLiteProvider{dsn: dsn, version: version}
}

// Load opens the database read-only and reads every reference series.
func (p *SQLiteProvider) Load(ctx context.Context) (*Snapshot, error) {
	db, err := sql.Open("sqlite", p.dsn+"?mode=ro")
	if err != nil {
		return nil, eris.Wrap(err, "refdata: open sqlite")
	}
	defer db.Close()

	snap := &Snapshot{
		Version:       p.version,
		Sectors:       make(map[string]SectorMetrics),
		Countries:     make(map[string]float64),
		FXRates:       make(map[string]float64),
		CreditRatings: make(map[string]int),
	}

	if err := p.loadKeyed(ctx, db, snap); err != nil {
		return nil, err
	}
	if err := p.loadBands(ctx, db, snap); err != nil {
		return nil, err
	}

	out := snap.normalized()
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *SQLiteProvider) loadKeyed(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	rows, err := db.QueryContext(ctx,
		`SELECT subsector_name_updated, base_ebit_multiple, target_ebit_margin_pct, target_cagr_pct, COALESCE(score, 0)
		 FROM constant_sector_metrics`)
	if err != nil {
		return eris.Wrap(err, "refdata: sqlite query sector metrics")
	}
	for rows.Next() {
		var name string
		var m SectorMetrics
		if err := rows.Scan(&name, &m.BaseMultiple, &m.TargetMarginPct, &m.TargetCAGRPct, &m.GrowthScore); err != nil {
			rows.Close()
			return eris.Wrap(err, "refdata: sqlite scan sector metrics")
		}
		snap.Sectors[name] = m
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "refdata: sqlite iterate sector metrics")
	}

	type keyedQuery struct {
		sql  string
		dest func(key string, val float64)
	}
	for _, q := range []keyedQuery{
		{`SELECT country_code, delta_multiple FROM constant_country_adjustments`,
			func(k string, v float64) { snap.Countries[k] = v }},
		{`SELECT currency_code, rate_to_eur FROM constant_fx_rates`,
			func(k string, v float64) { snap.FXRates[k] = v }},
		{`SELECT rating, score FROM constant_credit_ratings`,
			func(k string, v float64) { snap.CreditRatings[k] = int(v) }},
	} {
		rows, err := db.QueryContext(ctx, q.sql)
		if err != nil {
			return eris.Wrapf(err, "refdata: sqlite query %q", q.sql)
		}
		for rows.Next() {
			var key string
			var val float64
			if err := rows.Scan(&key, &val); err != nil {
				rows.Close()
				return eris.Wrap(err, "refdata: sqlite scan keyed series")
			}
			q.dest(key, val)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return eris.Wrap(err, "refdata: sqlite iterate keyed series")
		}
	}
	return nil
}

func (p *SQLiteProvider) loadBands(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	type bandQuery struct {
		sql  string
		dest func(min, delta float64)
	}
	for _, q := range []bandQuery{
		{`SELECT rev_min_eur, delta_multiple FROM constant_size_adjustments ORDER BY rev_min_eur ASC`,
			func(min, delta float64) { snap.SizeBands = append(snap.SizeBands, Band{Min: min, Delta: delta}) }},
		{`SELECT top3_min_pct, delta_multiple FROM constant_concentration_adjustments ORDER BY top3_min_pct ASC`,
			func(min, delta float64) { snap.ConcentrationBands = append(snap.ConcentrationBands, Band{Min: min, Delta: delta}) }},
		{`SELECT ev_min_eur, size_score FROM constant_deal_size_scores ORDER BY ev_min_eur ASC`,
			func(min, score float64) { snap.DealSizeBands = append(snap.DealSizeBands, ScoreBand{MinEV: min, Score: int(score)}) }},
	} {
		rows, err := db.QueryContext(ctx, q.sql)
		if err != nil {
			return eris.Wrapf(err, "refdata: sqlite query %q", q.sql)
		}
		for rows.Next() {
			var min, val float64
			if err := rows.Scan(&min, &val); err != nil {
				rows.Close()
				return eris.Wrap(err, "refdata: sqlite scan band series")
			}
			q.dest(min, val)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return eris.Wrap(err, "refdata: sqlite iterate band series")
		}
	}
	return nil
}
