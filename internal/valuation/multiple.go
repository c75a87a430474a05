package valuation

import (
	"math"

	"github.com/tapway/valuation-engine/internal/model"
	"github.com/tapway/valuation-engine/internal/refdata"
)

// multipleFactors carries the base multiple and its adjustment deltas. The
// base (and therefore the adjusted multiple) is absent when the sector is
// unknown; the deltas default to zero individually.
type multipleFactors struct {
	sector   refdata.SectorMetrics
	sectorOK bool

	base     *float64
	country  float64
	size     float64
	conc     float64
	adjusted *float64
}

// resolveMultiple looks up the sector base multiple and the country, size,
// and concentration deltas, then clamps the adjusted multiple to
// [0.5, base+2.0].
func resolveMultiple(snap *refdata.Snapshot, in *model.CompanyInput, sizeBasisEUR *float64, conc model.Number, w *warnings) multipleFactors {
	var f multipleFactors

	if in.Sector != "" {
		m, ok := snap.Sector(in.Sector)
		if ok {
			f.sector = m
			f.sectorOK = true
			base := m.BaseMultiple
			f.base = &base
		} else {
			w.addf("unknown sector %q, no base multiple", in.Sector)
		}
	}

	if country := in.CountryRef(); country != "" {
		delta, ok := snap.CountryDelta(country)
		if !ok {
			w.addf("unknown country %q, no risk adjustment", country)
		}
		f.country = delta
	}

	if sizeBasisEUR != nil {
		if delta, ok := snap.SizeDelta(*sizeBasisEUR); ok {
			f.size = delta
		}
	}

	if conc.Valid {
		if delta, ok := snap.ConcentrationDelta(conc.Value); ok {
			f.conc = delta
		}
	}

	if f.base != nil {
		adj := *f.base + f.country + f.size + f.conc
		adj = math.Max(0.5, math.Min(adj, *f.base+2.0))
		adj = round2(adj)
		f.adjusted = &adj
	}

	return f
}
