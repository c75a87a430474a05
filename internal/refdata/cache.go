package refdata

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const snapshotKey = "snapshot"

// CachedProvider wraps another provider with a TTL cache, so repeated
// computations reuse one snapshot and refreshes happen independently of the
// calls that triggered them. A stale snapshot is still a consistent one;
// every computation sees exactly the copy it started with.
type CachedProvider struct {
	inner Provider
	cache *gocache.Cache
}

// NewCached wraps inner with the given time-to-live.
func NewCached(inner Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Load returns the cached snapshot, loading through on miss or expiry.
func (p *CachedProvider) Load(ctx context.Context) (*Snapshot, error) {
	if v, ok := p.cache.Get(snapshotKey); ok {
		return v.(*Snapshot), nil
	}

	snap, err := p.inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	p.cache.SetDefault(snapshotKey, snap)

	zap.L().Debug("refdata: snapshot cached", zap.String("version", snap.Version))
	return snap, nil
}

// Invalidate drops the cached snapshot so the next Load refreshes.
func (p *CachedProvider) Invalidate() {
	p.cache.Delete(snapshotKey)
}
