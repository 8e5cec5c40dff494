// Package settings exposes the owner-managed global knobs the checkout
// consults, fronted by a short-lived cache so every checkout does not hit
// the store.
package settings

import (
	"context"
	"strconv"
	"time"

	"github.com/suhanarda/greengrocer/internal/pkg/cache"
)

// KeyMinOrderAmount is the settings table key for the global order minimum.
const KeyMinOrderAmount = "min_order_amount"

// Store is the persistence port for settings rows.
type Store interface {
	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error
}

// Provider resolves typed settings values.
type Provider interface {
	MinOrderAmount(ctx context.Context) (float64, error)
}

type provider struct {
	store Store
	cache cache.Cache // nil-safe: caching skipped if nil
	ttl   time.Duration
}

func NewProvider(store Store, c cache.Cache) Provider {
	return &provider{
		store: store,
		cache: c,
		ttl:   time.Minute,
	}
}

func (p *provider) MinOrderAmount(ctx context.Context) (float64, error) {
	if p.cache != nil {
		key := p.cache.GenerateKey("settings", KeyMinOrderAmount)
		if cached, err := p.cache.Get(ctx, key); err == nil && cached != "" {
			if v, err := strconv.ParseFloat(cached, 64); err == nil {
				return v, nil
			}
		}
	}

	raw, err := p.store.GetSetting(ctx, KeyMinOrderAmount)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}

	if p.cache != nil {
		key := p.cache.GenerateKey("settings", KeyMinOrderAmount)
		_ = p.cache.Set(ctx, key, raw, p.ttl)
	}
	return v, nil
}
