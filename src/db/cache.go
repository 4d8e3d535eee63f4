package db

import (
	"context"
	"fmt"
	"time"

	"fintrack-server/src/logging"

	"github.com/dgraph-io/ristretto"
)

// RevocationStore persists revoked token ids until their expiry.
type RevocationStore interface {
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	// GetRevokedToken reports whether jti is revoked and, if so, when the
	// revocation lapses.
	GetRevokedToken(ctx context.Context, jti string) (time.Time, bool, error)
}

// blocklistCacheSize is the number of revoked ids kept in memory. Ids
// evicted from the cache are still found in the store.
const blocklistCacheSize = 1 << 16

// TokenBlocklist remembers revoked token ids until the tokens would have
// expired anyway. The store is authoritative; ristretto caches positive
// lookups in front of it.
type TokenBlocklist struct {
	store RevocationStore
	cache *ristretto.Cache
	now   func() time.Time
}

func NewTokenBlocklist(store RevocationStore) (*TokenBlocklist, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10 * blocklistCacheSize, // number of keys to track frequency of
		MaxCost:            blocklistCacheSize,
		BufferItems:        64, // number of keys per Get buffer
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize token blocklist: %w", err)
	}
	return &TokenBlocklist{store: store, cache: cache, now: time.Now}, nil
}

// Revoke blocks jti until expiresAt. Tokens that have already expired are
// not recorded.
func (b *TokenBlocklist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := b.store.RevokeToken(ctx, jti, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	b.remember(ctx, jti, ttl)
	return nil
}

func (b *TokenBlocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if _, found := b.cache.Get(jti); found {
		return true, nil
	}
	expiresAt, found, err := b.store.GetRevokedToken(ctx, jti)
	if err != nil {
		return false, fmt.Errorf("look up revoked token: %w", err)
	}
	if !found {
		return false, nil
	}
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return false, nil
	}
	b.remember(ctx, jti, ttl)
	return true, nil
}

func (b *TokenBlocklist) remember(ctx context.Context, jti string, ttl time.Duration) {
	if !b.cache.SetWithTTL(jti, struct{}{}, 1, ttl) {
		logging.FromContext(ctx).Debug("token blocklist cache dropped entry", "jti", jti)
		return
	}
	b.cache.Wait()
}

func (b *TokenBlocklist) Close() {
	b.cache.Close()
}
