package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dkeye/callroom/internal/core"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
)

// CachedDescriber memoises descriptions of identical frames, e.g. a static
// camera. Failures are never cached.
type CachedDescriber struct {
	next  core.Describer
	cache *lru.Cache
}

// NewCachedDescriber wraps next; size <= 0 returns next unchanged.
func NewCachedDescriber(next core.Describer, size int) (core.Describer, error) {
	if size <= 0 {
		return next, nil
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create describe cache: %w", err)
	}
	return &CachedDescriber{next: next, cache: cache}, nil
}

func (d *CachedDescriber) Describe(ctx context.Context, frame string) (string, error) {
	sum := sha256.Sum256([]byte(frame))
	key := hex.EncodeToString(sum[:])
	if v, ok := d.cache.Get(key); ok {
		log.Debug().Str("module", "adapters.ai").Str("key", key[:12]).Msg("describe cache hit")
		return v.(string), nil
	}
	desc, err := d.next.Describe(ctx, frame)
	if err != nil {
		return "", err
	}
	d.cache.Add(key, desc)
	return desc, nil
}

func (d *CachedDescriber) Len() int { return d.cache.Len() }
