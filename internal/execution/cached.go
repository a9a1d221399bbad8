package execution

import (
	"context"
	"log/slog"
	"time"

	"github.com/spboyer/modeleval/internal/cache"
)

// CachedGenerator serves responses from a cache and fills it from the
// wrapped generator on a miss. Failures are never cached.
type CachedGenerator struct {
	inner Generator
	cache *cache.Cache
	now   func() time.Time
}

// NewCachedGenerator wraps inner with c.
func NewCachedGenerator(inner Generator, c *cache.Cache) *CachedGenerator {
	return &CachedGenerator{inner: inner, cache: c, now: time.Now}
}

// Generate implements Generator.
func (g *CachedGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	key := cache.Key(model, prompt)
	if e, ok := g.cache.Get(key); ok {
		slog.Debug("response cache hit", "model", model)
		return e.Response, nil
	}

	resp, err := g.inner.Generate(ctx, model, prompt)
	if err != nil {
		return "", err
	}
	if err := g.cache.Put(key, cache.Entry{Model: model, Prompt: prompt, Response: resp, CreatedAt: g.now().UTC()}); err != nil {
		slog.Warn("failed to cache response", "model", model, "error", err)
	}
	return resp, nil
}

// Shutdown forwards to the wrapped generator.
func (g *CachedGenerator) Shutdown(ctx context.Context) error {
	return Shutdown(ctx, g.inner)
}
