package database

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of analyses CachedRepository keeps.
const DefaultCacheSize = 256

// CachedRepository keeps recently saved or read analyses in memory, keyed by session ID.
type CachedRepository struct {
	repo  Repository
	cache *lru.Cache[string, *Analysis]
}

var _ Repository = (*CachedRepository)(nil)

// NewCachedRepository wraps repo with an LRU of the given size (DefaultCacheSize when not positive).
func NewCachedRepository(repo Repository, size int) (*CachedRepository, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is nil")
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *Analysis](size)
	if err != nil {
		return nil, err
	}
	return &CachedRepository{repo: repo, cache: cache}, nil
}

func (c *CachedRepository) Save(ctx context.Context, a *Analysis) error {
	if err := c.repo.Save(ctx, a); err != nil {
		return err
	}
	cp := *a
	c.cache.Add(a.SessionID, &cp)
	return nil
}

func (c *CachedRepository) Get(ctx context.Context, sessionID string) (*Analysis, error) {
	if a, ok := c.cache.Get(sessionID); ok {
		cp := *a
		return &cp, nil
	}
	a, err := c.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cp := *a
	c.cache.Add(sessionID, &cp)
	return a, nil
}

// List always reads through; it is ordered by the underlying store.
func (c *CachedRepository) List(ctx context.Context, limit int) ([]Analysis, error) {
	return c.repo.List(ctx, limit)
}

// Len returns the number of cached analyses.
func (c *CachedRepository) Len() int {
	return c.cache.Len()
}
