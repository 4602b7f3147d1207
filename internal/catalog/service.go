package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// ResultStaleAfter is how long a fetched page is served from cache.
	ResultStaleAfter = 5 * time.Minute
	// CategoriesStaleAfter is how long the category list is served from cache.
	CategoriesStaleAfter = 10 * time.Minute

	categoriesKey = "categories"
)

type cached struct {
	value     any
	fetchedAt time.Time
}

// Service fronts a Provider with a small result cache.
type Service struct {
	provider Provider
	cache    *lru.Cache
	now      func() time.Time
	queries  *prometheus.CounterVec
	source   string
}

type ServiceOption func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithQueryCounter counts queries by source and cache outcome.
func WithQueryCounter(c *prometheus.CounterVec, source string) ServiceOption {
	return func(s *Service) {
		s.queries = c
		s.source = source
	}
}

func NewService(provider Provider, cacheSize int, opts ...ServiceOption) (*Service, error) {
	if cacheSize < 1 {
		cacheSize = 128
	}
	c, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("catalog cache: %w", err)
	}
	s := &Service{provider: provider, cache: c, now: time.Now, source: "unknown"}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Search returns the page for spec, reusing a cached page younger than ResultStaleAfter.
func (s *Service) Search(ctx context.Context, spec QuerySpec) (ResultPage, error) {
	key, err := specKey(spec)
	if err != nil {
		return ResultPage{}, err
	}
	if v, ok := s.lookup(key, ResultStaleAfter); ok {
		s.count("hit")
		return v.(ResultPage), nil
	}
	s.count("miss")

	page, err := s.provider.FetchCatalog(ctx, spec)
	if err != nil {
		return ResultPage{}, fmt.Errorf("fetch catalog: %w", err)
	}
	s.cache.Add(key, cached{value: page, fetchedAt: s.now()})
	return page, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Book, error) {
	return s.provider.GetByID(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	if v, ok := s.lookup(categoriesKey, CategoriesStaleAfter); ok {
		return slices.Clone(v.([]string)), nil
	}
	categories, err := s.provider.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	s.cache.Add(categoriesKey, cached{value: categories, fetchedAt: s.now()})
	return slices.Clone(categories), nil
}

func (s *Service) lookup(key string, staleAfter time.Duration) (any, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	entry := v.(cached)
	if s.now().Sub(entry.fetchedAt) >= staleAfter {
		s.cache.Remove(key)
		return nil, false
	}
	return entry.value, true
}

func (s *Service) count(outcome string) {
	if s.queries != nil {
		s.queries.WithLabelValues(s.source, outcome).Inc()
	}
}

func specKey(spec QuerySpec) (string, error) {
	b, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("catalog cache key: %w", err)
	}
	return "q:" + string(b), nil
}
