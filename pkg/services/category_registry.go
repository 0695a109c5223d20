package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/repositories"
)

// CategoryRegistry resolves category names to IDs.
//
// Lookups are served from an in-memory map built from a full table scan on
// first use. Every code path that creates categories calls Invalidate, and an
// invalidated registry rebuilds on the next lookup.
type CategoryRegistry interface {
	// Resolve returns the ID of the named category or an error wrapping
	// apperrors.ErrUnknownCategory.
	Resolve(ctx context.Context, name string) (int64, error)
	// AllNames returns the set of known category names.
	AllNames(ctx context.Context) (map[string]struct{}, error)
	// Mapping returns a copy of the name to ID map.
	Mapping(ctx context.Context) (map[string]int64, error)
	// EnsureCategories creates the named categories that do not exist yet
	// inside uow and returns the IDs of all of them as seen by uow.
	EnsureCategories(ctx context.Context, uow database.UnitOfWork, records []models.NamedRecord) (map[string]int64, error)
	// Invalidate drops the cached map.
	Invalidate()
}

type categoryRegistry struct {
	db     database.Querier
	repo   repositories.CategoryRepository
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]int64
}

// NewCategoryRegistry creates a registry that loads committed categories
// through db.
func NewCategoryRegistry(db database.Querier, repo repositories.CategoryRepository, logger *zap.Logger) CategoryRegistry {
	return &categoryRegistry{
		db:     db,
		repo:   repo,
		logger: logger.Named("category_registry"),
	}
}

var _ CategoryRegistry = (*categoryRegistry)(nil)

func (r *categoryRegistry) Resolve(ctx context.Context, name string) (int64, error) {
	m, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	id, ok := m[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrUnknownCategory, name)
	}
	return id, nil
}

func (r *categoryRegistry) AllNames(ctx context.Context) (map[string]struct{}, error) {
	m, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]struct{}, len(m))
	for name := range m {
		names[name] = struct{}{}
	}
	return names, nil
}

func (r *categoryRegistry) Mapping(ctx context.Context) (map[string]int64, error) {
	m, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(m))
	for name, id := range m {
		out[name] = id
	}
	return out, nil
}

func (r *categoryRegistry) EnsureCategories(ctx context.Context, uow database.UnitOfWork, records []models.NamedRecord) (map[string]int64, error) {
	inserted, err := r.repo.EnsureNames(ctx, uow, records)
	if err != nil {
		return nil, err
	}
	if inserted > 0 {
		r.logger.Info("Created categories", zap.Int64("count", inserted))
		r.Invalidate()
	}

	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Name
	}
	return r.repo.IDsByName(ctx, uow, names)
}

func (r *categoryRegistry) Invalidate() {
	r.mu.Lock()
	r.cache = nil
	r.mu.Unlock()
}

// load returns the cached map, building it if needed. The returned map must
// not be modified.
func (r *categoryRegistry) load(ctx context.Context) (map[string]int64, error) {
	r.mu.RLock()
	m := r.cache
	r.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache != nil {
		return r.cache, nil
	}

	categories, err := r.repo.List(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	m = make(map[string]int64, len(categories))
	for _, c := range categories {
		m[c.Name] = c.ID
	}
	r.cache = m
	r.logger.Debug("Loaded category registry", zap.Int("count", len(m)))
	return m, nil
}
