package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"inventory-tracker/internal/domain/entity"
	domainRepo "inventory-tracker/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]entity.Product
	lastTime time.Time
}

// NewMemoryProductRepository returns a process-local store keyed by product name.
func NewMemoryProductRepository() domainRepo.ProductRepository {
	return &memoryProductRepository{products: make(map[string]entity.Product)}
}

// stamp returns a strictly increasing timestamp so creation order stays total.
// Callers hold mu.
func (r *memoryProductRepository) stamp() time.Time {
	now := time.Now().UTC()
	if !now.After(r.lastTime) {
		now = r.lastTime.Add(time.Nanosecond)
	}
	r.lastTime = now
	return now
}

func (r *memoryProductRepository) Increment(_ context.Context, name string, delta decimal.Decimal) (*entity.Product, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.stamp()
	p, ok := r.products[name]
	if ok {
		p.Count = p.Count.Add(delta)
		p.UpdatedAt = now
		r.products[name] = p
		return &p, false, nil
	}

	p = entity.Product{
		ID:        uuid.NewString(),
		Name:      name,
		Count:     delta,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.products[name] = p
	return &p, true, nil
}

func (r *memoryProductRepository) FindByName(_ context.Context, name string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[name]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memoryProductRepository) Search(_ context.Context, filter *entity.ProductFilter, limit, offset int) ([]entity.Product, int64, error) {
	r.mu.RLock()
	matched := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		if matchesFilter(p, filter) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].Name < matched[j].Name
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return []entity.Product{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func matchesFilter(p entity.Product, filter *entity.ProductFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Name != "" {
		return p.Name == filter.Name
	}
	if filter.Search != "" {
		return strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search))
	}
	return true
}

func (r *memoryProductRepository) Update(_ context.Context, name string, changes entity.ProductChanges) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[name]
	if !ok {
		return nil, nil
	}

	if changes.Name != nil && *changes.Name != name {
		if _, taken := r.products[*changes.Name]; taken {
			return nil, domainRepo.ErrDuplicateName
		}
	}

	if changes.Count != nil {
		p.Count = *changes.Count
	}
	p.UpdatedAt = r.stamp()
	if changes.Name != nil {
		delete(r.products, name)
		p.Name = *changes.Name
	}
	r.products[p.Name] = p
	return &p, nil
}

func (r *memoryProductRepository) DeleteByName(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[name]; !ok {
		return 0, nil
	}
	delete(r.products, name)
	return 1, nil
}

func (r *memoryProductRepository) Ping(context.Context) error {
	return nil
}
