package repository

import (
	"context"
	"errors"

	"inventory-tracker/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// ErrDuplicateName is returned when a write would give two products the same name.
var ErrDuplicateName = errors.New("product name already exists")

type ProductRepository interface {
	// Increment adds delta to the product's count, creating the product with count delta
	// when it does not exist. It is atomic per name. created reports which case applied.
	Increment(ctx context.Context, name string, delta decimal.Decimal) (product *entity.Product, created bool, err error)
	// FindByName returns nil, nil when no product has that name.
	FindByName(ctx context.Context, name string) (*entity.Product, error)
	Search(ctx context.Context, filter *entity.ProductFilter, limit, offset int) ([]entity.Product, int64, error)
	// Update applies changes to the product currently named name and returns the stored result.
	// It returns nil, nil when no product has that name.
	Update(ctx context.Context, name string, changes entity.ProductChanges) (*entity.Product, error)
	// DeleteByName returns the number of removed products (0 or 1).
	DeleteByName(ctx context.Context, name string) (int64, error)
	Ping(ctx context.Context) error
}
