package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"inventory-tracker/internal/domain/entity"
	domainRepo "inventory-tracker/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const incrementProductSQL = `
INSERT INTO products (id, name, count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (name) DO UPDATE
SET count = products.count + EXCLUDED.count, updated_at = EXCLUDED.updated_at
RETURNING id, name, count, created_at, updated_at, (xmax = 0) AS inserted`

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

type incrementResult struct {
	ID        string
	Name      string
	Count     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
	Inserted  bool
}

func (r *productRepository) Increment(ctx context.Context, name string, delta decimal.Decimal) (*entity.Product, bool, error) {
	now := time.Now().UTC()

	var result incrementResult
	err := r.db.WithContext(ctx).
		Raw(incrementProductSQL, uuid.NewString(), name, delta, now, now).
		Scan(&result).Error
	if err != nil {
		return nil, false, err
	}

	product := &entity.Product{
		ID:        result.ID,
		Name:      result.Name,
		Count:     result.Count,
		CreatedAt: result.CreatedAt,
		UpdatedAt: result.UpdatedAt,
	}
	return product, result.Inserted, nil
}

func (r *productRepository) FindByName(ctx context.Context, name string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Search(ctx context.Context, filter *entity.ProductFilter, limit, offset int) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.WithContext(gctx).Model(&entity.Product{}).Scopes(productFilterScope(filter)).Count(&total).Error
	})
	g.Go(func() error {
		return r.db.WithContext(gctx).
			Scopes(productFilterScope(filter)).
			Order("created_at ASC, name ASC").
			Limit(limit).
			Offset(offset).
			Find(&products).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) Update(ctx context.Context, name string, changes entity.ProductChanges) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", name).First(&product).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if changes.Name != nil {
			updates["name"] = *changes.Name
		}
		if changes.Count != nil {
			updates["count"] = *changes.Count
		}
		if len(updates) > 0 {
			if err := tx.Model(&entity.Product{}).Where("id = ?", product.ID).Updates(updates).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", product.ID).First(&product).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, domainRepo.ErrDuplicateName
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) DeleteByName(ctx context.Context, name string) (int64, error) {
	result := r.db.WithContext(ctx).Where("name = ?", name).Delete(&entity.Product{})
	return result.RowsAffected, result.Error
}

func (r *productRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func productFilterScope(filter *entity.ProductFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter == nil {
			return db
		}
		if filter.Name != "" {
			return db.Where("name = ?", filter.Name)
		}
		if filter.Search != "" {
			return db.Where("name ILIKE ?", "%"+escapeLike(filter.Search)+"%")
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// isUniqueViolation checks for PostgreSQL error code 23505 = unique_violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
