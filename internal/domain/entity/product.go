package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a named, counted inventory entry. Name is the lookup key for every mutation.
type Product struct {
	ID        string          `gorm:"type:uuid;primaryKey"`
	Name      string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Count     decimal.Decimal `gorm:"type:numeric(38,18);not null;default:0"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

// ProductChanges holds the fields of a partial update. Nil fields are left untouched.
type ProductChanges struct {
	Name  *string
	Count *decimal.Decimal
}

// IsEmpty reports whether no field would change.
func (c ProductChanges) IsEmpty() bool {
	return c.Name == nil && c.Count == nil
}
