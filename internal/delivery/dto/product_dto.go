package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Request DTOs

// CreateProductRequest creates a product or adds Count to an existing one.
// Count accepts a JSON number or a numeric string.
type CreateProductRequest struct {
	Name  string           `json:"name" validate:"required,max=255"`
	Count *decimal.Decimal `json:"count" validate:"required,decimal"`
}

// UpdateProductRequest renames and/or resets the count of the product called Name.
// An empty NewName means no rename.
type UpdateProductRequest struct {
	Name    string           `json:"name" validate:"required"`
	NewName string           `json:"newName,omitempty" validate:"omitempty,max=255"`
	Count   *decimal.Decimal `json:"count,omitempty" validate:"omitempty,decimal"`
}

type DeleteProductRequest struct {
	ProductName string `json:"productName" validate:"required"`
}

// ProductQuery is the parsed query string of a product search.
type ProductQuery struct {
	Name   string
	Search string
	Page   int
	Limit  int
}

// Response DTOs

type ProductResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Count     json.Number `json:"count"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type ProductListResponse struct {
	Products    []ProductResponse `json:"products"`
	CurrentPage int               `json:"currentPage"`
	TotalPages  int               `json:"totalPages"`
	TotalItems  int64             `json:"totalItems"`
}
