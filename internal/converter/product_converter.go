package converter

import (
	"encoding/json"

	"inventory-tracker/internal/delivery/dto"
	"inventory-tracker/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// ProductToResponse converts a Product entity to ProductResponse DTO
func ProductToResponse(product *entity.Product) *dto.ProductResponse {
	if product == nil {
		return nil
	}

	return &dto.ProductResponse{
		ID:        product.ID,
		Name:      product.Name,
		Count:     json.Number(product.Count.String()),
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}

// ProductsToResponses converts a slice of Product entities, never returning nil
func ProductsToResponses(products []entity.Product) []dto.ProductResponse {
	responses := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, *ProductToResponse(&products[i]))
	}
	return responses
}

// ResponseCount parses the count of a ProductResponse back into a decimal
func ResponseCount(product dto.ProductResponse) (decimal.Decimal, error) {
	return decimal.NewFromString(product.Count.String())
}
