package usecase

import (
	"context"
	"errors"
	"math"

	"inventory-tracker/internal/converter"
	"inventory-tracker/internal/delivery/dto"
	"inventory-tracker/internal/domain/entity"
	"inventory-tracker/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrProductNotFound  = errors.New("product not found")
	ErrNoChange         = errors.New("at least one change is required")
	ErrProductNameTaken = errors.New("product name already exists")
)

type ProductUsecase interface {
	// CreateOrIncrement reports created=true when the product did not exist before.
	CreateOrIncrement(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, bool, error)
	Search(ctx context.Context, query dto.ProductQuery) (*dto.ProductListResponse, error)
	Update(ctx context.Context, req *dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, req *dto.DeleteProductRequest) error
}

type productUsecase struct {
	log         *logrus.Logger
	productRepo repository.ProductRepository
}

func NewProductUsecase(log *logrus.Logger, productRepo repository.ProductRepository) ProductUsecase {
	return &productUsecase{
		log:         log,
		productRepo: productRepo,
	}
}

func (u *productUsecase) CreateOrIncrement(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, bool, error) {
	if req.Name == "" || req.Count == nil {
		return nil, false, ErrInvalidInput
	}

	product, created, err := u.productRepo.Increment(ctx, req.Name, *req.Count)
	if err != nil {
		u.log.Warnf("Failed to increment product %q: %+v", req.Name, err)
		return nil, false, err
	}

	u.log.WithFields(logrus.Fields{
		"product": product.Name,
		"count":   product.Count.String(),
		"created": created,
	}).Debug("Product stock incremented")

	return converter.ProductToResponse(product), created, nil
}

func (u *productUsecase) Search(ctx context.Context, query dto.ProductQuery) (*dto.ProductListResponse, error) {
	page, limit := NormalizePagination(query.Page, query.Limit)
	offset := (page - 1) * limit

	filter := &entity.ProductFilter{
		Name:   query.Name,
		Search: query.Search,
	}

	products, total, err := u.productRepo.Search(ctx, filter, limit, offset)
	if err != nil {
		u.log.Warnf("Failed to search products: %+v", err)
		return nil, err
	}

	return &dto.ProductListResponse{
		Products:    converter.ProductsToResponses(products),
		CurrentPage: page,
		TotalPages:  TotalPages(total, limit),
		TotalItems:  total,
	}, nil
}

func (u *productUsecase) Update(ctx context.Context, req *dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var changes entity.ProductChanges
	if req.NewName != "" {
		changes.Name = &req.NewName
	}
	if req.Count != nil {
		changes.Count = req.Count
	}
	if req.Name == "" || changes.IsEmpty() {
		return nil, ErrInvalidInput
	}

	product, err := u.productRepo.FindByName(ctx, req.Name)
	if err != nil {
		u.log.Warnf("Failed to find product %q: %+v", req.Name, err)
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if changes.Name == nil && changes.Count.Equal(product.Count) {
		return nil, ErrNoChange
	}

	updated, err := u.productRepo.Update(ctx, req.Name, changes)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, ErrProductNameTaken
		}
		u.log.Warnf("Failed to update product %q: %+v", req.Name, err)
		return nil, err
	}
	if updated == nil {
		// deleted between the read and the write
		return nil, ErrProductNotFound
	}

	return converter.ProductToResponse(updated), nil
}

func (u *productUsecase) Delete(ctx context.Context, req *dto.DeleteProductRequest) error {
	if req.ProductName == "" {
		return ErrInvalidInput
	}

	deleted, err := u.productRepo.DeleteByName(ctx, req.ProductName)
	if err != nil {
		u.log.Warnf("Failed to delete product %q: %+v", req.ProductName, err)
		return err
	}
	if deleted == 0 {
		return ErrProductNotFound
	}

	return nil
}

// NormalizePagination replaces a page or limit below 1 with its default and caps limit at MaxLimit.
// page is capped so that (page-1)*limit cannot overflow.
func NormalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}
	return page, limit
}

// TotalPages is ceil(total / limit).
func TotalPages(total int64, limit int) int {
	if limit < 1 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) > 0 {
		pages++
	}
	return int(pages)
}
