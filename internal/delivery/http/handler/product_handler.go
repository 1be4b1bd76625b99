package handler

import (
	"errors"
	"net/http"
	"strconv"

	"inventory-tracker/internal/delivery/dto"
	"inventory-tracker/internal/usecase"
	"inventory-tracker/pkg/request"
	"inventory-tracker/pkg/response"
	"inventory-tracker/pkg/validator"
)

type ProductHandler struct {
	productUsecase usecase.ProductUsecase
	validator      *validator.CustomValidator
}

func NewProductHandler(productUsecase usecase.ProductUsecase, validator *validator.CustomValidator) *ProductHandler {
	return &ProductHandler{
		productUsecase: productUsecase,
		validator:      validator,
	}
}

// Create handles create-or-increment
// @Summary Add stock for a product
// @Description Create the product, or add count to it when the name already exists
// @Tags Products
// @Accept json
// @Produce json
// @Param request body dto.CreateProductRequest true "Create Product Request"
// @Success 201 {object} dto.ProductResponse
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	product, created, err := h.productUsecase.CreateOrIncrement(r.Context(), &req)
	if err != nil {
		writeProductError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.JSON(w, status, product)
}

// List handles paginated product search
// @Summary Search products
// @Description Exact name match, or case-insensitive substring search, paginated
// @Tags Products
// @Produce json
// @Param name query string false "Exact product name"
// @Param search query string false "Substring of the product name"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} dto.ProductListResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// unparsable numbers fall back to the defaults
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.productUsecase.Search(r.Context(), dto.ProductQuery{
		Name:   q.Get("name"),
		Search: q.Get("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		response.InternalServerError(w, "")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Update handles partial product update
// @Summary Update a product
// @Description Rename a product and/or set its count
// @Tags Products
// @Accept json
// @Produce json
// @Param request body dto.UpdateProductRequest true "Update Product Request"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /products [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProductRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	product, err := h.productUsecase.Update(r.Context(), &req)
	if err != nil {
		writeProductError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// Delete handles product deletion
// @Summary Delete a product
// @Description Delete the product with the given name
// @Tags Products
// @Accept json
// @Produce json
// @Param request body dto.DeleteProductRequest true "Delete Product Request"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /products [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteProductRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.productUsecase.Delete(r.Context(), &req); err != nil {
		writeProductError(w, err)
		return
	}

	response.Message(w, http.StatusOK, "Product deleted successfully")
}

func writeProductError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		response.BadRequest(w, "Invalid input")
	case errors.Is(err, usecase.ErrNoChange):
		response.BadRequest(w, "At least one change is required")
	case errors.Is(err, usecase.ErrProductNotFound):
		response.NotFound(w, "Product not found")
	case errors.Is(err, usecase.ErrProductNameTaken):
		response.Conflict(w, "Product name already exists")
	default:
		response.InternalServerError(w, "")
	}
}

// decodeAndValidate writes the error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, dst interface{}) bool {
	if err := request.DecodeJSONBody(w, r, dst); err != nil {
		var malformed *request.MalformedRequestError
		if errors.As(err, &malformed) {
			response.Error(w, malformed.Status, malformed.Message)
		} else {
			response.BadRequest(w, "Invalid input")
		}
		return false
	}

	if err := v.Validate(dst); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}
