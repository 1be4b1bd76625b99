package handler

import (
	"context"
	"net/http"
	"time"

	"inventory-tracker/internal/delivery/dto"
	"inventory-tracker/internal/domain/repository"
	"inventory-tracker/pkg/response"

	"github.com/sirupsen/logrus"
)

type HealthHandler struct {
	log         *logrus.Logger
	productRepo repository.ProductRepository
	storeName   string
}

func NewHealthHandler(log *logrus.Logger, productRepo repository.ProductRepository, storeName string) *HealthHandler {
	return &HealthHandler{
		log:         log,
		productRepo: productRepo,
		storeName:   storeName,
	}
}

// Check pings the product store
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.productRepo.Ping(ctx); err != nil {
		h.log.Warnf("Failed to ping %s store: %+v", h.storeName, err)
		response.JSON(w, http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable", Store: h.storeName})
		return
	}

	response.JSON(w, http.StatusOK, dto.HealthResponse{Status: "ok", Store: h.storeName})
}
