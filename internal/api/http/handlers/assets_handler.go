package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// AssetsHandler manages asset master data.
type AssetsHandler struct {
	assets repository.AssetRepository
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assets repository.AssetRepository) *AssetsHandler {
	return &AssetsHandler{assets: assets}
}

// Create POST /assets.
func (h *AssetsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.AssetTag) == "" || strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("asset_tag and name required", nil)
	}

	asset := &domain.Asset{
		AssetTag:       strings.TrimSpace(req.AssetTag),
		Name:           strings.TrimSpace(req.Name),
		DepartmentID:   req.DepartmentID,
		DepartmentName: req.DepartmentName,
		Active:         true,
	}
	if err := h.assets.Create(c.Context(), asset); err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": AssetResponse(asset)})
}

// List GET /assets.
func (h *AssetsHandler) List(c *fiber.Ctx) error {
	activeOnly := c.Query("active") == "true"
	assets, err := h.assets.List(c.Context(), activeOnly)
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		items = append(items, AssetResponse(&assets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AssetResponse maps a domain asset onto the wire shape.
func AssetResponse(asset *domain.Asset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:             asset.ID,
		AssetTag:       asset.AssetTag,
		Name:           asset.Name,
		DepartmentID:   asset.DepartmentID,
		DepartmentName: asset.DepartmentName,
		Active:         asset.Active,
		CreatedAt:      asset.CreatedAt,
		UpdatedAt:      asset.UpdatedAt,
	}
}
