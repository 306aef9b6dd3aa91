package http

import (
	"context"
	"net/http"

	valuationDomain "assetfin-backend/internal/domain/valuation"
	"assetfin-backend/internal/usecase/valuation"

	"github.com/labstack/echo/v4"
)

type ValuationHandler struct{ uc *valuation.Usecase }

func NewValuationHandler(uc *valuation.Usecase) *ValuationHandler {
	return &ValuationHandler{uc: uc}
}

// byOwner runs an owner-scoped read and writes its result as JSON.
func byOwner[T any](c echo.Context, fn func(ctx context.Context, ownerID string) (T, error)) error {
	ownerID := c.QueryParam("owner_id")
	if ownerID == "" {
		return missingParam(c, "owner_id")
	}
	out, err := fn(c.Request().Context(), ownerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ValuationHandler) Equipment(c echo.Context) error {
	return byOwner(c, h.uc.EquipmentValuations)
}

func (h *ValuationHandler) Vehicles(c echo.Context) error {
	return byOwner(c, h.uc.VehicleValuations)
}

// TotalFairMarketValue takes an optional metric, adjusted FMV by default.
func (h *ValuationHandler) TotalFairMarketValue(c echo.Context) error {
	metric := c.QueryParam("metric")
	return byOwner(c, func(ctx context.Context, ownerID string) ([]valuationDomain.MonthlyTotal, error) {
		return h.uc.MonthlyTotals(ctx, ownerID, metric)
	})
}

func (h *ValuationHandler) VehicleTradeIn(c echo.Context) error {
	return byOwner(c, h.uc.VehicleTradeInTotals)
}

func (h *ValuationHandler) AssetHistory(c echo.Context) error {
	assetID := c.Param("asset_id")
	if assetID == "" {
		return missingParam(c, "asset_id")
	}
	return byOwner(c, func(ctx context.Context, ownerID string) (*valuationDomain.AssetHistory, error) {
		return h.uc.AssetHistory(ctx, ownerID, assetID)
	})
}

func (h *ValuationHandler) TotalAssetValue(c echo.Context) error {
	return byOwner(c, h.uc.TotalAssetValue)
}

func (h *ValuationHandler) AdjustedForcedLiquidation(c echo.Context) error {
	return byOwner(c, h.uc.AdjustedForcedLiquidation)
}
