package http

import (
	"net/http"

	"assetfin-backend/internal/usecase/asset"

	"github.com/labstack/echo/v4"
)

type AssetHandler struct{ uc *asset.Usecase }

func NewAssetHandler(uc *asset.Usecase) *AssetHandler { return &AssetHandler{uc: uc} }

func (h *AssetHandler) Create(c echo.Context) error {
	var req asset.UpsertAssetInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AssetHandler) Update(c echo.Context) error {
	assetID := c.Param("asset_id")
	if assetID == "" {
		return missingParam(c, "asset_id")
	}
	var req asset.UpsertAssetInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Update(c.Request().Context(), assetID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AssetHandler) Delete(c echo.Context) error {
	assetID := c.Param("asset_id")
	if assetID == "" {
		return missingParam(c, "asset_id")
	}
	if err := h.uc.Delete(c.Request().Context(), assetID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AssetHandler) List(c echo.Context) error {
	ownerID := c.QueryParam("owner_id")
	if ownerID == "" {
		return missingParam(c, "owner_id")
	}
	out, err := h.uc.List(c.Request().Context(), ownerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AssetHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("asset_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AssetHandler) Depreciation(c echo.Context) error {
	points, err := h.uc.Schedule(c.Request().Context(), c.Param("asset_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"asset_id":              c.Param("asset_id"),
		"depreciation_schedule": points,
	})
}
