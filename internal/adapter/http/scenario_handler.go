package http

import (
	"net/http"
	"strconv"

	"assetfin-backend/internal/domain/tax"
	"assetfin-backend/internal/usecase/scenario"

	"github.com/labstack/echo/v4"
)

// ScenarioHandler serves the liquidation and replacement calculators. None of
// them write, so they sit outside the idempotency middleware.
type ScenarioHandler struct{ uc *scenario.Usecase }

func NewScenarioHandler(uc *scenario.Usecase) *ScenarioHandler { return &ScenarioHandler{uc: uc} }

func (h *ScenarioHandler) Calculate(c echo.Context) error {
	var req scenario.CalculateInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.uc.Calculate(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ValidateInputs answers 200 with the list of problems; only malformed
// bodies are rejected.
func (h *ScenarioHandler) ValidateInputs(c echo.Context) error {
	var req tax.Scenario
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return c.JSON(http.StatusOK, h.uc.Validate(req))
}

// TaxPolicy accepts a year or "current".
func (h *ScenarioHandler) TaxPolicy(c echo.Context) error {
	raw := c.Param("year")
	year := 0
	if raw != "current" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1900 || y > 2200 {
			return invalidQuery(c, "year", "must be a four digit year or current")
		}
		year = y
	}
	return c.JSON(http.StatusOK, h.uc.Policy(year))
}

func (h *ScenarioHandler) MarginalRate(c echo.Context) error {
	raw := c.QueryParam("taxable_income")
	if raw == "" {
		return missingParam(c, "taxable_income")
	}
	income, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return invalidQuery(c, "taxable_income", "must be a number")
	}
	year := 0
	if y := c.QueryParam("year"); y != "" {
		if year, err = strconv.Atoi(y); err != nil {
			return invalidQuery(c, "year", "must be a four digit year")
		}
	}
	out, err := h.uc.MarginalRate(income, year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ScenarioHandler) LoanImpact(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return missingParam(c, "loan_id")
	}
	var req scenario.LoanImpactInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.LoanImpact(c.Request().Context(), loanID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
