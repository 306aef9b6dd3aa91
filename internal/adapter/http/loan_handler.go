package http

import (
	"net/http"
	"strconv"

	"assetfin-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

func (h *LoanHandler) Create(c echo.Context) error {
	var req loan.UpsertLoanInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) Update(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return missingParam(c, "loan_id")
	}
	var req loan.UpsertLoanInput
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Update(c.Request().Context(), loanID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Delete(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return missingParam(c, "loan_id")
	}
	if err := h.uc.Delete(c.Request().Context(), loanID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LoanHandler) List(c echo.Context) error {
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

func (h *LoanHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Amortization(c echo.Context) error {
	rows, err := h.uc.Amortization(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Payoff quotes the amount due on ?date= (default today) with an optional ?penalty_rate= percent.
func (h *LoanHandler) Payoff(c echo.Context) error {
	var penalty float64
	if raw := c.QueryParam("penalty_rate"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return invalidQuery(c, "penalty_rate", "must be a number")
		}
		penalty = v
	}
	quote, err := h.uc.Payoff(c.Request().Context(), c.Param("loan_id"), c.QueryParam("date"), penalty)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}
