package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Routes struct {
	Health     *Handler
	Assets     *AssetHandler
	Loans      *LoanHandler
	Valuations *ValuationHandler
	Scenarios  *ScenarioHandler
	Metrics    http.Handler // optional
}

// Register mounts every route on e. mutating wraps the POST/PUT/DELETE routes
// that write (idempotency).
func Register(e *echo.Echo, r Routes, mutating ...echo.MiddlewareFunc) {
	e.GET("/health", r.Health.Health)
	if r.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(r.Metrics))
	}

	assets := e.Group("/assets")
	assets.POST("", r.Assets.Create, mutating...)
	assets.PUT("/:asset_id", r.Assets.Update, mutating...)
	assets.DELETE("/:asset_id", r.Assets.Delete, mutating...)
	assets.GET("", r.Assets.List)
	assets.GET("/:asset_id", r.Assets.Get)
	assets.GET("/:asset_id/depreciation", r.Assets.Depreciation)

	loans := e.Group("/loans")
	loans.POST("", r.Loans.Create, mutating...)
	loans.PUT("/:loan_id", r.Loans.Update, mutating...)
	loans.DELETE("/:loan_id", r.Loans.Delete, mutating...)
	loans.GET("", r.Loans.List)
	loans.GET("/:loan_id", r.Loans.Get)
	loans.GET("/:loan_id/amortization", r.Loans.Amortization)
	loans.GET("/:loan_id/payoff", r.Loans.Payoff)
	loans.POST("/:loan_id/impact", r.Scenarios.LoanImpact)

	vals := e.Group("/valuations")
	vals.GET("", r.Valuations.Equipment)
	vals.GET("/vehicles", r.Valuations.Vehicles)
	vals.GET("/vehicles/total-trade-in", r.Valuations.VehicleTradeIn)
	vals.GET("/assets/:asset_id", r.Valuations.AssetHistory)
	vals.GET("/total-fmv", r.Valuations.TotalFairMarketValue)
	vals.GET("/total-asset-value", r.Valuations.TotalAssetValue)
	vals.GET("/adjusted-forced-liquidation", r.Valuations.AdjustedForcedLiquidation)

	// calculators only, no writes
	sc := e.Group("/scenarios")
	sc.POST("/calculate", r.Scenarios.Calculate)
	sc.POST("/validate-inputs", r.Scenarios.ValidateInputs)
	sc.GET("/tax-policy/:year", r.Scenarios.TaxPolicy)
	sc.GET("/marginal-rate", r.Scenarios.MarginalRate)
}
