// Package provider is the HTTP client for the external market-value
// services: one for equipment, one for vehicles. Both resolve the asset to a
// catalogue id through a taxonomy lookup first, then fetch the values.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"assetfin-backend/internal/domain/valuation"
	"assetfin-backend/internal/infrastructure/logging"
)

var ErrNoCatalogueMatch = errors.New("provider: no catalogue match")

type Config struct {
	EquipmentURL string
	VehicleURL   string
	EquipmentKey string
	VehicleKey   string
	Timeout      time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  logging.Logger
}

var _ valuation.Provider = (*Client)(nil)

func NewClient(cfg Config, log logging.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, log: log.Named("provider")}
}

// nullable facets arrive as JSON null and are stored as 0
type equipmentValues struct {
	UnadjustedFMV *float64 `json:"unadjustedFmv"`
	UnadjustedOLV *float64 `json:"unadjustedOlv"`
	UnadjustedFLV *float64 `json:"unadjustedFlv"`
	AdjustedFMV   *float64 `json:"adjustedFmv"`
	AdjustedOLV   *float64 `json:"adjustedOlv"`
	AdjustedFLV   *float64 `json:"adjustedFlv"`
	Salvage       *float64 `json:"salvage"`
}

type vehicleValues struct {
	UnadjustedLow       *float64 `json:"unadjustedLow"`
	UnadjustedHigh      *float64 `json:"unadjustedHigh"`
	UnadjustedFinance   *float64 `json:"unadjustedFinance"`
	UnadjustedRetail    *float64 `json:"unadjustedRetail"`
	UnadjustedWholesale *float64 `json:"unadjustedWholesale"`
	UnadjustedTradeIn   *float64 `json:"unadjustedTradeIn"`
	AdjustedLow         *float64 `json:"adjustedLow"`
	AdjustedHigh        *float64 `json:"adjustedHigh"`
	AdjustedFinance     *float64 `json:"adjustedFinance"`
	AdjustedRetail      *float64 `json:"adjustedRetail"`
	AdjustedWholesale   *float64 `json:"adjustedWholesale"`
	AdjustedTradeIn     *float64 `json:"adjustedTradeIn"`
}

func (c *Client) EquipmentValuation(ctx context.Context, d valuation.Descriptor) (*valuation.EquipmentValuation, error) {
	base := strings.TrimRight(c.cfg.EquipmentURL, "/")
	modelID, err := c.lookup(ctx, base+"/taxonomy/models", c.cfg.EquipmentKey, taxonomyQuery(d), "modelId")
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("modelId", modelID)
	q.Set("year", d.ModelYear)
	q.Set("usage", d.Usage)
	q.Set("condition", d.Condition)
	q.Set("country", d.Country)
	q.Set("region", d.Region)

	var v equipmentValues
	if err := c.getJSON(ctx, base+"/values/value", c.cfg.EquipmentKey, q, &v); err != nil {
		return nil, err
	}
	return &valuation.EquipmentValuation{
		UnadjustedFairMarketValue:         val(v.UnadjustedFMV),
		UnadjustedOrderlyLiquidationValue: val(v.UnadjustedOLV),
		UnadjustedForcedLiquidationValue:  val(v.UnadjustedFLV),
		AdjustedFairMarketValue:           val(v.AdjustedFMV),
		AdjustedOrderlyLiquidationValue:   val(v.AdjustedOLV),
		AdjustedForcedLiquidationValue:    val(v.AdjustedFLV),
		Salvage:                           val(v.Salvage),
	}, nil
}

func (c *Client) VehicleValuation(ctx context.Context, d valuation.Descriptor) (*valuation.VehicleValuation, error) {
	base := strings.TrimRight(c.cfg.VehicleURL, "/")
	configID, err := c.lookup(ctx, base+"/taxonomy/configurations/", c.cfg.VehicleKey, taxonomyQuery(d), "configurationId")
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("configurationId", configID)
	q.Set("usage", d.Usage)
	q.Set("condition", d.Condition)
	q.Set("country", d.Country)
	q.Set("state", d.Region)

	var v vehicleValues
	if err := c.getJSON(ctx, base+"/values/value/", c.cfg.VehicleKey, q, &v); err != nil {
		return nil, err
	}
	return &valuation.VehicleValuation{
		UnadjustedLow:       val(v.UnadjustedLow),
		UnadjustedHigh:      val(v.UnadjustedHigh),
		UnadjustedFinance:   val(v.UnadjustedFinance),
		UnadjustedRetail:    val(v.UnadjustedRetail),
		UnadjustedWholesale: val(v.UnadjustedWholesale),
		UnadjustedTradeIn:   val(v.UnadjustedTradeIn),
		AdjustedLow:         val(v.AdjustedLow),
		AdjustedHigh:        val(v.AdjustedHigh),
		AdjustedFinance:     val(v.AdjustedFinance),
		AdjustedRetail:      val(v.AdjustedRetail),
		AdjustedWholesale:   val(v.AdjustedWholesale),
		AdjustedTradeIn:     val(v.AdjustedTradeIn),
	}, nil
}

func taxonomyQuery(d valuation.Descriptor) url.Values {
	q := url.Values{}
	q.Set("model", d.Model)
	q.Set("manufacturer", d.Manufacturer)
	q.Set("modelYear", d.ModelYear)
	return q
}

// lookup returns the first idField found in the taxonomy response, which is
// either a single object or a list of candidates.
func (c *Client) lookup(ctx context.Context, endpoint, key string, q url.Values, idField string) (string, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, endpoint, key, q, &raw); err != nil {
		return "", err
	}

	var candidates []map[string]any
	if err := json.Unmarshal(raw, &candidates); err != nil {
		var single map[string]any
		if err := json.Unmarshal(raw, &single); err != nil {
			return "", fmt.Errorf("provider: decode taxonomy: %w", err)
		}
		candidates = []map[string]any{single}
	}
	for _, item := range candidates {
		if id, ok := idString(item[idField]); ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %s for %s %s %s", ErrNoCatalogueMatch, idField,
		q.Get("manufacturer"), q.Get("model"), q.Get("modelYear"))
}

func idString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		return fmt.Sprintf("%.0f", t), true
	}
	return "", false
}

func (c *Client) getJSON(ctx context.Context, endpoint, key string, q url.Values, out any) error {
	u := endpoint
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("provider: build request: %w", err)
	}
	req.Header.Set("x-api-key", key)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("provider: GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	c.log.Debug("provider call",
		logging.String("endpoint", endpoint),
		logging.Int("status", resp.StatusCode),
		logging.Duration("took", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider: GET %s: %s: %s", endpoint, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("provider: decode %s: %w", endpoint, err)
	}
	return nil
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
