package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"assetfin-backend/internal/domain/valuation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var desc = valuation.Descriptor{
	Manufacturer: "Caterpillar", Model: "320", ModelYear: "2019",
	Usage: "1200", Condition: "good", Country: "USA", Region: "TX",
}

func TestEquipmentValuation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq-key", r.Header.Get("x-api-key"))
		switch r.URL.Path {
		case "/taxonomy/models":
			assert.Equal(t, "Caterpillar", r.URL.Query().Get("manufacturer"))
			assert.Equal(t, "2019", r.URL.Query().Get("modelYear"))
			_, _ = w.Write([]byte(`[{"name":"x"},{"modelId":4417}]`))
		case "/values/value":
			assert.Equal(t, "4417", r.URL.Query().Get("modelId"))
			assert.Equal(t, "TX", r.URL.Query().Get("region"))
			_, _ = w.Write([]byte(`{"unadjustedFmv":100,"adjustedFmv":90.5,"adjustedFlv":40,"salvage":null}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(Config{EquipmentURL: srv.URL + "/", EquipmentKey: "eq-key"}, nil)
	got, err := c.EquipmentValuation(context.Background(), desc)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.UnadjustedFairMarketValue)
	assert.Equal(t, 90.5, got.AdjustedFairMarketValue)
	assert.Equal(t, 40.0, got.AdjustedForcedLiquidationValue)
	assert.Equal(t, 0.0, got.Salvage)
}

func TestVehicleValuation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "veh-key", r.Header.Get("x-api-key"))
		switch r.URL.Path {
		case "/taxonomy/configurations/":
			_, _ = w.Write([]byte(`[{"configurationId":"cfg-9"}]`))
		case "/values/value/":
			assert.Equal(t, "cfg-9", r.URL.Query().Get("configurationId"))
			assert.Equal(t, "TX", r.URL.Query().Get("state"))
			_, _ = w.Write([]byte(`{"adjustedTradeIn":12000,"unadjustedRetail":15000}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(Config{VehicleURL: srv.URL, VehicleKey: "veh-key"}, nil)
	got, err := c.VehicleValuation(context.Background(), desc)
	require.NoError(t, err)
	assert.Equal(t, 12000.0, got.AdjustedTradeIn)
	assert.Equal(t, 15000.0, got.UnadjustedRetail)
	assert.Equal(t, 0.0, got.AdjustedLow)
}

func TestTaxonomyObjectAndMiss(t *testing.T) {
	body := `{"modelId":"M-1"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/taxonomy/models" {
			_, _ = w.Write([]byte(body))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Config{EquipmentURL: srv.URL}, nil)
	_, err := c.EquipmentValuation(context.Background(), desc)
	require.NoError(t, err)

	body = `[{"other":1}]`
	_, err = c.EquipmentValuation(context.Background(), desc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCatalogueMatch))
}

func TestUpstreamStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{VehicleURL: srv.URL}, nil)
	_, err := c.VehicleValuation(context.Background(), desc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}
