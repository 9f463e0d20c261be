package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]any{"product_id": "p-1", "price": 1999}

	evt, err := NewEvent("catalog.product.created", "p-1", "product", "catalog-service", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, evt.EventID)
	assert.Equal(t, "catalog.product.created", evt.EventType)
	assert.Equal(t, "p-1", evt.AggregateID)
	assert.Equal(t, "product", evt.AggregateType)
	assert.Equal(t, 1, evt.Version)
	assert.Equal(t, "catalog-service", evt.Source)
	assert.False(t, evt.Timestamp.IsZero())
}

func TestEvent_Builders(t *testing.T) {
	evt, err := NewEvent("catalog.promo.updated", "promo-1", "promo", "catalog-service", nil)
	require.NoError(t, err)

	evt.WithCorrelationID("corr-123").WithMetadata("actor", "admin-1")

	assert.Equal(t, "corr-123", evt.CorrelationID)
	assert.Equal(t, "admin-1", evt.Metadata["actor"])
}

func TestEvent_UnmarshalData(t *testing.T) {
	type promoPayload struct {
		PromoID string `json:"promo_id"`
		Percent float64 `json:"percent"`
	}

	evt, err := NewEvent("catalog.promo.created", "promo-1", "promo", "catalog-service",
		promoPayload{PromoID: "promo-1", Percent: 15})
	require.NoError(t, err)

	raw, err := evt.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)

	var payload promoPayload
	require.NoError(t, decoded.UnmarshalData(&payload))
	assert.Equal(t, "promo-1", payload.PromoID)
	assert.Equal(t, float64(15), payload.Percent)
}
