package geo

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart_tracker/internal/models"
)

func TestEncodeDecodePoint(t *testing.T) {
	b, err := EncodePoint(-1.2921, 36.8219)
	require.NoError(t, err)

	lat, lng, err := DecodePoint(b)
	require.NoError(t, err)
	assert.Equal(t, -1.2921, lat)
	assert.Equal(t, 36.8219, lng)
}

func TestDecodePointEmpty(t *testing.T) {
	lat, lng, err := DecodePoint(nil)
	require.NoError(t, err)
	assert.Zero(t, lat)
	assert.Zero(t, lng)
}

func TestDecodePointGarbage(t *testing.T) {
	_, _, err := DecodePoint([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestFeatureCollectionUsesLngLatOrder(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fc := FeatureCollection([]models.Activity{
		{ID: "a1", Latitude: 1, Longitude: 2, ImagePath: "/x.jpg", Address: "Nairobi", Timestamp: ts, Synced: true},
	})

	raw, err := json.Marshal(fc)
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "FeatureCollection", decoded.Type)
	require.Len(t, decoded.Features, 1)
	f := decoded.Features[0]
	assert.Equal(t, "a1", f.ID)
	assert.Equal(t, "Point", f.Geometry.Type)
	assert.Equal(t, []float64{2, 1}, f.Geometry.Coordinates)
	assert.Equal(t, "Nairobi", f.Properties["address"])
	assert.Equal(t, "2024-01-01T00:00:00Z", f.Properties["timestamp"])
}
