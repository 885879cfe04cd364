// Package geo converts activity coordinates to the binary and JSON geometry
// encodings used by the database and the map export.
package geo

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"

	"smart_tracker/internal/models"
)

// SRID of every point we produce (WGS 84).
const SRID = 4326

func point(lat, lng float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lng, lat}).SetSRID(SRID)
}

// EncodePoint returns the little-endian WKB encoding of (lng, lat).
func EncodePoint(lat, lng float64) ([]byte, error) {
	return wkb.Marshal(point(lat, lng), binary.LittleEndian)
}

// DecodePoint reverses EncodePoint.
func DecodePoint(b []byte) (lat, lng float64, err error) {
	if len(b) == 0 {
		return 0, 0, nil
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return 0, 0, err
	}
	p, ok := g.(*geom.Point)
	if !ok {
		return 0, 0, fmt.Errorf("expected point geometry, got %T", g)
	}
	return p.Y(), p.X(), nil
}

// FeatureCollection renders activities as GeoJSON point features keyed by id.
func FeatureCollection(activities []models.Activity) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(activities))}
	for _, a := range activities {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       a.ID,
			Geometry: point(a.Latitude, a.Longitude),
			Properties: map[string]interface{}{
				"imagePath": a.ImagePath,
				"address":   a.Address,
				"timestamp": a.Timestamp.UTC().Format(time.RFC3339Nano),
				"synced":    a.Synced,
			},
		})
	}
	return fc
}
