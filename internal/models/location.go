package models

import (
	"math"

	"github.com/mmcloughlin/geohash"
)

const (
	PointType         = "Point"
	GeohashPrecision  = 9
	latitudeIndex     = 1
	longitudeIndex    = 0
	coordinatesLength = 2
)

// GeoJSON is a bare point, the shape geospatial query operators take.
type GeoJSON struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

func NewPoint(lat, lng float64) GeoJSON {
	return GeoJSON{Type: PointType, Coordinates: []float64{lng, lat}}
}

// Location is the 2dsphere-indexed point of a pet or a user plus its
// human-readable address.
type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	City        string    `bson:"city,omitempty" json:"city,omitempty"`
	Geohash     string    `bson:"geohash,omitempty" json:"geohash,omitempty"`
}

// NewLocation builds a Point location and derives its geohash.
func NewLocation(lat, lng float64, address, city string) Location {
	return Location{
		Type:        PointType,
		Coordinates: []float64{lng, lat},
		Address:     address,
		City:        city,
		Geohash:     geohash.EncodeWithPrecision(lat, lng, GeohashPrecision),
	}
}

// LatLng returns the point, ok is false when the coordinates are missing.
func (l Location) LatLng() (lat, lng float64, ok bool) {
	if len(l.Coordinates) != coordinatesLength {
		return 0, 0, false
	}
	return l.Coordinates[latitudeIndex], l.Coordinates[longitudeIndex], true
}

// ValidCoordinates reports whether lat/lng are finite and within range.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
