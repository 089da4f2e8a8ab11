// Package model defines the core domain records used throughout the application.
package model

// GeoSample is a single raw geolocation observation. Many samples share a
// postal prefix with conflicting city spellings and coordinates.
type GeoSample struct {
	PostalPrefix string
	CityRaw      string
	State        string
	Lat          float64
	Lon          float64
}

// QualityScore buckets confidence in aggregated geographic statistics by
// sample volume.
type QualityScore string

// Quality score constants.
const (
	QualityLow    QualityScore = "low"
	QualityMedium QualityScore = "medium"
	QualityHigh   QualityScore = "high"
)

// ZipCodeReference is the canonical geographic record for one postal prefix,
// collapsed from all raw samples observed for it.
type ZipCodeReference struct {
	PostalPrefix   string
	State          string
	CanonicalCity  string
	MeanLat        float64
	MeanLon        float64
	LatStd         float64
	LonStd         float64
	MinLat         float64
	MaxLat         float64
	MinLon         float64
	MaxLon         float64
	LatSpreadKm    float64
	LonSpreadKm    float64
	CityVariations int
	SampleCount    int
	Quality        QualityScore
}
