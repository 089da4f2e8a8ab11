package model

// EntityType identifies which source table a record came from.
type EntityType string

// Entity type constants.
const (
	EntityCustomer EntityType = "customer"
	EntitySeller   EntityType = "seller"
	EntityOrder    EntityType = "order"
	EntityPayment  EntityType = "payment"
	EntityProduct  EntityType = "product"
	EntityReview   EntityType = "review"
)

// StandardizationStatus indicates how an entity's city name was handled
// against the canonical reference.
type StandardizationStatus string

// Standardization status constants.
const (
	StatusUnchanged StandardizationStatus = "unchanged"
	StatusCorrected StandardizationStatus = "corrected"
	StatusUnmatched StandardizationStatus = "unmatched"
)

// Entity is a customer or seller location record. Standardization never
// mutates the raw fields; corrections land in StandardizedCity so the
// original value stays auditable.
type Entity struct {
	ID               string
	UniqueID         string // customer_unique_id; empty for sellers
	Type             EntityType
	PostalPrefix     string
	CityRaw          string
	State            string
	StandardizedCity string // empty until corrected; never fabricated
	Status           StandardizationStatus

	// Geographic enrichment, nil/zero when the prefix is unmatched.
	Lat            *float64
	Lon            *float64
	LatStd         *float64
	LonStd         *float64
	GeoQuality     QualityScore
	GeoSampleCount int
}

// EffectiveCity returns the city name currently in force for the entity:
// the standardized name when one has been applied, otherwise the raw name.
func (e *Entity) EffectiveCity() string {
	if e.StandardizedCity != "" {
		return e.StandardizedCity
	}
	return e.CityRaw
}

// StandardizationStats is the running tally produced while standardizing a
// batch of entities of one type.
type StandardizationStats struct {
	EntityType EntityType
	Total      int
	Corrected  int
	Unchanged  int
	Unmatched  int
	Skipped    int
}
