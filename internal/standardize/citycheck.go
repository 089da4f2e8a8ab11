package standardize

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/olist-data/refinery/internal/model"
)

// cityCheck is one shape heuristic over a raw city name.
type cityCheck struct {
	kind     model.AnomalyKind
	severity model.Severity
	matches  func(city string) bool
}

// cityChecks flags malformed raw city names seen in seller records:
// placeholder digits, slash-separated alternatives, appended state or
// country names, and junk spacing.
var cityChecks = []cityCheck{
	{
		kind:     model.AnomalyCityNumeric,
		severity: model.SeverityWarning,
		matches: func(city string) bool {
			trimmed := strings.TrimSpace(city)
			if trimmed == "" {
				return false
			}
			for _, r := range trimmed {
				if !unicode.IsDigit(r) {
					return false
				}
			}
			return true
		},
	},
	{
		kind:     model.AnomalyCityContainsSlash,
		severity: model.SeverityInfo,
		matches: func(city string) bool {
			return strings.ContainsAny(city, `/\`)
		},
	},
	{
		kind:     model.AnomalyCityContainsComma,
		severity: model.SeverityInfo,
		matches: func(city string) bool {
			return strings.Contains(city, ",")
		},
	},
	{
		kind:     model.AnomalyCityContainsCountry,
		severity: model.SeverityInfo,
		matches: func(city string) bool {
			return strings.Contains(strings.ToLower(city), "brasil")
		},
	},
	{
		kind:     model.AnomalyCityTooShort,
		severity: model.SeverityWarning,
		matches: func(city string) bool {
			return len(strings.TrimSpace(city)) < 3
		},
	},
	{
		kind:     model.AnomalyCityExtraSpaces,
		severity: model.SeverityInfo,
		matches: func(city string) bool {
			return strings.Contains(city, "  ") || strings.Contains(city, " / ")
		},
	},
}

// CityShapeAnomalies evaluates every shape heuristic against the entity's
// raw city name and returns one record per match. The raw value is only
// documented here; corrections happen through standardization.
func CityShapeAnomalies(e model.Entity) []model.AnomalyRecord {
	var records []model.AnomalyRecord
	for _, check := range cityChecks {
		if !check.matches(e.CityRaw) {
			continue
		}
		records = append(records, model.AnomalyRecord{
			EntityType: e.Type,
			EntityID:   e.ID,
			Kind:       check.kind,
			Severity:   check.severity,
			Detail:     fmt.Sprintf("raw city %q", e.CityRaw),
		})
	}
	return records
}
