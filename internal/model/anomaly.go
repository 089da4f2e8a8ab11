package model

// Severity ranks how much attention an anomaly needs.
type Severity string

// Severity constants.
const (
	SeverityInfo     Severity = "informational"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AnomalyRecord documents one record failing one consistency rule. Raw data
// is never altered when Resolved is false; resolutions that do rewrite
// fields always leave a record behind.
type AnomalyRecord struct {
	EntityType EntityType
	EntityID   string
	Kind       AnomalyKind
	Severity   Severity
	Detail     string
	Resolved   bool
}
