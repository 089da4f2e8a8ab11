package model

import "time"

// KindCount is one row of the per-kind anomaly tally.
type KindCount struct {
	Kind  AnomalyKind
	Count int
}

// TableStats carries the raw counts a quality score is derived from.
type TableStats struct {
	EntityType EntityType
	Records    int
	Skipped    int // structurally invalid rows dropped during ingestion
	Duplicates int // duplicate primary keys observed
	Anomalous  int // records with at least one anomaly
}

// TableScore is the derived quality score for one entity type. Scores are
// in [0, 1].
type TableScore struct {
	EntityType   EntityType
	Records      int
	Skipped      int
	Completeness float64
	Uniqueness   float64
	Consistency  float64
}

// QualityReport is the merged, deterministic summary of a full run.
type QualityReport struct {
	GeneratedAt        time.Time
	KindCounts         []KindCount // sorted by kind
	Scores             []TableScore
	Standardization    []StandardizationStats
	UnresolvedCritical []AnomalyRecord // sorted by (entity id, kind)
	TotalAnomalies     int
	TotalResolved      int
}
