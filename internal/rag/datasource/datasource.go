// Package datasource defines the device-inventory port the Schema-Aware
// Context Builder and Query Orchestrator read through, and a deterministic
// mock implementation sufficient to run the seed scenarios without a live
// network inventory.
package datasource

import (
	"context"
	"time"
)

// Filter narrows a Fetch call by region/environment, the fixed lexicon the
// Query Orchestrator extracts from a device-listing query.
type Filter struct {
	Region      string
	Environment string
}

// Sample is a bounded set of raw records for one schema, plus the time they
// were generated — the unit the Data Quality Assessor scores.
type Sample struct {
	SchemaName  string
	Records     []map[string]any
	TotalCount  int
	GeneratedAt time.Time
}

// DataSource is the device-inventory port.
type DataSource interface {
	// Fetch returns up to limit records for schemaName matching filter.
	Fetch(ctx context.Context, schemaName string, filter Filter, limit int) (Sample, error)

	// Get returns the single record for schemaName named by identifier
	// (e.g. an OLT name, a modem serial number).
	Get(ctx context.Context, schemaName, identifier string) (map[string]any, error)
}
