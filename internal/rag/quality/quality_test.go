package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/netrag/netrag/internal/rag/schema"
)

func TestAssessEmptySampleIsRedBand(t *testing.T) {
	s, _ := schema.NewCatalog().Get("ftth_olt")
	m := Assess(s, Sample{SchemaName: "ftth_olt"})
	assert.Equal(t, BandRed, m.Band)
	assert.Contains(t, m.Issues, "no data available")
}

func TestAssessCompleteAndFreshIsGreenBand(t *testing.T) {
	s, _ := schema.NewCatalog().Get("ftth_olt")
	records := []map[string]any{
		{"name": "OLT001HOBO1", "region": "HOBO", "environment": "PRODUCTION", "complete_config": true, "managed_by_inmanta": true, "service_count": 120},
		{"name": "OLT002GENT1", "region": "GENT", "environment": "PRODUCTION", "complete_config": true, "managed_by_inmanta": true, "service_count": 80},
	}
	m := Assess(s, Sample{SchemaName: "ftth_olt", Records: records, GeneratedAt: time.Now()})

	assert.Equal(t, BandGreen, m.Band)
	assert.Equal(t, 1.0, m.Completeness)
	assert.Equal(t, 1.0, m.Freshness)
}

func TestAssessStaleDataDecaysFreshness(t *testing.T) {
	s, _ := schema.NewCatalog().Get("ftth_olt")
	records := []map[string]any{{"name": "OLT001HOBO1", "region": "HOBO", "environment": "PRODUCTION"}}
	old := time.Now().Add(-30 * time.Hour)
	m := Assess(s, Sample{SchemaName: "ftth_olt", Records: records, GeneratedAt: old})

	assert.Equal(t, 0.0, m.Freshness)
	assert.Less(t, m.Overall, 0.80)
}

func TestAssessInconsistentRegionLowersConsistency(t *testing.T) {
	s, _ := schema.NewCatalog().Get("ftth_olt")
	records := []map[string]any{
		{"name": "OLT001HOBO1", "region": "NOWHERE", "environment": "PRODUCTION"},
	}
	m := Assess(s, Sample{SchemaName: "ftth_olt", Records: records, GeneratedAt: time.Now()})

	assert.Less(t, m.Consistency, 1.0)
}
