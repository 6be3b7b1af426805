package datasource

import (
	"context"
	"strings"
	"time"

	"github.com/netrag/netrag/pkg/utils/errors"
)

// Mock is a deterministic, in-memory DataSource used in tests and as the
// default when no live inventory integration is configured. Its fixture
// set is shaped to satisfy the schema patterns in internal/rag/schema and
// the seed scenarios.
type Mock struct {
	records map[string][]map[string]any
	indexed map[string]map[string]map[string]any
}

// NewMock builds a Mock seeded with a small fixed device inventory.
func NewMock() *Mock {
	m := &Mock{
		records: make(map[string][]map[string]any),
		indexed: make(map[string]map[string]map[string]any),
	}
	m.seed()
	return m
}

func (m *Mock) seed() {
	m.add("ftth_olt", "name", map[string]any{
		"name": "OLT001HOBO1", "region": "HOBO", "environment": "PRODUCTION",
		"esi_name": "ESI-HOBO-001", "bandwidth_gbps": 100, "service_count": 120,
		"managed_by_inmanta": true, "complete_config": true,
	})
	m.add("ftth_olt", "name", map[string]any{
		"name": "OLT002GENT1", "region": "GENT", "environment": "PRODUCTION",
		"esi_name": "ESI-GENT-001", "bandwidth_gbps": 40, "service_count": 30,
		"managed_by_inmanta": false, "complete_config": true,
	})
	m.add("ftth_olt", "name", map[string]any{
		"name": "OLT003ROES1", "region": "ROES", "environment": "UAT",
		"esi_name": "ESI-ROES-001", "bandwidth_gbps": 10, "service_count": 0,
		"managed_by_inmanta": false, "complete_config": false,
	})

	m.add("mobile_modem", "serial_number", map[string]any{
		"serial_number": "LPL001ABC123", "hardware_type": "Nokia FastMile",
		"mobile_modem_id": "MODEM-001", "status": "CONNECTED",
		"signal_strength": -75, "throughput_mbps": 80, "temperature_celsius": 45,
	})
	m.add("mobile_modem", "serial_number", map[string]any{
		"serial_number": "LPL002XYZ789", "hardware_type": "Nokia FastMile",
		"mobile_modem_id": "MODEM-002", "status": "CONNECTED",
		"signal_strength": -95, "throughput_mbps": 5, "temperature_celsius": 65,
	})

	m.add("team", "team_name", map[string]any{"team_name": "INFRA", "team_id": "T-001", "description": "network infrastructure operations"})
	m.add("team", "team_name", map[string]any{"team_name": "MOBILE", "team_id": "T-002", "description": "mobile network operations"})
}

func (m *Mock) add(schemaName, keyField string, rec map[string]any) {
	m.records[schemaName] = append(m.records[schemaName], rec)
	if m.indexed[schemaName] == nil {
		m.indexed[schemaName] = make(map[string]map[string]any)
	}
	if key, ok := rec[keyField].(string); ok {
		m.indexed[schemaName][key] = rec
	}
}

func (m *Mock) Fetch(_ context.Context, schemaName string, filter Filter, limit int) (Sample, error) {
	all := m.records[schemaName]
	var matched []map[string]any
	for _, rec := range all {
		if filter.Region != "" {
			if region, _ := rec["region"].(string); !strings.EqualFold(region, filter.Region) {
				continue
			}
		}
		if filter.Environment != "" {
			if env, _ := rec["environment"].(string); !strings.EqualFold(env, filter.Environment) {
				continue
			}
		}
		matched = append(matched, rec)
	}

	total := len(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return Sample{
		SchemaName:  schemaName,
		Records:     matched,
		TotalCount:  total,
		GeneratedAt: time.Now(),
	}, nil
}

func (m *Mock) Get(_ context.Context, schemaName, identifier string) (map[string]any, error) {
	byKey, ok := m.indexed[schemaName]
	if !ok {
		return nil, errors.ErrSchemaNotFound
	}
	rec, ok := byKey[identifier]
	if !ok {
		return nil, errors.ErrDeviceNotFound
	}
	return rec, nil
}
