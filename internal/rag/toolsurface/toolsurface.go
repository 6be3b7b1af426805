// Package toolsurface is the Tool Surface (component C9): the handful of
// named operations the Query Orchestrator dispatches to, expressed as plain
// Go functions rather than a wire protocol — this repository defines no
// transport for invoking them remotely.
package toolsurface

import (
	"context"

	"github.com/netrag/netrag/internal/rag/datasource"
	"github.com/netrag/netrag/internal/rag/rules"
	"github.com/netrag/netrag/pkg/utils/errors"
)

// DeviceSummary is one row of a device-listing result.
type DeviceSummary struct {
	Name   string
	Fields map[string]any
	Health *rules.Result
}

// ListNetworkDevices fetches up to limit devices for schemaName matching
// filter and, when withHealth, computes a health result for each.
func ListNetworkDevices(ctx context.Context, source datasource.DataSource, engine *rules.Engine, schemaName string, filter datasource.Filter, limit int, withHealth bool) ([]DeviceSummary, error) {
	sample, err := source.Fetch(ctx, schemaName, filter, limit)
	if err != nil {
		return nil, errors.ErrDataSourceFailed.WithCause(err)
	}

	out := make([]DeviceSummary, 0, len(sample.Records))
	for _, rec := range sample.Records {
		ds := DeviceSummary{Name: deviceName(rec), Fields: rec}
		if withHealth && engine != nil {
			rule, err := engine.SelectRule(ctx, schemaName)
			if err == nil {
				result := engine.Evaluate(rule, ds.Name, rec)
				ds.Health = &result
			}
		}
		out = append(out, ds)
	}
	return out, nil
}

// GetDeviceDetails fetches a single device by identifier and, when
// withHealth, computes its health result.
func GetDeviceDetails(ctx context.Context, source datasource.DataSource, engine *rules.Engine, schemaName, identifier string, withHealth bool) (DeviceSummary, error) {
	rec, err := source.Get(ctx, schemaName, identifier)
	if err != nil {
		return DeviceSummary{}, err
	}

	ds := DeviceSummary{Name: identifier, Fields: rec}
	if withHealth && engine != nil {
		rule, err := engine.SelectRule(ctx, schemaName)
		if err == nil {
			result := engine.Evaluate(rule, ds.Name, rec)
			ds.Health = &result
		}
	}
	return ds, nil
}

// NetworkQuery is the general-purpose tool: callers pass an already-built
// narrative (composed by the Query Orchestrator from the analyzer's
// guidance and the schema-aware context) and this simply threads it
// through as the canonical shape other tools also return, so orchestrator
// dispatch code has one result type regardless of path.
func NetworkQuery(narrative string, cited []string) DeviceSummary {
	return DeviceSummary{
		Name: "",
		Fields: map[string]any{
			"narrative":        narrative,
			"cited_documents":  cited,
		},
	}
}

func deviceName(rec map[string]any) string {
	for _, key := range []string{"name", "device_name", "serial_number", "team_name"} {
		if v, ok := rec[key].(string); ok && v != "" {
			return v
		}
	}
	return "unknown"
}
