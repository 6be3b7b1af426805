// Package schemacontext is the Schema-Aware Context Builder (component
// C6): given a query, selects candidate schemas, samples the device
// inventory, scores data quality, and composes a rendered summary for LLM
// consumption.
//
// Grounded on schema_aware_context.py's build_context_for_query.
package schemacontext

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/netrag/netrag/internal/rag/datasource"
	"github.com/netrag/netrag/internal/rag/quality"
	"github.com/netrag/netrag/internal/rag/schema"
)

const defaultSampleSize = 5

// SchemaAwareContext is the builder's output.
type SchemaAwareContext struct {
	Query           string
	Schemas         []schema.Schema
	Samples         map[string]datasource.Sample
	Quality         map[string]quality.Metrics
	Summary         string
	BusinessContext string
	Recommendations []string
	BuiltAt         time.Time
}

// Builder composes a SchemaAwareContext for a query.
type Builder struct {
	registry *schema.Registry
	source   datasource.DataSource
}

// New builds a Builder over registry and source.
func New(registry *schema.Registry, source datasource.DataSource) *Builder {
	return &Builder{registry: registry, source: source}
}

// Build composes the context for query.
func (b *Builder) Build(ctx context.Context, query string) SchemaAwareContext {
	schemas := b.registry.SchemasForQuery(query)

	samples := make(map[string]datasource.Sample, len(schemas))
	metrics := make(map[string]quality.Metrics, len(schemas))

	for _, s := range schemas {
		sample, err := b.source.Fetch(ctx, s.Name, datasource.Filter{}, defaultSampleSize)
		if err != nil {
			sample = datasource.Sample{SchemaName: s.Name}
		}
		samples[s.Name] = sample

		m := quality.Assess(s, quality.Sample{
			SchemaName:  s.Name,
			Records:     sample.Records,
			GeneratedAt: sample.GeneratedAt,
		})
		metrics[s.Name] = m
	}

	return SchemaAwareContext{
		Query:           query,
		Schemas:         schemas,
		Samples:         samples,
		Quality:         metrics,
		Summary:         renderSummary(schemas, samples),
		BusinessContext: renderBusinessContext(schemas),
		Recommendations: recommendationsFor(metrics),
		BuiltAt:         time.Now(),
	}
}

// WorstBand returns the lowest quality band observed across sc's schemas,
// used by the Query Orchestrator to decide whether to degrade to
// general_search.
func (sc SchemaAwareContext) WorstBand() quality.Band {
	worst := quality.BandGreen
	rank := map[quality.Band]int{quality.BandGreen: 0, quality.BandYellow: 1, quality.BandRed: 2}
	for _, m := range sc.Quality {
		if rank[m.Band] > rank[worst] {
			worst = m.Band
		}
	}
	return worst
}

func renderSummary(schemas []schema.Schema, samples map[string]datasource.Sample) string {
	var b strings.Builder
	for _, s := range schemas {
		sample := samples[s.Name]
		fmt.Fprintf(&b, "%s: %d records (showing %d)\n", s.Name, sample.TotalCount, len(sample.Records))
	}
	return strings.TrimSpace(b.String())
}

func renderBusinessContext(schemas []schema.Schema) string {
	var parts []string
	for _, s := range schemas {
		keys := make([]string, 0, len(s.BusinessContext))
		for k := range s.BusinessContext {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s.%s=%s", s.Name, k, s.BusinessContext[k]))
		}
	}
	return strings.Join(parts, "; ")
}

// recommendationsFor generates the quality-band-driven recommendation text:
// red triggers a data-refresh-tool recommendation, yellow a caveat, green a
// plain go-ahead. Schema names are sorted before rendering so the output is
// deterministic regardless of map iteration order.
func recommendationsFor(metrics map[string]quality.Metrics) []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var recs []string
	for _, name := range names {
		switch metrics[name].Band {
		case quality.BandRed:
			recs = append(recs, fmt.Sprintf("%s: data quality is poor, recommend a data-refresh tool before proceeding", name))
		case quality.BandYellow:
			recs = append(recs, fmt.Sprintf("%s: proceed with a quality caveat", name))
		case quality.BandGreen:
			recs = append(recs, fmt.Sprintf("%s: proceed", name))
		}
	}
	return recs
}
