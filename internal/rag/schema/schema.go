// Package schema is the Schema Registry (component C3): a static,
// declarative table of device record shapes and the intent keywords used to
// match a schema to a free-text query. Grounded on the original Python
// schema_registry.py, re-expressed as Go value types instead of dynamically
// constructed dicts.
package schema

import (
	"strings"
	"time"
)

// FieldType is the semantic type of a schema field.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldBool    FieldType = "bool"
	FieldInteger FieldType = "integer"
	FieldEnum    FieldType = "enum"
	FieldPattern FieldType = "pattern"
)

// Field describes one field of a device record schema.
type Field struct {
	Name        string
	Type        FieldType
	Enum        []string // valid values, when Type == FieldEnum
	Pattern     string   // regexp, when Type == FieldPattern
	Required    bool
	Description string
}

// Invariant is a cross-field consistency rule used by the Data Quality
// Assessor's accuracy score (SPEC_FULL.md §4.4): Holds reports whether rec
// satisfies the invariant.
type Invariant struct {
	Description string
	Holds        func(rec map[string]any) bool
}

// Schema is a named, versioned description of a device record shape.
type Schema struct {
	Name             string
	Version          string
	Fields           []Field
	IntentKeywords   []string
	Relationships    map[string][]string
	BusinessContext  map[string]string
	Constraints      []string
	Invariants       []Invariant
	LastUpdated      time.Time
}

// RequiredFields returns the names of fields marked Required, in declaration
// order.
func (s Schema) RequiredFields() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Registry holds the schema table, keyed by name, in registration order.
type Registry struct {
	order   []string
	schemas map[string]Schema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]Schema)}
}

// Register adds or replaces a schema, stamping LastUpdated.
func (r *Registry) Register(s Schema) {
	s.LastUpdated = time.Now()
	if _, exists := r.schemas[s.Name]; !exists {
		r.order = append(r.order, s.Name)
	}
	r.schemas[s.Name] = s
}

// Get returns the schema by name.
func (r *Registry) Get(name string) (Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// All returns every registered schema in registration order.
func (r *Registry) All() []Schema {
	out := make([]Schema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.schemas[name])
	}
	return out
}

// SchemasForQuery returns the schemas whose intent keywords intersect the
// lowercased-tokenized query, ties broken by registration order. When no
// schema matches, it falls back to the default relevant set (ftth_olt, team),
// mirroring the original schema_registry.py's get_schemas_for_query_intent.
// Pure function of the registry's current contents and the query string.
func (r *Registry) SchemasForQuery(query string) []Schema {
	tokens := tokenize(query)

	var matched []Schema
	for _, name := range r.order {
		s := r.schemas[name]
		if intersects(tokens, s.IntentKeywords) {
			matched = append(matched, s)
		}
	}

	if len(matched) == 0 {
		for _, name := range []string{"ftth_olt", "team"} {
			if s, ok := r.schemas[name]; ok {
				matched = append(matched, s)
			}
		}
	}

	return matched
}

// Summary is an LLM-facing export of the registry, mirroring the original
// export_schema_summary.
type Summary struct {
	TotalSchemas int
	Schemas      map[string]SchemaSummary
}

// SchemaSummary is the per-schema slice of Summary.
type SchemaSummary struct {
	Description     string
	KeyFields       []string
	RequiredFields  []string
	Relationships   map[string][]string
	BusinessContext map[string]string
}

// Summarize builds a Summary over every registered schema, for use by the
// Schema-Aware Context Builder's LLM-facing rendering.
func (r *Registry) Summarize() Summary {
	out := Summary{TotalSchemas: len(r.order), Schemas: make(map[string]SchemaSummary, len(r.order))}
	for _, name := range r.order {
		s := r.schemas[name]

		keyFields := make([]string, 0, len(s.Fields))
		for i, f := range s.Fields {
			if i >= 5 {
				break
			}
			keyFields = append(keyFields, f.Name)
		}

		out.Schemas[name] = SchemaSummary{
			Description:     "schema for " + name + " data",
			KeyFields:       keyFields,
			RequiredFields:  s.RequiredFields(),
			Relationships:   s.Relationships,
			BusinessContext: s.BusinessContext,
		}
	}
	return out
}

func tokenize(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func intersects(tokens map[string]struct{}, keywords []string) bool {
	for _, kw := range keywords {
		if _, ok := tokens[strings.ToLower(kw)]; ok {
			return true
		}
		// also match keywords that are substrings of a token,
		// since intent keywords like "5g" or "olt" often appear glued to
		// other words in a free-text query.
		for tok := range tokens {
			if strings.Contains(tok, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}
