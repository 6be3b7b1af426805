// Package quality is the Data Quality Assessor (component C4): scores a
// bounded sample of device records against their schema on four axes and
// bands the result for the Schema-Aware Context Builder's caveat text.
//
// Grounded on the original data_quality_service.py's assess_data_quality,
// with freshness redefined against the sample's actual generation
// timestamp (per the query-time decay this spec calls for) rather than the
// original's static per-schema freshness-assumption table.
package quality

import (
	"fmt"
	"regexp"
	"time"

	"github.com/netrag/netrag/internal/rag/schema"
)

// Band is the traffic-light quality grade.
type Band string

const (
	BandGreen  Band = "green"
	BandYellow Band = "yellow"
	BandRed    Band = "red"
)

// MaxSampleSize bounds the number of records a single assessment considers.
const MaxSampleSize = 200

// Sample is a bounded set of records observed at a point in time, the
// unit the assessor scores.
type Sample struct {
	SchemaName  string
	Records     []map[string]any
	GeneratedAt time.Time
}

// Metrics is the Data Quality Assessor's scored output for one sample.
type Metrics struct {
	SchemaName      string
	RecordCount     int
	Completeness    float64
	Freshness       float64
	Consistency     float64
	Accuracy        float64
	Overall         float64
	Band            Band
	Issues          []string
	Recommendations []string
}

// Assess scores sample against s, truncating to MaxSampleSize records first.
func Assess(s schema.Schema, sample Sample) Metrics {
	records := sample.Records
	if len(records) > MaxSampleSize {
		records = records[:MaxSampleSize]
	}

	if len(records) == 0 {
		return Metrics{
			SchemaName:      sample.SchemaName,
			Band:            BandRed,
			Issues:          []string{"no data available"},
			Recommendations: []string{"check data source connectivity", "verify data collection processes"},
		}
	}

	completeness := assessCompleteness(s, records)
	freshness := assessFreshness(sample.GeneratedAt)
	consistency := assessConsistency(s, records)
	accuracy := assessAccuracy(s, records)

	overall := 0.30*completeness + 0.25*freshness + 0.25*consistency + 0.20*accuracy

	m := Metrics{
		SchemaName:   sample.SchemaName,
		RecordCount:  len(records),
		Completeness: completeness,
		Freshness:    freshness,
		Consistency:  consistency,
		Accuracy:     accuracy,
		Overall:      overall,
		Band:         bandOf(overall),
	}

	if completeness < 0.7 {
		m.Issues = append(m.Issues, fmt.Sprintf("low completeness (%.0f%%): missing required fields", completeness*100))
		m.Recommendations = append(m.Recommendations, "review data collection for missing fields")
	}
	if freshness < 0.5 {
		m.Issues = append(m.Issues, fmt.Sprintf("stale data (freshness %.0f%%)", freshness*100))
		m.Recommendations = append(m.Recommendations, "increase data refresh frequency")
	}
	if consistency < 0.8 {
		m.Issues = append(m.Issues, fmt.Sprintf("consistency issues (%.0f%%): constraint violations", consistency*100))
		m.Recommendations = append(m.Recommendations, "implement stricter field validation")
	}
	if accuracy < 0.8 {
		m.Issues = append(m.Issues, fmt.Sprintf("accuracy issues (%.0f%%): invariant violations", accuracy*100))
		m.Recommendations = append(m.Recommendations, "verify data source reliability")
	}

	return m
}

func bandOf(overall float64) Band {
	switch {
	case overall >= 0.80:
		return BandGreen
	case overall >= 0.50:
		return BandYellow
	default:
		return BandRed
	}
}

func assessCompleteness(s schema.Schema, records []map[string]any) float64 {
	required := s.RequiredFields()
	if len(required) == 0 {
		return 1.0
	}
	total := len(records) * len(required)
	complete := 0
	for _, rec := range records {
		for _, field := range required {
			if v, ok := rec[field]; ok && !isBlank(v) {
				complete++
			}
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(complete) / float64(total)
}

// assessFreshness scores 1.0 within 15 minutes of now, linearly decaying to
// 0 at 24 hours, 0 beyond.
func assessFreshness(generatedAt time.Time) float64 {
	if generatedAt.IsZero() {
		return 0.0
	}
	age := time.Since(generatedAt)
	const graceEnd = 15 * time.Minute
	const zeroAt = 24 * time.Hour
	if age <= graceEnd {
		return 1.0
	}
	if age >= zeroAt {
		return 0.0
	}
	remaining := zeroAt - graceEnd
	return 1.0 - float64(age-graceEnd)/float64(remaining)
}

func assessConsistency(s schema.Schema, records []map[string]any) float64 {
	total := 0
	satisfied := 0
	for _, rec := range records {
		for _, f := range s.Fields {
			v, ok := rec[f.Name]
			if !ok {
				continue
			}
			total++
			if fieldSatisfies(f, v) {
				satisfied++
			}
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(satisfied) / float64(total)
}

func fieldSatisfies(f schema.Field, v any) bool {
	switch f.Type {
	case schema.FieldEnum:
		s, ok := v.(string)
		if !ok {
			return false
		}
		for _, e := range f.Enum {
			if s == e {
				return true
			}
		}
		return false
	case schema.FieldPattern:
		s, ok := v.(string)
		if !ok {
			return false
		}
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return true
		}
		return re.MatchString(s)
	default:
		return true
	}
}

func assessAccuracy(s schema.Schema, records []map[string]any) float64 {
	if len(s.Invariants) == 0 {
		return 1.0
	}
	total := len(records) * len(s.Invariants)
	held := 0
	for _, rec := range records {
		for _, inv := range s.Invariants {
			if inv.Holds(rec) {
				held++
			}
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(held) / float64(total)
}

func isBlank(v any) bool {
	s, ok := v.(string)
	if !ok {
		return v == nil
	}
	return s == ""
}
