package rules

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/netrag/netrag/internal/rag/store"
	"github.com/netrag/netrag/pkg/llm"
	"github.com/netrag/netrag/pkg/utils/errors"
	"github.com/netrag/netrag/pkg/utils/id"
)

// Status is the overall device health status.
type Status string

const (
	StatusHealthy  Status = "HEALTHY"
	StatusWarning  Status = "WARNING"
	StatusCritical Status = "CRITICAL"
	StatusUnknown  Status = "UNKNOWN"
)

// FiredAdjustment is an Adjustment that held for a given evaluation.
type FiredAdjustment struct {
	Reason string
	Impact int
}

// FiredRecommendation is a Recommendation that held for a given evaluation.
type FiredRecommendation struct {
	Message  string
	Priority Priority
}

// Result is the Health Rule Engine's per-device output (the spec's
// "supplemented" Health Result).
type Result struct {
	ID              string
	DeviceName      string
	RuleID          string
	RuleVersion     string
	Score           int
	Status          Status
	Adjustments     []FiredAdjustment
	Recommendations []FiredRecommendation
	Summary         map[string]any
	EvaluatedAt     time.Time
}

// Engine selects the best-matching rule for a device record by vector
// similarity over rule-kind vectors, then scores and evaluates it.
type Engine struct {
	catalog  []Rule
	store    store.VectorStore
	embedder llm.EmbeddingProvider
}

// NewEngine builds an Engine over catalog, using vs to select the
// best-matching rule by similarity and embedder to embed the selection
// query. Rule vectors must already be upserted into vs by Index.
func NewEngine(catalog []Rule, vs store.VectorStore, embedder llm.EmbeddingProvider) *Engine {
	return &Engine{catalog: catalog, store: vs, embedder: embedder}
}

// Index upserts one vector per catalog rule, keyed by keyword text, so
// SelectRule can find the best match by cosine similarity.
func (e *Engine) Index(ctx context.Context) error {
	for _, r := range e.catalog {
		text := fmt.Sprintf("health analysis %s monitoring diagnostics %s", r.DeviceKind, joinKeywords(r.Keywords))
		vec, err := e.embedder.EmbedSingle(ctx, text)
		if err != nil {
			return errors.ErrEmbeddingFailed.WithCause(err)
		}
		if err := e.store.Upsert(ctx, r.ID, vec, store.Metadata{Kind: store.KindRule, DocKind: r.DeviceKind}); err != nil {
			return errors.ErrVectorStoreFailed.WithCause(err)
		}
	}
	return nil
}

// SelectRule finds the best-matching rule for kind by embedding the fixed
// selection query and searching rule-kind vectors, restricted to rules
// whose device kind matches. Ties on similarity are broken by higher
// version, then lexicographic rule id.
func (e *Engine) SelectRule(ctx context.Context, kind string) (Rule, error) {
	query := fmt.Sprintf("health analysis %s monitoring diagnostics", kind)
	vec, err := e.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return Rule{}, errors.ErrEmbeddingFailed.WithCause(err)
	}

	results, err := e.store.Search(ctx, vec, len(e.catalog), 0, store.Filter{Kind: store.KindRule})
	if err != nil {
		return Rule{}, errors.ErrVectorStoreFailed.WithCause(err)
	}

	byID := make(map[string]Rule, len(e.catalog))
	for _, r := range e.catalog {
		if r.DeviceKind == kind {
			byID[r.ID] = r
		}
	}

	var best Rule
	bestSim := -1.0
	found := false
	for _, rec := range results {
		r, ok := byID[rec.ID]
		if !ok {
			continue
		}
		switch {
		case rec.Similarity > bestSim:
			best, bestSim, found = r, rec.Similarity, true
		case rec.Similarity == bestSim && found:
			best = tieBreak(best, r)
		}
	}

	if !found {
		// direct fallback: no vector match, pick by device kind alone so
		// evaluation is total even with an empty or stale index.
		for _, r := range e.catalog {
			if r.DeviceKind == kind {
				return r, nil
			}
		}
		return Rule{}, errors.ErrRuleNotMatched
	}
	return best, nil
}

func tieBreak(a, b Rule) Rule {
	if a.Version != b.Version {
		if a.Version > b.Version {
			return a
		}
		return b
	}
	if a.ID <= b.ID {
		return a
	}
	return b
}

// Evaluate scores rec against rule and returns the Health Result.
func (e *Engine) Evaluate(rule Rule, deviceName string, rec map[string]any) Result {
	score := 100
	var fired []FiredAdjustment
	for _, adj := range rule.Adjustments {
		if adj.Predicate(rec) {
			score += adj.Impact
			fired = append(fired, FiredAdjustment{Reason: adj.Reason, Impact: adj.Impact})
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	status := statusFromScore(score)
	for _, c := range rule.Conditions {
		if c.Severity == SeverityCritical && c.Predicate(rec) {
			status = StatusCritical
			break
		}
	}
	if status != StatusCritical {
		for _, c := range rule.Conditions {
			if c.Severity == SeverityWarning && c.Predicate(rec) && status == StatusHealthy {
				status = StatusWarning
			}
		}
	}

	var recs []FiredRecommendation
	for _, r := range rule.Recommendations {
		if r.Predicate(rec) {
			recs = append(recs, FiredRecommendation{Message: r.Message, Priority: r.Priority})
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})

	summary := make(map[string]any, len(rule.SummaryFields))
	for _, f := range rule.SummaryFields {
		if v, ok := rec[f]; ok {
			summary[f] = v
		}
	}

	return Result{
		ID:              id.NewULID(),
		DeviceName:      deviceName,
		RuleID:          rule.ID,
		RuleVersion:     rule.Version,
		Score:           score,
		Status:          status,
		Adjustments:     fired,
		Recommendations: recs,
		Summary:         summary,
		EvaluatedAt:      time.Now(),
	}
}

func statusFromScore(score int) Status {
	switch {
	case score >= 80:
		return StatusHealthy
	case score >= 50:
		return StatusWarning
	default:
		return StatusCritical
	}
}

func joinKeywords(kw []string) string {
	out := ""
	for i, k := range kw {
		if i > 0 {
			out += " "
		}
		out += k
	}
	return out
}
