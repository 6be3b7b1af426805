// Package docstore is the Document Store (component C2): authoritative
// storage of knowledge documents with vector and keyword search and a
// business-value ranking formula.
//
// Grounded on the teacher's generic secondary-indexed cache
// (pkg/cache.Store) for the kind/keyword indices, and on the wider example
// pack's bleve usage for the non-vector keyword search path — the teacher's
// own corpus has no keyword-search engine.
package docstore

import (
	"context"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"

	"github.com/netrag/netrag/internal/rag/metrics"
	"github.com/netrag/netrag/internal/rag/store"
	"github.com/netrag/netrag/pkg/cache"
	"github.com/netrag/netrag/pkg/llm"
	"github.com/netrag/netrag/pkg/utils/errors"
	"github.com/netrag/netrag/pkg/utils/id"
)

const (
	minTitleLen = 5
	minBodyLen  = 50
	maxKeywords = 8
	minUsefulness = 0.3
	recencyWindow = 90 * 24 * time.Hour
)

// Document is a single stored knowledge document.
type Document struct {
	ID         string
	Title      string
	Body       string
	Kind       string
	Keywords   []string
	Usefulness float64
	ViewCount  int
	Created    time.Time
	Updated    time.Time
}

// bleveDoc is the flattened shape indexed into bleve; bleve's default
// mapping works fine over a plain struct, but keeping it explicit documents
// exactly what's searchable.
type bleveDoc struct {
	Title   string
	Body    string
	Kind    string
	Keyword string
}

// Store is the Document Store: a primary index (pkg/cache.Store) plus a
// bleve keyword index and a vector store for semantic search.
type Store struct {
	docs    cache.Store[string, *Document]
	index   bleve.Index
	vectors store.VectorStore
	embed   llm.EmbeddingProvider
}

// New builds a Document Store over vectors for semantic search and embed
// for embedding document bodies and queries.
func New(vectors store.VectorStore, embed llm.EmbeddingProvider) (*Store, error) {
	docs := cache.NewMemoryCache[string, *Document]()
	docs.AddIndex("kind", func(d *Document) any { return d.Kind })

	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, errors.ErrInternal.WithCause(err)
	}

	return &Store{docs: docs, index: idx, vectors: vectors, embed: embed}, nil
}

// Create validates, embeds, and stores doc, assigning it an ID and
// extracting up to maxKeywords keywords when none are supplied.
func (s *Store) Create(ctx context.Context, doc Document) (*Document, error) {
	if len(strings.TrimSpace(doc.Title)) < minTitleLen {
		return nil, errors.ErrDocumentTooShort.WithMessage("title below minimum length")
	}
	if len(strings.TrimSpace(doc.Body)) < minBodyLen {
		return nil, errors.ErrDocumentTooShort.WithMessage("body below minimum length")
	}

	now := time.Now()
	d := &Document{
		ID:         id.NewULID(),
		Title:      doc.Title,
		Body:       doc.Body,
		Kind:       doc.Kind,
		Keywords:   doc.Keywords,
		Usefulness: doc.Usefulness,
		Created:    now,
		Updated:    now,
	}
	if len(d.Keywords) == 0 {
		d.Keywords = extractKeywords(d.Body, maxKeywords)
	}
	if d.Usefulness == 0 {
		d.Usefulness = 0.5
	}

	vec, err := s.embed.EmbedSingle(ctx, d.Body)
	if err != nil {
		metrics.GetRAGMetrics().RecordIndexing(0, 0, err)
		return nil, errors.ErrEmbeddingFailed.WithCause(err)
	}
	if err := s.vectors.Upsert(ctx, d.ID, vec, store.Metadata{
		Kind:       store.KindDocument,
		DocKind:    d.Kind,
		Keywords:   d.Keywords,
		Usefulness: d.Usefulness,
	}); err != nil {
		metrics.GetRAGMetrics().RecordIndexing(0, 0, err)
		return nil, errors.ErrVectorStoreFailed.WithCause(err)
	}

	s.docs.Set(d.ID, d)
	for _, kw := range d.Keywords {
		_ = s.index.Index(d.ID+"#"+kw, bleveDoc{Title: d.Title, Body: d.Body, Kind: d.Kind, Keyword: kw})
	}
	_ = s.index.Index(d.ID, bleveDoc{Title: d.Title, Body: d.Body, Kind: d.Kind})

	metrics.GetRAGMetrics().RecordIndexing(1, len(d.Keywords), nil)
	return d, nil
}

// Hit is a search result with its computed business value.
type Hit struct {
	Document      *Document
	Similarity    float64
	BusinessValue float64
}

// Search returns up to limit documents for query, ranked by business value.
// When useVector, it embeds the query and searches the vector store;
// otherwise it performs a bleve keyword match.
func (s *Store) Search(ctx context.Context, query string, limit int, useVector bool) ([]Hit, error) {
	var candidates []Hit

	if useVector {
		vec, err := s.embed.EmbedSingle(ctx, query)
		if err != nil {
			return nil, errors.ErrEmbeddingFailed.WithCause(err)
		}
		records, err := s.vectors.Search(ctx, vec, limit*3, 0, store.Filter{Kind: store.KindDocument})
		if err != nil {
			return nil, errors.ErrVectorStoreFailed.WithCause(err)
		}
		for _, rec := range records {
			d, ok := s.docs.Get(rec.ID)
			if !ok {
				continue
			}
			candidates = append(candidates, Hit{Document: d, Similarity: rec.Similarity})
		}
	} else {
		req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
		req.Size = limit * 3
		result, err := s.index.Search(req)
		if err != nil {
			return nil, errors.ErrInternal.WithCause(err)
		}
		seen := make(map[string]bool)
		for _, hit := range result.Hits {
			docID := strings.SplitN(hit.ID, "#", 2)[0]
			if seen[docID] {
				continue
			}
			seen[docID] = true
			d, ok := s.docs.Get(docID)
			if !ok {
				continue
			}
			candidates = append(candidates, Hit{Document: d, Similarity: float64(hit.Score)})
		}
	}

	var ranked []Hit
	for _, c := range candidates {
		if c.Document.Usefulness < minUsefulness {
			continue
		}
		recency := 0.5
		if time.Since(c.Document.Updated) <= recencyWindow {
			recency = 1.0
		}
		c.BusinessValue = 0.5*c.Similarity + 0.3*c.Document.Usefulness + 0.2*recency
		ranked = append(ranked, c)
	}

	sortByBusinessValue(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Touch increments a document's view count and refreshes its updated time.
func (s *Store) Touch(id string) error {
	d, ok := s.docs.Get(id)
	if !ok {
		return errors.ErrDocumentNotFound
	}
	d.ViewCount++
	d.Updated = time.Now()
	s.docs.Set(id, d)
	return nil
}

// Get returns a document by id.
func (s *Store) Get(id string) (*Document, error) {
	d, ok := s.docs.Get(id)
	if !ok {
		return nil, errors.ErrDocumentNotFound
	}
	return d, nil
}

func sortByBusinessValue(hits []Hit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].BusinessValue > hits[j-1].BusinessValue; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "for": true, "is": true, "on": true, "with": true,
	"this": true, "that": true, "are": true, "be": true, "as": true, "by": true,
}

// extractKeywords is the deterministic frequency heuristic used when no
// keyword-extraction capability is configured: non-stopword tokens, most
// frequent first, ties broken by first occurrence.
func extractKeywords(body string, max int) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, tok := range strings.Fields(strings.ToLower(body)) {
		tok = strings.Trim(tok, ".,;:!?()\"'")
		if tok == "" || stopwords[tok] || len(tok) < 3 {
			continue
		}
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}

	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && counts[order[j]] > counts[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	if len(order) > max {
		order = order[:max]
	}
	return order
}
