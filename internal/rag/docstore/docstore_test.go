package docstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netrag/netrag/internal/rag/store"
)

type stubEmbedder struct{}

func (stubEmbedder) Name() string { return "stub" }

func (stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = vecFor(t)
	}
	return out, nil
}

func (stubEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	return vecFor(text), nil
}

func vecFor(s string) []float32 {
	v := make([]float32, 4)
	for i, r := range s {
		v[i%4] += float32(r % 5)
	}
	return v
}

func TestCreateRejectsShortTitleAndBody(t *testing.T) {
	s, err := New(store.NewMemoryStore(), stubEmbedder{})
	require.NoError(t, err)

	_, err = s.Create(context.Background(), Document{Title: "ok", Body: "this body is definitely long enough for the minimum"})
	assert.Error(t, err)

	_, err = s.Create(context.Background(), Document{Title: "a good title", Body: "short"})
	assert.Error(t, err)

	body49 := strings.Repeat("a", 49)
	_, err = s.Create(context.Background(), Document{Title: "a good title", Body: body49})
	assert.Error(t, err)

	body50 := strings.Repeat("a", 50)
	_, err = s.Create(context.Background(), Document{Title: "a good title", Body: body50})
	assert.NoError(t, err)
}

func TestCreateExtractsKeywordsAndSearchFindsByVector(t *testing.T) {
	ctx := context.Background()
	s, err := New(store.NewMemoryStore(), stubEmbedder{})
	require.NoError(t, err)

	doc, err := s.Create(ctx, Document{
		Title:      "FTTH OLT Health Analysis Framework",
		Body:       "FTTH OLT device health assessment rules and guidelines for bandwidth and service configuration monitoring",
		Kind:       "best_practices",
		Usefulness: 0.9,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Keywords)
	assert.LessOrEqual(t, len(doc.Keywords), maxKeywords)

	hits, err := s.Search(ctx, doc.Body, 5, true)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, doc.ID, hits[0].Document.ID)
	assert.Greater(t, hits[0].BusinessValue, 0.0)
}

func TestSearchDropsLowUsefulnessDocuments(t *testing.T) {
	ctx := context.Background()
	s, err := New(store.NewMemoryStore(), stubEmbedder{})
	require.NoError(t, err)

	_, err = s.Create(ctx, Document{
		Title:      "Low value doc",
		Body:       "This document has very little business usefulness for the network operations team",
		Usefulness: 0.1,
	})
	require.NoError(t, err)

	hits, err := s.Search(ctx, "network operations team", 5, true)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestTouchIncrementsViewCount(t *testing.T) {
	ctx := context.Background()
	s, err := New(store.NewMemoryStore(), stubEmbedder{})
	require.NoError(t, err)

	doc, err := s.Create(ctx, Document{Title: "Touchable document", Body: "a sufficiently long body for this document to pass validation"})
	require.NoError(t, err)

	require.NoError(t, s.Touch(doc.ID))
	got, err := s.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewCount)
}
