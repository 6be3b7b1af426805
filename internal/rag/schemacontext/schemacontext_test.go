package schemacontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netrag/netrag/internal/rag/datasource"
	"github.com/netrag/netrag/internal/rag/quality"
	"github.com/netrag/netrag/internal/rag/schema"
)

func TestBuildSelectsSchemasAndScoresQuality(t *testing.T) {
	b := New(schema.NewCatalog(), datasource.NewMock())
	sc := b.Build(context.Background(), "how many FTTH OLTs are in HOBO")

	assert.NotEmpty(t, sc.Schemas)
	assert.Contains(t, sc.Quality, "ftth_olt")
	assert.NotEmpty(t, sc.Summary)
}

func TestWorstBandReflectsLowestQuality(t *testing.T) {
	sc := SchemaAwareContext{
		Quality: map[string]quality.Metrics{
			"a": {Band: quality.BandGreen},
			"b": {Band: quality.BandRed},
		},
	}
	assert.Equal(t, quality.BandRed, sc.WorstBand())
}
