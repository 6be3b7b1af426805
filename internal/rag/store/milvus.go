package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/netrag/netrag/pkg/component/milvus"
)

const (
	milvusFieldExternalID = "external_id"
	milvusFieldKind       = "kind"
	milvusFieldDocKind    = "doc_kind"
	milvusFieldKeywords   = "keywords"
	milvusFieldUsefulness = "usefulness"
)

// MilvusStore is the production VectorStore backend, adapted from the
// teacher's tree-index Milvus adapter: the tree-node fields (level,
// parent_id, node_type) are replaced with the document/rule metadata this
// domain needs, and Upsert is implemented as delete-then-insert keyed by an
// external_id varchar field since Milvus's own primary key is an internal
// auto-increment int64.
type MilvusStore struct {
	client     *milvus.Client
	collection string
	dimension  int
}

// NewMilvusStore creates a Milvus-backed vector store over the given
// collection, creating it if absent.
func NewMilvusStore(ctx context.Context, client *milvus.Client, collection string, dimension int) (*MilvusStore, error) {
	s := &MilvusStore{client: client, collection: collection, dimension: dimension}

	schema := &milvus.CollectionSchema{
		Name:        collection,
		Description: "netrag document and health-rule vectors",
		Dimension:   dimension,
		MetaFields: []milvus.MetaField{
			{Name: milvusFieldExternalID, DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: milvusFieldKind, DataType: entity.FieldTypeVarChar, MaxLen: 32},
			{Name: milvusFieldDocKind, DataType: entity.FieldTypeVarChar, MaxLen: 32},
			{Name: milvusFieldKeywords, DataType: entity.FieldTypeVarChar, MaxLen: 512},
			{Name: milvusFieldUsefulness, DataType: entity.FieldTypeVarChar, MaxLen: 32},
		},
	}
	if err := client.CreateCollection(ctx, schema); err != nil {
		return nil, fmt.Errorf("create milvus collection: %w", err)
	}

	return s, nil
}

func (s *MilvusStore) Upsert(ctx context.Context, id string, vector []float32, meta Metadata) error {
	_ = s.deleteByExternalID(ctx, id)

	data := &milvus.InsertData{
		Embeddings: [][]float32{vector},
		Metadata: map[string][]any{
			milvusFieldExternalID: {id},
			milvusFieldKind:       {string(meta.Kind)},
			milvusFieldDocKind:    {meta.DocKind},
			milvusFieldKeywords:   {strings.Join(meta.Keywords, ",")},
			milvusFieldUsefulness: {strconv.FormatFloat(meta.Usefulness, 'f', -1, 64)},
		},
	}

	_, err := s.client.Insert(ctx, s.collection, data)
	if err != nil {
		return fmt.Errorf("upsert into milvus: %w", err)
	}
	return nil
}

func (s *MilvusStore) Search(ctx context.Context, vector []float32, limit int, minSimilarity float64, filter Filter) ([]Record, error) {
	outputFields := []string{milvusFieldExternalID, milvusFieldKind, milvusFieldDocKind, milvusFieldKeywords, milvusFieldUsefulness}

	results, err := s.client.Search(ctx, s.collection, vector, limit, outputFields)
	if err != nil {
		return nil, fmt.Errorf("search milvus: %w", err)
	}

	records := make([]Record, 0, len(results))
	for _, r := range results {
		kind := Kind(stringField(r.Metadata, milvusFieldKind))
		if filter.Kind != "" && kind != filter.Kind {
			continue
		}

		sim := float64(r.Score)
		if sim < minSimilarity {
			continue
		}

		usefulness, _ := strconv.ParseFloat(stringField(r.Metadata, milvusFieldUsefulness), 64)
		keywords := strings.Split(stringField(r.Metadata, milvusFieldKeywords), ",")

		records = append(records, Record{
			ID: stringField(r.Metadata, milvusFieldExternalID),
			Metadata: Metadata{
				Kind:       kind,
				DocKind:    stringField(r.Metadata, milvusFieldDocKind),
				Keywords:   keywords,
				Usefulness: usefulness,
			},
			Similarity: sim,
		})
	}

	return records, nil
}

func (s *MilvusStore) Delete(ctx context.Context, id string) error {
	return s.deleteByExternalID(ctx, id)
}

func (s *MilvusStore) deleteByExternalID(ctx context.Context, id string) error {
	raw := s.client.RawClient()
	if raw == nil {
		return fmt.Errorf("milvus client not initialized")
	}

	expr := fmt.Sprintf("%s == %q", milvusFieldExternalID, id)
	_, err := raw.Delete(ctx, milvusclient.NewDeleteOption(s.collection).WithExpr(expr))
	return err
}

func (s *MilvusStore) Stats(ctx context.Context, _ Filter) (int64, error) {
	return s.client.GetCollectionStats(ctx, s.collection)
}

func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func stringField(meta map[string]any, name string) string {
	if v, ok := meta[name].(string); ok {
		return v
	}
	return ""
}

var _ VectorStore = (*MilvusStore)(nil)
