package vectorstore

import (
	"context"
	"fmt"
	"sync"

	chroma "github.com/amikos-tech/chroma-go"
	"github.com/amikos-tech/chroma-go/types"

	"github.com/helixrag/ragengine/internal/errs"
)

// ChromaFactory opens pipeline collections against a single Chroma server.
type ChromaFactory struct {
	client *chroma.Client
	locks  *collectionLocks
}

// NewChromaFactory constructs a factory bound to a running Chroma server.
func NewChromaFactory(baseURL string) (*ChromaFactory, error) {
	client, err := chroma.NewClient(baseURL)
	if err != nil {
		return nil, errs.Wrap(errs.KindVectorStoreFailure, "create chroma client", err)
	}
	return &ChromaFactory{client: client, locks: newCollectionLocks()}, nil
}

func collectionName(pipelineID string) string {
	return "pipeline_" + pipelineID
}

// OpenOrCreate returns a Store bound to pipelineID's collection, creating
// it (cosine space) if it does not already exist.
func (f *ChromaFactory) OpenOrCreate(ctx context.Context, pipelineID string) (Store, error) {
	name := collectionName(pipelineID)

	coll, err := f.client.GetCollection(ctx, name, nil)
	if err != nil {
		coll, err = f.client.CreateCollection(ctx, name, map[string]interface{}{}, true,
			types.NewConsistentHashEmbeddingFunction(), types.COSINE)
		if err != nil {
			return nil, errs.Wrap(errs.KindVectorStoreFailure, fmt.Sprintf("open or create collection %s", name), err)
		}
	}

	return &chromaStore{
		client:     f.client,
		collection: coll,
		lock:       f.locks.get(pipelineID),
	}, nil
}

// chromaStore is a Store bound to one already-open Chroma collection.
type chromaStore struct {
	client     *chroma.Client
	collection *chroma.Collection
	lock       *sync.RWMutex
}

func (s *chromaStore) Add(ctx context.Context, records []Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	ids := make([]string, len(records))
	texts := make([]string, len(records))
	metadatas := make([]map[string]interface{}, len(records))
	embeddings := make([]*types.Embedding, len(records))
	for i, r := range records {
		ids[i] = r.ID
		texts[i] = r.Content
		metadatas[i] = r.Metadata
		embeddings[i] = types.NewEmbeddingFromFloat32(r.Vector)
	}

	if _, err := s.collection.Add(ctx, embeddings, metadatas, texts, ids); err != nil {
		return errs.Wrap(errs.KindVectorStoreFailure, "add records to chroma", err)
	}
	return nil
}

func (s *chromaStore) Query(ctx context.Context, queryVector []float32, nResults int, where map[string]interface{}) ([]QueryResult, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	qr, err := s.collection.QueryWithOptions(ctx, types.NewQueryOptions().
		WithQueryEmbeddings([]*types.Embedding{types.NewEmbeddingFromFloat32(queryVector)}).
		WithNResults(int32(nResults)).
		WithWhere(types.WhereFromMap(where)))
	if err != nil {
		return nil, errs.Wrap(errs.KindVectorStoreFailure, "query chroma collection", err)
	}
	return convertChromaResult(qr), nil
}

func convertChromaResult(qr *types.QueryResults) []QueryResult {
	if qr == nil || len(qr.Ids) == 0 {
		return nil
	}
	ids := qr.Ids[0]
	results := make([]QueryResult, 0, len(ids))
	for i, id := range ids {
		r := QueryResult{ID: id}
		if len(qr.Documents) > 0 && i < len(qr.Documents[0]) {
			r.Content = qr.Documents[0][i]
		}
		if len(qr.Distances) > 0 && i < len(qr.Distances[0]) {
			r.Distance = qr.Distances[0][i]
		}
		if len(qr.Metadatas) > 0 && i < len(qr.Metadatas[0]) {
			r.Metadata = qr.Metadatas[0][i]
		}
		results = append(results, r)
	}
	return results
}

func (s *chromaStore) Delete(ctx context.Context, where map[string]interface{}) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, err := s.collection.DeleteWithOptions(ctx, types.NewDeleteOptions().WithWhere(types.WhereFromMap(where))); err != nil {
		return errs.Wrap(errs.KindVectorStoreFailure, "delete from chroma collection", err)
	}
	return nil
}

func (s *chromaStore) Count(ctx context.Context) (int, error) {
	n, err := s.collection.Count(ctx)
	if err != nil {
		return 0, errs.Wrap(errs.KindVectorStoreFailure, "count chroma collection", err)
	}
	return int(n), nil
}

func (s *chromaStore) Drop(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.client.DeleteCollection(ctx, s.collection.Name); err != nil {
		return errs.Wrap(errs.KindVectorStoreFailure, "drop chroma collection", err)
	}
	return nil
}
