package vectorstore

import (
	"context"
	"sync"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/helixrag/ragengine/internal/errs"
)

// QdrantFactory opens pipeline collections against a Qdrant gRPC server.
// It is an internal alternate adapter, not yet exposed through the public
// VectorStoreType enum.
type QdrantFactory struct {
	conn   *qdrant.Client
	locks  *collectionLocks
	vecDim uint64
}

// NewQdrantFactory constructs a factory bound to a running Qdrant server.
func NewQdrantFactory(host string, port int, vectorDim uint64) (*QdrantFactory, error) {
	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, errs.Wrap(errs.KindVectorStoreFailure, "create qdrant client", err)
	}
	return &QdrantFactory{conn: client, locks: newCollectionLocks(), vecDim: vectorDim}, nil
}

func (f *QdrantFactory) OpenOrCreate(ctx context.Context, pipelineID string) (Store, error) {
	name := collectionName(pipelineID)

	exists, err := f.conn.CollectionExists(ctx, name)
	if err != nil {
		return nil, errs.Wrap(errs.KindVectorStoreFailure, "check qdrant collection", err)
	}
	if !exists {
		err := f.conn.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     f.vecDim,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return nil, errs.Wrap(errs.KindVectorStoreFailure, "create qdrant collection", err)
		}
	}

	return &qdrantStore{client: f.conn, name: name, lock: f.locks.get(pipelineID)}, nil
}

type qdrantStore struct {
	client *qdrant.Client
	name   string
	lock   *sync.RWMutex
}

func (s *qdrantStore) Add(ctx context.Context, records []Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	points := make([]*qdrant.PointStruct, len(records))
	for i, r := range records {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(r.ID),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: payloadFromMetadata(r.Content, r.Metadata),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.name,
		Points:         points,
	})
	if err != nil {
		return errs.Wrap(errs.KindVectorStoreFailure, "upsert qdrant points", err)
	}
	return nil
}

func payloadFromMetadata(content string, metadata map[string]interface{}) map[string]*qdrant.Value {
	payload := make(map[string]*qdrant.Value, len(metadata)+1)
	payload["content"] = qdrant.NewValueString(content)
	for k, v := range metadata {
		switch val := v.(type) {
		case string:
			payload[k] = qdrant.NewValueString(val)
		case int:
			payload[k] = qdrant.NewValueInt(int64(val))
		case int64:
			payload[k] = qdrant.NewValueInt(val)
		case float64:
			payload[k] = qdrant.NewValueDouble(val)
		case bool:
			payload[k] = qdrant.NewValueBool(val)
		}
	}
	return payload
}

func (s *qdrantStore) Query(ctx context.Context, queryVector []float32, nResults int, where map[string]interface{}) ([]QueryResult, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	limit := uint64(nResults)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.name,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          &limit,
		Filter:         filterFromWhere(where),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindVectorStoreFailure, "query qdrant collection", err)
	}

	results := make([]QueryResult, 0, len(points))
	for _, p := range points {
		metadata := make(map[string]interface{})
		var content string
		for k, v := range p.GetPayload() {
			if k == "content" {
				content = v.GetStringValue()
				continue
			}
			metadata[k] = payloadValue(v)
		}
		if !MatchesAll(metadata, where) {
			continue
		}
		results = append(results, QueryResult{
			ID:       qdrant.NewID(p.GetId()).String(),
			Content:  content,
			Metadata: metadata,
			Distance: 1 - p.GetScore(),
		})
	}
	return results, nil
}

func payloadValue(v *qdrant.Value) interface{} {
	switch v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return v.GetStringValue()
	case *qdrant.Value_IntegerValue:
		return v.GetIntegerValue()
	case *qdrant.Value_DoubleValue:
		return v.GetDoubleValue()
	case *qdrant.Value_BoolValue:
		return v.GetBoolValue()
	default:
		return nil
	}
}

// filterFromWhere only supports straightforward equality matches at the
// Qdrant query layer; richer operators (gt/lt/in/...) are re-checked
// client-side via MatchesAll once results come back, matching the Chroma
// adapter's contract from the retriever's point of view.
func filterFromWhere(where map[string]interface{}) *qdrant.Filter {
	if len(where) == 0 {
		return nil
	}
	var conditions []*qdrant.Condition
	for field, value := range where {
		if scalar, ok := value.(string); ok {
			conditions = append(conditions, qdrant.NewMatch(field, scalar))
		}
	}
	if len(conditions) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: conditions}
}

func (s *qdrantStore) Delete(ctx context.Context, where map[string]interface{}) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.name,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{Filter: filterFromWhere(where)},
		},
	})
	if err != nil {
		return errs.Wrap(errs.KindVectorStoreFailure, "delete qdrant points", err)
	}
	return nil
}

func (s *qdrantStore) Count(ctx context.Context) (int, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{CollectionName: s.name})
	if err != nil {
		return 0, errs.Wrap(errs.KindVectorStoreFailure, "count qdrant collection", err)
	}
	return int(count), nil
}

func (s *qdrantStore) Drop(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.client.DeleteCollection(ctx, s.name); err != nil {
		return errs.Wrap(errs.KindVectorStoreFailure, "drop qdrant collection", err)
	}
	return nil
}
