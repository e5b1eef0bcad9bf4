// Package vectorstore provides the per-pipeline persistent ANN index
// behind a narrow Store interface, with a Chroma-backed implementation as
// the public default and a Qdrant-backed implementation as an internal
// alternate behind the same interface.
package vectorstore

import (
	"context"
	"sync"
)

// Record is one vector plus its content and metadata, as written to or
// read from a collection.
type Record struct {
	ID       string
	Content  string
	Metadata map[string]interface{}
	Vector   []float32
}

// QueryResult is one match returned from Query, with distance already
// converted by the caller if needed.
type QueryResult struct {
	ID       string
	Content  string
	Metadata map[string]interface{}
	Distance float32
}

// Store is the narrow interface the retriever and ingest coordinator
// depend on, implemented by the Chroma and Qdrant adapters. One Store
// value is bound to exactly one pipeline's collection, obtained from a
// Factory's OpenOrCreate.
type Store interface {
	Add(ctx context.Context, records []Record) error
	Query(ctx context.Context, queryVector []float32, nResults int, where map[string]interface{}) ([]QueryResult, error)
	Delete(ctx context.Context, where map[string]interface{}) error
	Count(ctx context.Context) (int, error)
	// Drop removes the collection and all its persisted data.
	Drop(ctx context.Context) error
}

// Factory opens or creates per-pipeline collections with a cosine-distance
// space, returning a Store bound to that single collection.
type Factory interface {
	OpenOrCreate(ctx context.Context, pipelineID string) (Store, error)
}

// collectionLocks serializes writers per collection (pipeline id) while
// allowing concurrent readers, satisfying the "Delete is atomic w.r.t.
// concurrent Query" requirement without a global lock across pipelines.
type collectionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func newCollectionLocks() *collectionLocks {
	return &collectionLocks{locks: make(map[string]*sync.RWMutex)}
}

func (c *collectionLocks) get(id string) *sync.RWMutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[id]
	if !ok {
		lock = &sync.RWMutex{}
		c.locks[id] = lock
	}
	return lock
}

// Score converts a cosine distance into the [0,1] relevance score the
// retriever reports, clamping negative results up to zero.
func Score(distance float32) float32 {
	score := 1 - distance
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// MatchesFilter evaluates a single metadata filter clause against a
// record's metadata, supporting eq/ne/gt/gte/lt/lte/in/nin.
func MatchesFilter(metadata map[string]interface{}, field, op string, value interface{}) bool {
	actual, ok := metadata[field]
	if !ok {
		return op == "ne" || op == "nin"
	}
	switch op {
	case "eq":
		return compareEqual(actual, value)
	case "ne":
		return !compareEqual(actual, value)
	case "gt", "gte", "lt", "lte":
		return compareOrdered(actual, value, op)
	case "in":
		return containsValue(value, actual)
	case "nin":
		return !containsValue(value, actual)
	default:
		return false
	}
}

func compareEqual(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func compareOrdered(a, b interface{}, op string) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return false
	}
	switch op {
	case "gt":
		return af > bf
	case "gte":
		return af >= bf
	case "lt":
		return af < bf
	case "lte":
		return af <= bf
	}
	return false
}

func containsValue(list interface{}, target interface{}) bool {
	values, ok := list.([]interface{})
	if !ok {
		return false
	}
	for _, v := range values {
		if compareEqual(v, target) {
			return true
		}
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// MatchesAll reports whether metadata satisfies every filter (implicit AND).
func MatchesAll(metadata map[string]interface{}, where map[string]interface{}) bool {
	for field, raw := range where {
		clause, ok := raw.(map[string]interface{})
		if !ok {
			if !compareEqual(metadata[field], raw) {
				return false
			}
			continue
		}
		for op, value := range clause {
			if !MatchesFilter(metadata, field, op, value) {
				return false
			}
		}
	}
	return true
}
