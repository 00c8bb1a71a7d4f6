// Package memory provides in-process implementations of the docstore
// contract and the question source, useful for tests and demos.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizdeck/internal/docstore"
)

// Store is an in-memory docstore.Store.
type Store struct {
	mu          sync.RWMutex
	clock       func() time.Time
	collections map[string]map[string]map[string]any
}

func NewStore() *Store {
	return &Store{
		clock:       time.Now,
		collections: make(map[string]map[string]map[string]any),
	}
}

// NewStoreWithClock is test-only for deterministic timestamps.
func NewStoreWithClock(now func() time.Time) *Store {
	s := NewStore()
	s.clock = now
	return s
}

func (s *Store) Get(_ context.Context, collection, id string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collections[collection][id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{ID: id, Data: copyMap(data)}, nil
}

func (s *Store) Query(_ context.Context, collection string, constraints ...docstore.Constraint) ([]docstore.Document, error) {
	var wheres []docstore.Where
	var orders []docstore.OrderBy
	limit := -1
	for _, c := range constraints {
		switch c := c.(type) {
		case docstore.Where:
			wheres = append(wheres, c)
		case docstore.OrderBy:
			orders = append(orders, c)
		case docstore.Limit:
			limit = c.N
		}
	}

	s.mu.RLock()
	docs := make([]docstore.Document, 0, len(s.collections[collection]))
	for id, data := range s.collections[collection] {
		if matchesAll(data, wheres) {
			docs = append(docs, docstore.Document{ID: id, Data: copyMap(data)})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(docs, func(i, j int) bool {
		for _, o := range orders {
			cmp := compareValues(docs[i].Data[o.Field], docs[j].Data[o.Field])
			if cmp == 0 {
				continue
			}
			if o.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	if limit >= 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (s *Store) Add(_ context.Context, collection string, data map[string]any) (docstore.Document, error) {
	clean := docstore.Sanitize(data, true, s.clock())
	id := uuid.NewString()

	s.mu.Lock()
	s.ensureCollection(collection)[id] = clean
	s.mu.Unlock()

	return docstore.Document{ID: id, Data: copyMap(clean)}, nil
}

func (s *Store) Set(_ context.Context, collection, id string, data map[string]any) (docstore.Document, error) {
	clean := docstore.Sanitize(data, true, s.clock())

	s.mu.Lock()
	s.ensureCollection(collection)[id] = clean
	s.mu.Unlock()

	return docstore.Document{ID: id, Data: copyMap(clean)}, nil
}

func (s *Store) Update(_ context.Context, collection, id string, partial map[string]any) error {
	clean := docstore.Sanitize(partial, false, s.clock())

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.collections[collection][id]
	if !ok {
		return docstore.ErrNotFound
	}
	for k, v := range clean {
		existing[k] = v
	}
	return nil
}

func (s *Store) Delete(_ context.Context, collection, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return false, nil
	}
	delete(s.collections[collection], id)
	return true, nil
}

func (s *Store) ensureCollection(collection string) map[string]map[string]any {
	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string]map[string]any)
		s.collections[collection] = col
	}
	return col
}

func copyMap(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func matchesAll(data map[string]any, wheres []docstore.Where) bool {
	for _, w := range wheres {
		cmp := compareValues(data[w.Field], w.Value)
		switch w.Op {
		case docstore.OpEqual, "":
			if cmp != 0 {
				return false
			}
		case docstore.OpNotEqual:
			if cmp == 0 {
				return false
			}
		case docstore.OpLess:
			if cmp >= 0 {
				return false
			}
		case docstore.OpLessOrEqual:
			if cmp > 0 {
				return false
			}
		case docstore.OpGreater:
			if cmp <= 0 {
				return false
			}
		case docstore.OpGreaterEqual:
			if cmp < 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues orders two field values: numerically when both are numbers,
// chronologically for times, lexically otherwise.
func compareValues(a, b any) int {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
