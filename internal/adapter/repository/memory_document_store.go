package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

// MemoryDocumentStore keeps collections in process memory. It backs the
// "memory" store backend and repository tests. Like the remote store it
// stamps createdAt/updatedAt itself.
type MemoryDocumentStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	now         func() time.Time
}

type memoryCollection struct {
	order []string
	docs  map[string]map[string]interface{}
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		collections: make(map[string]*memoryCollection),
		now:         time.Now,
	}
}

// Seed inserts a document under a fixed id, replacing any existing one.
func (s *MemoryDocumentStore) Seed(collection, id string, data map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, copyData(data))
}

func (s *MemoryDocumentStore) GetAll(ctx context.Context, collection string) ([]repository.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.TransientIO("Failed to list "+collection, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, nil
	}
	docs := make([]repository.Document, 0, len(col.order))
	for _, id := range col.order {
		docs = append(docs, repository.Document{ID: id, Data: copyData(col.docs[id])})
	}
	return docs, nil
}

func (s *MemoryDocumentStore) GetByID(ctx context.Context, collection, id string) (*repository.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.TransientIO("Failed to get document", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, errors.NotFound("Document", nil)
	}
	data, ok := col.docs[id]
	if !ok {
		return nil, errors.NotFound("Document", nil)
	}
	return &repository.Document{ID: id, Data: copyData(data)}, nil
}

func (s *MemoryDocumentStore) GetSubcollection(ctx context.Context, collection, id, subcollection string) ([]repository.Document, error) {
	return s.GetAll(ctx, SubcollectionPath(collection, id, subcollection))
}

func (s *MemoryDocumentStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.TransientIO("Failed to create document", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	payload := copyData(data)
	now := s.now()
	payload["createdAt"] = now
	payload["updatedAt"] = now
	s.put(collection, id, payload)
	return id, nil
}

func (s *MemoryDocumentStore) Update(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return errors.TransientIO("Failed to update document", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return errors.NotFound("Document", nil)
	}
	existing, ok := col.docs[id]
	if !ok {
		return errors.NotFound("Document", nil)
	}
	for k, v := range data {
		existing[k] = copyValue(v)
	}
	existing["updatedAt"] = s.now()
	return nil
}

func (s *MemoryDocumentStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return errors.TransientIO("Failed to delete document", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil
	}
	if _, ok := col.docs[id]; !ok {
		return nil
	}
	delete(col.docs, id)
	for i, existing := range col.order {
		if existing == id {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryDocumentStore) QueryByField(ctx context.Context, collection, field string, value interface{}, limit int) ([]repository.Document, error) {
	all, err := s.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}

	var matched []repository.Document
	for _, doc := range all {
		if doc.Data[field] != value {
			continue
		}
		matched = append(matched, doc)
		if limit > 0 && len(matched) == limit {
			break
		}
	}
	return matched, nil
}

func (s *MemoryDocumentStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.TransientIO("Document store unreachable", err)
	}
	return nil
}

func (s *MemoryDocumentStore) put(collection, id string, data map[string]interface{}) {
	col, ok := s.collections[collection]
	if !ok {
		col = &memoryCollection{docs: make(map[string]map[string]interface{})}
		s.collections[collection] = col
	}
	if _, exists := col.docs[id]; !exists {
		col.order = append(col.order, id)
	}
	col.docs[id] = data
}

// SubcollectionPath joins a parent document and a subcollection the way
// Firestore addresses nested collections.
func SubcollectionPath(collection, id, subcollection string) string {
	return collection + "/" + id + "/" + subcollection
}

func copyData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return copyData(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case []map[string]interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyData(item)
		}
		return out
	default:
		return v
	}
}
