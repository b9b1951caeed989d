package repository

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type firestoreDocumentStore struct {
	client *firestore.Client
}

func NewFirestoreDocumentStore(client *firestore.Client) repository.DocumentStore {
	return &firestoreDocumentStore{
		client: client,
	}
}

func (s *firestoreDocumentStore) GetAll(ctx context.Context, collection string) ([]repository.Document, error) {
	docs, err := readAll(s.client.Collection(collection).Documents(ctx))
	if err != nil {
		return nil, errors.TransientIO("Failed to list "+collection, err)
	}
	return docs, nil
}

func (s *firestoreDocumentStore) GetByID(ctx context.Context, collection, id string) (*repository.Document, error) {
	if id == "" || strings.Contains(id, "/") {
		return nil, errors.NotFound("Document", nil)
	}

	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Document", err)
		}
		return nil, errors.TransientIO("Failed to get document", err)
	}

	return &repository.Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *firestoreDocumentStore) GetSubcollection(ctx context.Context, collection, id, subcollection string) ([]repository.Document, error) {
	iter := s.client.Collection(collection).Doc(id).Collection(subcollection).Documents(ctx)
	docs, err := readAll(iter)
	if err != nil {
		return nil, errors.TransientIO("Failed to list "+subcollection, err)
	}
	return docs, nil
}

func (s *firestoreDocumentStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	payload := copyData(data)
	payload["createdAt"] = firestore.ServerTimestamp
	payload["updatedAt"] = firestore.ServerTimestamp

	ref, _, err := s.client.Collection(collection).Add(ctx, payload)
	if err != nil {
		return "", errors.TransientIO("Failed to create document", err)
	}
	return ref.ID, nil
}

func (s *firestoreDocumentStore) Update(ctx context.Context, collection, id string, data map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(data)+1)
	for path, value := range data {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})

	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Document", err)
		}
		return errors.TransientIO("Failed to update document", err)
	}
	return nil
}

func (s *firestoreDocumentStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx)
	if err != nil {
		return errors.TransientIO("Failed to delete document", err)
	}
	return nil
}

func (s *firestoreDocumentStore) QueryByField(ctx context.Context, collection, field string, value interface{}, limit int) ([]repository.Document, error) {
	query := s.client.Collection(collection).Where(field, "==", value)
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := readAll(query.Documents(ctx))
	if err != nil {
		return nil, errors.TransientIO("Failed to query "+collection, err)
	}
	return docs, nil
}

func (s *firestoreDocumentStore) Ping(ctx context.Context) error {
	_, err := s.client.Collections(ctx).Next()
	if err != nil && err != iterator.Done {
		return errors.TransientIO("Document store unreachable", err)
	}
	return nil
}

func readAll(iter *firestore.DocumentIterator) ([]repository.Document, error) {
	defer iter.Stop()

	var docs []repository.Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, repository.Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}
