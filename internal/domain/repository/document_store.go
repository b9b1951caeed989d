package repository

import (
	"context"
)

// Document is a raw record read from the remote document store.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// DocumentStore is the read/write contract of the remote document
// database. GetByID returns a NOT_FOUND AppError for missing ids.
type DocumentStore interface {
	GetAll(ctx context.Context, collection string) ([]Document, error)
	GetByID(ctx context.Context, collection, id string) (*Document, error)
	GetSubcollection(ctx context.Context, collection, id, subcollection string) ([]Document, error)
	Add(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	Update(ctx context.Context, collection, id string, data map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
	QueryByField(ctx context.Context, collection, field string, value interface{}, limit int) ([]Document, error)
	// Ping performs the cheapest possible read to prove the connection works.
	Ping(ctx context.Context) error
}
