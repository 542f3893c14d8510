package catalog

import "context"

// Store persists one kind of catalog record.
//
// List returns records newest first. Get, Update and Delete return a
// NotFoundError when no record has the id.
type Store[T Record] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, rec T) error
	Update(ctx context.Context, rec T) error
	Delete(ctx context.Context, id string) error
}
