package ports

import "context"

// ResultStore keeps loaded results in memory, keyed by root UUID.
// A new Save for the same key replaces the previous value wholesale.
type ResultStore[T any] interface {
	// Save stores value under id.
	Save(ctx context.Context, id string, value T) error

	// Load retrieves the value for id.
	// Returns domain.ErrResultNotFound if nothing is stored under id.
	Load(ctx context.Context, id string) (T, error)

	// Delete removes the value for id.
	Delete(ctx context.Context, id string) error

	// List returns the stored ids in ascending order.
	List(ctx context.Context) ([]string, error)
}
