package match

import "context"

// Repository is the normalized match store. Matches are globally unique by id
// and handed out by pointer; refreshing a match replaces the object wholesale
// rather than mutating it in place.
type Repository interface {
	Get(ctx context.Context, id int64) (*Match, bool)
	Set(ctx context.Context, m *Match)
	Delete(ctx context.Context, id int64)
	All(ctx context.Context) []*Match

	// Revision increases on every mutation so observers relying on
	// reference-equality change detection can notice updates.
	Revision() uint64
}
