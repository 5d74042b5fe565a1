package team

import (
	"context"
	"errors"
)

// ErrNotFound reports an operation against a key the store does not hold.
var ErrNotFound = errors.New("team not found")

// Repository is the team store. Reads hand out deep copies; all mutation goes
// through Set or Update so every logical change bumps the revision exactly
// once and observers never see a half-applied edit.
type Repository interface {
	Get(ctx context.Context, key Key) (*Team, bool)
	Set(ctx context.Context, t *Team)
	Delete(ctx context.Context, key Key)
	All(ctx context.Context) []*Team

	// Update applies fn to the stored team under the store's write lock. It
	// returns ErrNotFound for a key the store does not hold; when fn returns
	// an error the stored team is left untouched and the revision does not
	// move.
	Update(ctx context.Context, key Key, fn func(*Team) error) error

	Revision() uint64
}
