package player

import "context"

// Repository is the normalized player store keyed by account id.
type Repository interface {
	Get(ctx context.Context, accountID int64) (*Player, bool)
	Set(ctx context.Context, p *Player)
	Delete(ctx context.Context, accountID int64)
	All(ctx context.Context) []*Player

	Revision() uint64
}
