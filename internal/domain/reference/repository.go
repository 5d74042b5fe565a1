package reference

import "context"

// Repository stores the static reference tables. Lookups return pointers so a
// hero or item embedded into a match is the same object everywhere.
type Repository interface {
	Hero(ctx context.Context, id int64) (*Hero, bool)
	Heroes(ctx context.Context) []*Hero
	ReplaceHeroes(ctx context.Context, heroes []Hero)

	Item(ctx context.Context, id int64) (*Item, bool)
	Items(ctx context.Context) []*Item
	ReplaceItems(ctx context.Context, items []Item)

	League(ctx context.Context, id int64) (*League, bool)
	Leagues(ctx context.Context) []*League
	ReplaceLeagues(ctx context.Context, leagues []League)

	Revision() uint64
}
