package clubs

import "context"

// Repo defines persistence operations for the club directory.
type Repo interface {
	// ReplaceAll clears the directory and stores clubs, returning the count stored.
	ReplaceAll(ctx context.Context, clubs []Club) (int, error)
	List(ctx context.Context) ([]Club, error)
	GetByName(ctx context.Context, name string) (Club, error)
	// Search matches term case-insensitively against name, acronym and primary focus.
	Search(ctx context.Context, term string) ([]Club, error)
	ByFriendliness(ctx context.Context, level string) ([]Club, error)
	Stats(ctx context.Context) (Stats, error)
}

// FavoritesRepo stores per-user favorite club names.
type FavoritesRepo interface {
	List(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, clubName string) (bool, error)
	Remove(ctx context.Context, userID, clubName string) (bool, error)
}
