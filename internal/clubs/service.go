package clubs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/25eliu/ClubApp/internal/shared/telemetry"
)

// Service contains business logic for the club directory and favorites.
type Service struct {
	Repo      Repo
	Favorites FavoritesRepo
}

// LoadFile replaces the directory with the clubs in path.
func (s *Service) LoadFile(ctx context.Context, path string) (int, error) {
	clubs, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	n, err := s.Repo.ReplaceAll(ctx, clubs)
	if err != nil {
		return 0, fmt.Errorf("store clubs: %w", err)
	}
	telemetry.Info("clubs.loaded", map[string]any{"path": path, "count": n})
	return n, nil
}

// SeedIfEmpty loads path only when the directory has no clubs yet.
func (s *Service) SeedIfEmpty(ctx context.Context, path string) (int, error) {
	if strings.TrimSpace(path) == "" {
		return 0, nil
	}
	stats, err := s.Repo.Stats(ctx)
	if err != nil {
		return 0, err
	}
	if stats.Total > 0 {
		return 0, nil
	}
	return s.LoadFile(ctx, path)
}

// List returns clubs matching the optional search term and friendliness level.
func (s *Service) List(ctx context.Context, query, friendliness string) ([]Club, error) {
	query = strings.TrimSpace(query)
	friendliness = strings.TrimSpace(friendliness)

	var (
		clubs []Club
		err   error
	)
	switch {
	case query != "":
		clubs, err = s.Repo.Search(ctx, query)
	case friendliness != "":
		return s.Repo.ByFriendliness(ctx, friendliness)
	default:
		return s.Repo.List(ctx)
	}
	if err != nil || friendliness == "" {
		return clubs, err
	}

	needle := strings.ToLower(friendliness)
	out := clubs[:0]
	for _, c := range clubs {
		if strings.Contains(strings.ToLower(c.FreshmanFriendliness), needle) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Get returns the club with the exact name.
func (s *Service) Get(ctx context.Context, name string) (Club, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Club{}, ErrInvalidInput
	}
	return s.Repo.GetByName(ctx, name)
}

// ByNames resolves names in order, failing on the first unknown club.
func (s *Service) ByNames(ctx context.Context, names []string) ([]Club, error) {
	out := make([]Club, 0, len(names))
	for _, name := range names {
		c, err := s.Get(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("club %q: %w", name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.Repo.Stats(ctx)
}

// ListFavorites returns the user's favorite clubs in the order they were added.
// Favorites whose club has since left the directory are skipped.
func (s *Service) ListFavorites(ctx context.Context, userID string) ([]Club, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	names, err := s.Favorites.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Club, 0, len(names))
	for _, name := range names {
		c, err := s.Repo.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// AddFavorite marks a club as a favorite. It reports false if it already was one.
func (s *Service) AddFavorite(ctx context.Context, userID, clubName string) (bool, error) {
	if userID == "" {
		return false, ErrInvalidInput
	}
	c, err := s.Get(ctx, clubName)
	if err != nil {
		return false, err
	}
	return s.Favorites.Add(ctx, userID, c.Name)
}

// RemoveFavorite reports whether the club was a favorite.
func (s *Service) RemoveFavorite(ctx context.Context, userID, clubName string) (bool, error) {
	clubName = strings.TrimSpace(clubName)
	if userID == "" || clubName == "" {
		return false, ErrInvalidInput
	}
	return s.Favorites.Remove(ctx, userID, clubName)
}
