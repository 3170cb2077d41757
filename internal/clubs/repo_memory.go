package clubs

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	clubs map[string]Club
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{clubs: make(map[string]Club)}
}

func (r *MemoryRepo) ReplaceAll(ctx context.Context, clubs []Club) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	next := make(map[string]Club, len(clubs))
	for _, c := range clubs {
		if c.Name == "" {
			continue
		}
		next[c.Name] = c
	}
	r.mu.Lock()
	r.clubs = next
	r.mu.Unlock()
	return len(next), nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Club, error) {
	return r.filter(ctx, func(Club) bool { return true })
}

func (r *MemoryRepo) GetByName(ctx context.Context, name string) (Club, error) {
	if err := ctx.Err(); err != nil {
		return Club{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clubs[name]
	if !ok {
		return Club{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) Search(ctx context.Context, term string) ([]Club, error) {
	needle := strings.ToLower(strings.TrimSpace(term))
	return r.filter(ctx, func(c Club) bool {
		return strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Acronym), needle) ||
			strings.Contains(strings.ToLower(c.PrimaryFocus), needle)
	})
}

func (r *MemoryRepo) ByFriendliness(ctx context.Context, level string) ([]Club, error) {
	needle := strings.ToLower(strings.TrimSpace(level))
	return r.filter(ctx, func(c Club) bool {
		return strings.Contains(strings.ToLower(c.FreshmanFriendliness), needle)
	})
}

func (r *MemoryRepo) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := Stats{Total: len(r.clubs)}
	for _, c := range r.clubs {
		if c.IsHighFreshmanFriendly() {
			stats.HighFreshmanFriendly++
		}
	}
	return stats, nil
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(Club) bool) ([]Club, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Club, 0, len(r.clubs))
	for _, c := range r.clubs {
		if keep(c) {
			out = append(out, c)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MemoryFavorites is an in-memory implementation of FavoritesRepo.
type MemoryFavorites struct {
	mu   sync.RWMutex
	data map[string][]string // userID -> club names in insertion order
}

// NewMemoryFavorites constructs a MemoryFavorites.
func NewMemoryFavorites() *MemoryFavorites {
	return &MemoryFavorites{data: make(map[string][]string)}
}

func (f *MemoryFavorites) List(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string{}, f.data[userID]...), nil
}

func (f *MemoryFavorites) Add(ctx context.Context, userID, clubName string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, name := range f.data[userID] {
		if name == clubName {
			return false, nil
		}
	}
	f.data[userID] = append(f.data[userID], clubName)
	return true, nil
}

func (f *MemoryFavorites) Remove(ctx context.Context, userID, clubName string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	names := f.data[userID]
	for i, name := range names {
		if name == clubName {
			f.data[userID] = append(names[:i:i], names[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

var (
	_ Repo          = (*MemoryRepo)(nil)
	_ FavoritesRepo = (*MemoryFavorites)(nil)
)
