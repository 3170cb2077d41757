package resumes

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Resume
	byHash map[string]string // content hash -> resume ID
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Resume),
		byHash: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, resume Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byHash[resume.ContentHash]; ok {
		return ErrDuplicate
	}
	r.byID[resume.ID] = resume
	r.byHash[resume.ContentHash] = resume.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.byID[id]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return resume, nil
}

func (r *MemoryRepo) GetByHash(ctx context.Context, contentHash string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byHash[contentHash]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return r.byID[id], nil
}

// List returns resumes newest first, honoring limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	resumes := make([]Resume, 0, len(r.byID))
	for _, resume := range r.byID {
		resumes = append(resumes, resume)
	}
	r.mu.RUnlock()

	if offset >= len(resumes) {
		return []Resume{}, nil
	}
	sort.Slice(resumes, func(i, j int) bool {
		if !resumes[i].UploadedAt.Equal(resumes[j].UploadedAt) {
			return resumes[i].UploadedAt.After(resumes[j].UploadedAt)
		}
		return resumes[i].ID < resumes[j].ID
	})

	end := len(resumes)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return resumes[offset:end], nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	delete(r.byID, id)
	delete(r.byHash, resume.ContentHash)
	return true, nil
}

func (r *MemoryRepo) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := Stats{Total: len(r.byID)}
	if stats.Total == 0 {
		return stats, nil
	}
	words := 0
	for _, resume := range r.byID {
		words += resume.WordCount
	}
	stats.AverageWordCount = float64(words) / float64(stats.Total)
	return stats, nil
}

var _ Repo = (*MemoryRepo)(nil)
