package analyses

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type recordKey struct {
	resumeID string
	clubName string
}

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[recordKey]Record
	// Now is the clock used for timestamps and age windows.
	Now func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		records: make(map[recordKey]Record),
		Now:     time.Now,
	}
}

func (r *MemoryRepo) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

// Save upserts the result for the pair.
func (r *MemoryRepo) Save(ctx context.Context, resumeID, clubName string, result Result) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := recordKey{resumeID: resumeID, clubName: clubName}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	if existing, ok := r.records[key]; ok {
		id = existing.ID
	}
	r.records[key] = Record{
		ID:         id,
		ResumeID:   resumeID,
		ClubName:   clubName,
		AnalyzedAt: r.now(),
		Result:     cloneResult(result),
	}
	return id, nil
}

func (r *MemoryRepo) Get(ctx context.Context, resumeID, clubName string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[recordKey{resumeID: resumeID, clubName: clubName}]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.Result = cloneResult(rec.Result)
	return rec, nil
}

func (r *MemoryRepo) ListForResume(ctx context.Context, resumeID string) ([]Record, error) {
	return r.collect(ctx, 0, func(rec Record) bool { return rec.ResumeID == resumeID })
}

func (r *MemoryRepo) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	return r.collect(ctx, limit, func(Record) bool { return true })
}

func (r *MemoryRepo) Delete(ctx context.Context, recordID string) (bool, error) {
	return r.remove(ctx, func(rec Record) bool { return rec.ID == recordID })
}

func (r *MemoryRepo) DeleteForResume(ctx context.Context, resumeID string) (bool, error) {
	removed, err := r.removeCount(ctx, func(rec Record) bool { return rec.ResumeID == resumeID })
	return removed > 0, err
}

func (r *MemoryRepo) CleanupOlderThan(ctx context.Context, days int) (int, error) {
	cutoff := cutoffFor(r.now(), days)
	return r.removeCount(ctx, func(rec Record) bool { return rec.AnalyzedAt.Before(cutoff) })
}

func (r *MemoryRepo) Statistics(ctx context.Context) (Statistics, error) {
	if err := ctx.Err(); err != nil {
		return Statistics{}, err
	}
	recentSince := r.now().Add(-recentWindow)

	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Statistics{TopClubs: []ClubScore{}}
	if len(r.records) == 0 {
		return stats, nil
	}

	resumes := make(map[string]struct{})
	type agg struct{ sum, count int }
	perClub := make(map[string]*agg)
	total := 0
	for _, rec := range r.records {
		stats.TotalCount++
		total += rec.MatchScore
		resumes[rec.ResumeID] = struct{}{}
		if !rec.AnalyzedAt.Before(recentSince) {
			stats.RecentCount++
		}
		a, ok := perClub[rec.ClubName]
		if !ok {
			a = &agg{}
			perClub[rec.ClubName] = a
		}
		a.sum += rec.MatchScore
		a.count++
	}
	stats.AverageScore = float64(total) / float64(stats.TotalCount)
	stats.UniqueResumes = len(resumes)
	stats.UniqueClubs = len(perClub)

	scores := make([]ClubScore, 0, len(perClub))
	for name, a := range perClub {
		scores = append(scores, ClubScore{
			ClubName:      name,
			AverageScore:  float64(a.sum) / float64(a.count),
			AnalysisCount: a.count,
		})
	}
	stats.TopClubs = rankClubs(scores, topClubsLimit)
	return stats, nil
}

func (r *MemoryRepo) ClubSummary(ctx context.Context, clubName string) (ClubSummary, error) {
	if err := ctx.Err(); err != nil {
		return ClubSummary{}, err
	}
	recentSince := r.now().Add(-clubRecentWindow)

	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := ClubSummary{ClubName: clubName}
	total := 0
	for _, rec := range r.records {
		if rec.ClubName != clubName {
			continue
		}
		if summary.Count == 0 || rec.MatchScore > summary.HighestScore {
			summary.HighestScore = rec.MatchScore
		}
		if summary.Count == 0 || rec.MatchScore < summary.LowestScore {
			summary.LowestScore = rec.MatchScore
		}
		summary.Count++
		total += rec.MatchScore
		if !rec.AnalyzedAt.Before(recentSince) {
			summary.RecentCount++
		}
	}
	if summary.Count > 0 {
		summary.AverageScore = float64(total) / float64(summary.Count)
	}
	return summary, nil
}

func (r *MemoryRepo) collect(ctx context.Context, limit int, keep func(Record) bool) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Record, 0)
	for _, rec := range r.records {
		if keep(rec) {
			rec.Result = cloneResult(rec.Result)
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	newestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) remove(ctx context.Context, match func(Record) bool) (bool, error) {
	n, err := r.removeCount(ctx, match)
	return n > 0, err
}

func (r *MemoryRepo) removeCount(ctx context.Context, match func(Record) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key, rec := range r.records {
		if match(rec) {
			delete(r.records, key)
			removed++
		}
	}
	return removed, nil
}

var _ Repo = (*MemoryRepo)(nil)
