package analyses

import (
	"context"
	"sort"
	"time"
)

// Repo persists analysis records keyed by (resume ID, club name).
type Repo interface {
	// Save upserts the result for the pair and returns the record ID, which
	// stays stable across overwrites.
	Save(ctx context.Context, resumeID, clubName string, result Result) (string, error)
	Get(ctx context.Context, resumeID, clubName string) (Record, error)
	// ListForResume returns the resume's records, newest first.
	ListForResume(ctx context.Context, resumeID string) ([]Record, error)
	// ListRecent returns up to limit records across all resumes, newest first.
	// A non-positive limit returns every record.
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	Delete(ctx context.Context, recordID string) (bool, error)
	DeleteForResume(ctx context.Context, resumeID string) (bool, error)
	Statistics(ctx context.Context) (Statistics, error)
	ClubSummary(ctx context.Context, clubName string) (ClubSummary, error)
	// CleanupOlderThan removes records analyzed strictly before now minus days.
	CleanupOlderThan(ctx context.Context, days int) (int, error)
}

const (
	recentWindow     = 7 * 24 * time.Hour
	clubRecentWindow = 30 * 24 * time.Hour
	topClubsLimit    = 5
)

func cutoffFor(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// rankClubs orders by average score descending, then club name ascending,
// and keeps at most limit entries.
func rankClubs(scores []ClubScore, limit int) []ClubScore {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].AverageScore != scores[j].AverageScore {
			return scores[i].AverageScore > scores[j].AverageScore
		}
		return scores[i].ClubName < scores[j].ClubName
	})
	if len(scores) > limit {
		scores = scores[:limit]
	}
	return scores
}

func newestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].AnalyzedAt.Equal(records[j].AnalyzedAt) {
			return records[i].AnalyzedAt.After(records[j].AnalyzedAt)
		}
		return records[i].ClubName < records[j].ClubName
	})
}

func cloneResult(r Result) Result {
	r.NetworkingStrategy = cloneStrings(r.NetworkingStrategy)
	r.CampusResources = cloneStrings(r.CampusResources)
	r.ApplicationTimeline = cloneStrings(r.ApplicationTimeline)
	r.PreparationSteps = cloneStrings(r.PreparationSteps)
	r.Improvements = cloneStrings(r.Improvements)
	return r
}

func cloneStrings(in []string) []string {
	return append([]string{}, in...)
}
