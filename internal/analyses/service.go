package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/25eliu/ClubApp/internal/clubs"
	"github.com/25eliu/ClubApp/internal/llm"
	"github.com/25eliu/ClubApp/internal/shared/metrics"
	"github.com/25eliu/ClubApp/internal/shared/telemetry"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
	rawLogLimit        = 500
)

// Service decides between cached and fresh analyses and aggregates results.
type Service struct {
	Repo Repo
	LLM  llm.Client
	// Now is the clock used for cache freshness. Nil uses time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Analyze returns the strategy for one resume and club. A stored result younger
// than CacheValidity is returned unless ForceRefresh is set; otherwise the LLM
// is called once and the parsed result is saved. Failures are returned as *Error.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*Result, error) {
	result, _, err := s.analyze(ctx, req)
	return result, err
}

// analyze is Analyze that also reports whether the result came from the store.
func (s *Service) analyze(ctx context.Context, req AnalyzeRequest) (*Result, bool, error) {
	resumeID := strings.TrimSpace(req.ResumeID)
	if resumeID == "" {
		return nil, false, newError(KindValidation, "resume id is required", nil)
	}
	clubName := req.Club.Resolved().Name
	fields := map[string]any{
		"resume_id": resumeID,
		"club_name": clubName,
		"force":     req.ForceRefresh,
	}

	if !req.ForceRefresh {
		if cached, ok := s.cached(ctx, resumeID, clubName); ok {
			metrics.IncCacheHit()
			telemetry.Info("analysis.cache_hit", fields)
			return &cached, true, nil
		}
	}
	metrics.IncCacheMiss()

	if s.LLM == nil || !s.LLM.Configured() {
		metrics.IncAnalysisFailed()
		telemetry.Warn("analysis.not_configured", fields)
		return nil, false, newError(KindConfiguration, "LLM is not configured; check the provider API key", llm.ErrNotConfigured)
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		return nil, false, newError(KindValidation, "resume has no extracted text", nil)
	}

	start := time.Now()
	prompt := BuildPrompt(req.ResumeText, req.Club)
	metrics.IncLLMCall()
	raw, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		metrics.IncAnalysisFailed()
		fields["error"] = err
		telemetry.Error("analysis.failed", fields)
		return nil, false, newError(KindProvider, fmt.Sprintf("analysis failed for %s", clubName), err)
	}

	result, perr := ParseResult(raw)
	if perr != nil {
		telemetry.Warn("analysis.parse_fallback", map[string]any{
			"resume_id": resumeID,
			"club_name": clubName,
			"error":     perr,
			"raw":       telemetry.TruncateForLog(raw, rawLogLimit),
		})
	}

	id, err := s.Repo.Save(ctx, resumeID, clubName, result)
	if err != nil {
		metrics.IncPersistFailed()
		telemetry.Error("analysis.persist_failed", map[string]any{
			"resume_id": resumeID,
			"club_name": clubName,
			"error":     err,
		})
	}

	durationMs := metrics.SinceMillis(start)
	metrics.ObserveAnalysisDurationMs(durationMs)
	telemetry.Info("analysis.completed", map[string]any{
		"analysis_id": id,
		"resume_id":   resumeID,
		"club_name":   clubName,
		"match_score": result.MatchScore,
		"duration_ms": durationMs,
		"fallback":    perr != nil,
	})
	return &result, false, nil
}

func (s *Service) cached(ctx context.Context, resumeID, clubName string) (Result, bool) {
	rec, err := s.Repo.Get(ctx, resumeID, clubName)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			telemetry.Warn("analysis.cache_lookup_failed", map[string]any{
				"resume_id": resumeID,
				"club_name": clubName,
				"error":     err,
			})
		}
		return Result{}, false
	}
	if s.now().Sub(rec.AnalyzedAt) >= CacheValidity {
		return Result{}, false
	}
	return rec.Result, true
}

// AnalyzeMany analyzes the clubs one at a time and ranks the successes by
// score, highest first. Equal scores keep their input order.
func (s *Service) AnalyzeMany(ctx context.Context, resumeID, resumeText string, clubList []clubs.Club, force bool) Batch {
	batch := Batch{Ranked: []Ranked{}}
	for _, club := range clubList {
		if ctx.Err() != nil {
			break
		}
		name := club.Resolved().Name
		res, err := s.Analyze(ctx, AnalyzeRequest{
			ResumeID:     resumeID,
			ResumeText:   resumeText,
			Club:         club,
			ForceRefresh: force,
		})
		if err != nil {
			batch.Failures = append(batch.Failures, Failure{ClubName: name, Kind: KindOf(err), Message: userMessage(err)})
			continue
		}
		batch.Ranked = append(batch.Ranked, Ranked{ClubName: name, Result: *res})
	}
	if len(batch.Ranked) == 0 {
		return batch
	}

	sort.SliceStable(batch.Ranked, func(i, j int) bool {
		return batch.Ranked[i].Result.MatchScore > batch.Ranked[j].Result.MatchScore
	})
	total := 0
	for _, r := range batch.Ranked {
		total += r.Result.MatchScore
	}
	best := batch.Ranked[0]
	batch.BestMatch = &best
	batch.Count = len(batch.Ranked)
	batch.AverageScore = float64(total) / float64(batch.Count)
	batch.Strategy = applicationStrategy(batch.Ranked)
	return batch
}

// SummaryForResume aggregates every stored analysis of the resume.
func (s *Service) SummaryForResume(ctx context.Context, resumeID string) (Summary, error) {
	records, err := s.ListForResume(ctx, resumeID)
	if err != nil {
		return Summary{}, err
	}
	if len(records) == 0 {
		return Summary{}, nil
	}

	top := records[0]
	last := records[0].AnalyzedAt
	total := 0
	for _, rec := range records {
		total += rec.MatchScore
		if rec.MatchScore > top.MatchScore {
			top = rec
		}
		if rec.AnalyzedAt.After(last) {
			last = rec.AnalyzedAt
		}
	}
	return Summary{
		Count:        len(records),
		AverageScore: float64(total) / float64(len(records)),
		TopClub:      top.ClubName,
		TopScore:     top.MatchScore,
		LastUpdated:  &last,
	}, nil
}

type exportEntry struct {
	ClubName          string `json:"club_name"`
	AnalysisTimestamp string `json:"analysis_timestamp"`
	Result
}

type exportDocument struct {
	ResumeID        string        `json:"resume_id"`
	ExportTimestamp string        `json:"export_timestamp"`
	TotalAnalyses   int           `json:"total_analyses"`
	Analyses        []exportEntry `json:"analyses"`
}

// ExportForResume renders the resume's full history as indented JSON.
func (s *Service) ExportForResume(ctx context.Context, resumeID string) ([]byte, error) {
	records, err := s.ListForResume(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	doc := exportDocument{
		ResumeID:        resumeID,
		ExportTimestamp: s.now().Format(time.RFC3339),
		TotalAnalyses:   len(records),
		Analyses:        make([]exportEntry, 0, len(records)),
	}
	for _, rec := range records {
		doc.Analyses = append(doc.Analyses, exportEntry{
			ClubName:          rec.ClubName,
			AnalysisTimestamp: rec.AnalyzedAt.Format(time.RFC3339),
			Result:            rec.Result,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Cleanup removes analyses older than daysOld days. A non-positive value uses
// DefaultCleanupDays.
func (s *Service) Cleanup(ctx context.Context, daysOld int) (int, error) {
	if daysOld <= 0 {
		daysOld = DefaultCleanupDays
	}
	n, err := s.Repo.CleanupOlderThan(ctx, daysOld)
	if err != nil {
		return 0, persistence("clean up analyses", err)
	}
	telemetry.Info("analysis.cleanup", map[string]any{"days": daysOld, "removed": n})
	return n, nil
}

func (s *Service) Get(ctx context.Context, resumeID, clubName string) (Record, error) {
	rec, err := s.Repo.Get(ctx, resumeID, clubName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Record{}, newError(KindNotFound, "analysis not found", err)
		}
		return Record{}, persistence("load analysis", err)
	}
	return rec, nil
}

func (s *Service) ListForResume(ctx context.Context, resumeID string) ([]Record, error) {
	if strings.TrimSpace(resumeID) == "" {
		return nil, newError(KindValidation, "resume id is required", nil)
	}
	records, err := s.Repo.ListForResume(ctx, resumeID)
	if err != nil {
		return nil, persistence("list analyses", err)
	}
	return records, nil
}

// ListRecent returns the newest analyses. Limit defaults to 10 and is capped at 100.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	records, err := s.Repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, persistence("list recent analyses", err)
	}
	return records, nil
}

func (s *Service) Delete(ctx context.Context, recordID string) (bool, error) {
	ok, err := s.Repo.Delete(ctx, recordID)
	if err != nil {
		return false, persistence("delete analysis", err)
	}
	return ok, nil
}

// DeleteForResume removes every analysis of the resume.
func (s *Service) DeleteForResume(ctx context.Context, resumeID string) (bool, error) {
	ok, err := s.Repo.DeleteForResume(ctx, resumeID)
	if err != nil {
		return false, persistence("delete analyses", err)
	}
	return ok, nil
}

func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	stats, err := s.Repo.Statistics(ctx)
	if err != nil {
		return Statistics{}, persistence("load analysis statistics", err)
	}
	return stats, nil
}

func (s *Service) ClubSummary(ctx context.Context, clubName string) (ClubSummary, error) {
	summary, err := s.Repo.ClubSummary(ctx, clubName)
	if err != nil {
		return ClubSummary{}, persistence("load club summary", err)
	}
	return summary, nil
}

func persistence(op string, err error) *Error {
	return newError(KindPersistence, "failed to "+op, err)
}

func userMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func applicationStrategy(ranked []Ranked) string {
	var high, medium, growth []string
	for _, r := range ranked {
		switch score := r.Result.MatchScore; {
		case score >= 80:
			high = append(high, r.ClubName)
		case score >= 60:
			medium = append(medium, r.ClubName)
		default:
			growth = append(growth, r.ClubName)
		}
	}

	var b strings.Builder
	b.WriteString("Application Strategy:\n")
	writeBucket(&b, "High Priority", high, "Apply early, these are excellent matches.")
	writeBucket(&b, "Medium Priority", medium, "Good options with some resume improvements.")
	writeBucket(&b, "Growth Opportunities", growth, "Consider for skill development after building experience.")
	return b.String()
}

func writeBucket(b *strings.Builder, label string, names []string, advice string) {
	if len(names) == 0 {
		return
	}
	shown := names
	if len(shown) > 3 {
		shown = shown[:3]
	}
	fmt.Fprintf(b, "%s (%d clubs): %s", label, len(names), strings.Join(shown, ", "))
	if extra := len(names) - len(shown); extra > 0 {
		fmt.Fprintf(b, " and %d more", extra)
	}
	fmt.Fprintf(b, " - %s\n", advice)
}
