package analyses

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var recordColumns = []string{
	"id",
	"resume_id",
	"club_name",
	"networking_strategy",
	"campus_resources",
	"application_timeline",
	"preparation_steps",
	"improvements",
	"match_score",
	"strategy_summary",
	"analysis_timestamp",
}

// textList is a []string stored as a JSONB array.
type textList []string

func (l textList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (l *textList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = textList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan text list: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan text list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

type recordRow struct {
	ID                  string    `db:"id"`
	ResumeID            string    `db:"resume_id"`
	ClubName            string    `db:"club_name"`
	NetworkingStrategy  textList  `db:"networking_strategy"`
	CampusResources     textList  `db:"campus_resources"`
	ApplicationTimeline textList  `db:"application_timeline"`
	PreparationSteps    textList  `db:"preparation_steps"`
	Improvements        textList  `db:"improvements"`
	MatchScore          int       `db:"match_score"`
	StrategySummary     string    `db:"strategy_summary"`
	AnalysisTimestamp   time.Time `db:"analysis_timestamp"`
}

func (row recordRow) toRecord() Record {
	return Record{
		ID:         row.ID,
		ResumeID:   row.ResumeID,
		ClubName:   row.ClubName,
		AnalyzedAt: row.AnalysisTimestamp.UTC(),
		Result: Result{
			NetworkingStrategy:  []string(row.NetworkingStrategy),
			CampusResources:     []string(row.CampusResources),
			ApplicationTimeline: []string(row.ApplicationTimeline),
			PreparationSteps:    []string(row.PreparationSteps),
			Improvements:        []string(row.Improvements),
			MatchScore:          row.MatchScore,
			StrategySummary:     row.StrategySummary,
		},
	}
}

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
	// Now is the clock used for timestamps and age windows. Nil uses time.Now.
	Now func() time.Time
}

func (r *PGRepo) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

// Save upserts the result for the pair. The ID of an existing record is kept.
func (r *PGRepo) Save(ctx context.Context, resumeID, clubName string, result Result) (string, error) {
	const query = `
INSERT INTO resume_analyses (
    id,
    resume_id,
    club_name,
    networking_strategy,
    campus_resources,
    application_timeline,
    preparation_steps,
    improvements,
    match_score,
    strategy_summary,
    analysis_timestamp
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (resume_id, club_name) DO UPDATE SET
    networking_strategy = EXCLUDED.networking_strategy,
    campus_resources = EXCLUDED.campus_resources,
    application_timeline = EXCLUDED.application_timeline,
    preparation_steps = EXCLUDED.preparation_steps,
    improvements = EXCLUDED.improvements,
    match_score = EXCLUDED.match_score,
    strategy_summary = EXCLUDED.strategy_summary,
    analysis_timestamp = EXCLUDED.analysis_timestamp
RETURNING id`

	var id string
	err := r.DB.QueryRowContext(ctx, query,
		uuid.NewString(),
		resumeID,
		clubName,
		textList(result.NetworkingStrategy),
		textList(result.CampusResources),
		textList(result.ApplicationTimeline),
		textList(result.PreparationSteps),
		textList(result.Improvements),
		result.MatchScore,
		result.StrategySummary,
		r.now(),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert analysis: %w", err)
	}
	return id, nil
}

func (r *PGRepo) Get(ctx context.Context, resumeID, clubName string) (Record, error) {
	query, args, err := psql.Select(recordColumns...).
		From("resume_analyses").
		Where(sq.Eq{"resume_id": resumeID, "club_name": clubName}).
		Limit(1).
		ToSql()
	if err != nil {
		return Record{}, err
	}
	var row recordRow
	if err := sqlscan.Get(ctx, r.DB, &row, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return row.toRecord(), nil
}

func (r *PGRepo) ListForResume(ctx context.Context, resumeID string) ([]Record, error) {
	return r.selectRecords(ctx, psql.Select(recordColumns...).
		From("resume_analyses").
		Where(sq.Eq{"resume_id": resumeID}).
		OrderBy("analysis_timestamp DESC", "club_name ASC"))
}

func (r *PGRepo) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	builder := psql.Select(recordColumns...).
		From("resume_analyses").
		OrderBy("analysis_timestamp DESC", "club_name ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	return r.selectRecords(ctx, builder)
}

func (r *PGRepo) Delete(ctx context.Context, recordID string) (bool, error) {
	n, err := r.exec(ctx, psql.Delete("resume_analyses").Where(sq.Eq{"id": recordID}))
	return n > 0, err
}

func (r *PGRepo) DeleteForResume(ctx context.Context, resumeID string) (bool, error) {
	n, err := r.exec(ctx, psql.Delete("resume_analyses").Where(sq.Eq{"resume_id": resumeID}))
	return n > 0, err
}

func (r *PGRepo) CleanupOlderThan(ctx context.Context, days int) (int, error) {
	cutoff := cutoffFor(r.now(), days)
	n, err := r.exec(ctx, psql.Delete("resume_analyses").Where(sq.Lt{"analysis_timestamp": cutoff}))
	return int(n), err
}

func (r *PGRepo) Statistics(ctx context.Context) (Statistics, error) {
	const totalsQuery = `
SELECT
    COUNT(*),
    COALESCE(AVG(match_score), 0)::float8,
    COUNT(DISTINCT resume_id),
    COUNT(DISTINCT club_name),
    COUNT(*) FILTER (WHERE analysis_timestamp >= $1)
FROM resume_analyses`

	stats := Statistics{TopClubs: []ClubScore{}}
	err := r.DB.QueryRowContext(ctx, totalsQuery, r.now().Add(-recentWindow)).Scan(
		&stats.TotalCount,
		&stats.AverageScore,
		&stats.UniqueResumes,
		&stats.UniqueClubs,
		&stats.RecentCount,
	)
	if err != nil {
		return Statistics{}, fmt.Errorf("analysis totals: %w", err)
	}

	query, args, err := psql.Select(
		"club_name",
		"AVG(match_score)::float8 AS average_score",
		"COUNT(*) AS analysis_count",
	).
		From("resume_analyses").
		GroupBy("club_name").
		OrderBy("average_score DESC", "club_name ASC").
		Limit(topClubsLimit).
		ToSql()
	if err != nil {
		return Statistics{}, err
	}
	if err := sqlscan.Select(ctx, r.DB, &stats.TopClubs, query, args...); err != nil {
		return Statistics{}, fmt.Errorf("top clubs: %w", err)
	}
	return stats, nil
}

func (r *PGRepo) ClubSummary(ctx context.Context, clubName string) (ClubSummary, error) {
	const query = `
SELECT
    COUNT(*),
    COALESCE(AVG(match_score), 0)::float8,
    COUNT(*) FILTER (WHERE analysis_timestamp >= $2),
    COALESCE(MAX(match_score), 0),
    COALESCE(MIN(match_score), 0)
FROM resume_analyses
WHERE club_name = $1`

	summary := ClubSummary{ClubName: clubName}
	err := r.DB.QueryRowContext(ctx, query, clubName, r.now().Add(-clubRecentWindow)).Scan(
		&summary.Count,
		&summary.AverageScore,
		&summary.RecentCount,
		&summary.HighestScore,
		&summary.LowestScore,
	)
	if err != nil {
		return ClubSummary{}, fmt.Errorf("club summary: %w", err)
	}
	return summary, nil
}

func (r *PGRepo) selectRecords(ctx context.Context, builder sq.SelectBuilder) ([]Record, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []recordRow
	if err := sqlscan.Select(ctx, r.DB, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toRecord())
	}
	return out, nil
}

func (r *PGRepo) exec(ctx context.Context, builder sq.DeleteBuilder) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ Repo = (*PGRepo)(nil)
