package analyses

import (
	"time"

	"github.com/25eliu/ClubApp/internal/clubs"
)

// CacheValidity is how long a stored analysis is served without recomputing.
const CacheValidity = 24 * time.Hour

// DefaultCleanupDays is the age used by Cleanup when none is given.
const DefaultCleanupDays = 30

// Result is the structured strategy produced for one resume and club.
type Result struct {
	NetworkingStrategy  []string `json:"networking_strategy"`
	CampusResources     []string `json:"campus_resources"`
	ApplicationTimeline []string `json:"application_timeline"`
	PreparationSteps    []string `json:"preparation_steps"`
	Improvements        []string `json:"improvements"`
	MatchScore          int      `json:"match_score"`
	StrategySummary     string   `json:"strategy_summary"`
}

// Record is a persisted Result. At most one exists per (ResumeID, ClubName).
type Record struct {
	ID         string    `json:"id"`
	ResumeID   string    `json:"resume_id"`
	ClubName   string    `json:"club_name"`
	AnalyzedAt time.Time `json:"analysis_timestamp"`
	Result
}

// ClubScore is one entry of the top clubs ranking.
type ClubScore struct {
	ClubName      string  `db:"club_name" json:"club_name"`
	AverageScore  float64 `db:"average_score" json:"average_score"`
	AnalysisCount int     `db:"analysis_count" json:"analysis_count"`
}

// Statistics aggregates every stored analysis.
type Statistics struct {
	TotalCount    int         `json:"total_analyses"`
	AverageScore  float64     `json:"average_match_score"`
	UniqueResumes int         `json:"unique_resumes"`
	UniqueClubs   int         `json:"unique_clubs"`
	RecentCount   int         `json:"recent_analyses"`
	TopClubs      []ClubScore `json:"top_clubs"`
}

// ClubSummary aggregates the analyses of a single club.
type ClubSummary struct {
	ClubName     string  `json:"club_name"`
	Count        int     `json:"count"`
	AverageScore float64 `json:"average_score"`
	RecentCount  int     `json:"recent_count"`
	HighestScore int     `json:"highest_score"`
	LowestScore  int     `json:"lowest_score"`
}

// Summary aggregates the full analysis history of one resume.
type Summary struct {
	Count        int        `json:"count"`
	AverageScore float64    `json:"average_score"`
	TopClub      string     `json:"top_club,omitempty"`
	TopScore     int        `json:"top_score"`
	LastUpdated  *time.Time `json:"last_updated,omitempty"`
}

// Ranked pairs a club with the result computed for it.
type Ranked struct {
	ClubName string `json:"club_name"`
	Result   Result `json:"result"`
}

// Failure describes a club that could not be analyzed in a batch.
type Failure struct {
	ClubName string `json:"club_name"`
	Kind     Kind   `json:"kind"`
	Message  string `json:"message"`
}

// Batch is the outcome of analyzing one resume against many clubs.
type Batch struct {
	Ranked       []Ranked  `json:"analyses"`
	BestMatch    *Ranked   `json:"top_match"`
	AverageScore float64   `json:"average_score"`
	Count        int       `json:"total_analyzed"`
	Failures     []Failure `json:"failures,omitempty"`
	Strategy     string    `json:"strategy,omitempty"`
}

// AnalyzeRequest identifies one resume and club to analyze.
type AnalyzeRequest struct {
	ResumeID     string
	ResumeText   string
	Club         clubs.Club
	ForceRefresh bool
}
