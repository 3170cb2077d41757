package analyses

import (
	_ "embed"
	"strings"

	"github.com/25eliu/ClubApp/internal/clubs"
)

//go:embed prompts/club_strategy.txt
var clubStrategyTemplate string

// BuildPrompt renders the strategy prompt for a resume and club. Missing club
// attributes render as "Not specified".
func BuildPrompt(resumeText string, club clubs.Club) string {
	c := club.Resolved()
	r := strings.NewReplacer(
		"{{club_name}}", c.Name,
		"{{acronym}}", c.Acronym,
		"{{primary_focus}}", c.PrimaryFocus,
		"{{typical_activities}}", c.TypicalActivities,
		"{{typical_recruitment}}", c.TypicalRecruitment,
		"{{freshman_friendliness}}", c.FreshmanFriendliness,
		"{{notes_for_freshmen}}", c.NotesForFreshmen,
		"{{how_to_join}}", c.HowToJoin,
		"{{website}}", c.Website,
		"{{application_link}}", c.ApplicationLink,
		"{{resume_text}}", strings.TrimSpace(resumeText),
	)
	return r.Replace(clubStrategyTemplate)
}
