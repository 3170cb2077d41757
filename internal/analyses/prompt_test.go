package analyses

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/25eliu/ClubApp/internal/clubs"
)

func TestBuildPromptRendersEveryAttribute(t *testing.T) {
	c := clubs.Club{
		Name:                 "Launchpad",
		Acronym:              "LP",
		PrimaryFocus:         "Machine learning research",
		TypicalActivities:    "Research projects",
		TypicalRecruitment:   "Application and interviews",
		FreshmanFriendliness: "Medium",
		NotesForFreshmen:     "Take CS 189 first",
		HowToJoin:            "Apply in the fall",
		Website:              "https://launchpad.berkeley.edu",
		ApplicationLink:      "https://apply.example.com",
	}
	prompt := BuildPrompt("Built a transformer from scratch.", c)

	for _, want := range []string{
		"- Club Name: Launchpad\n",
		"- Acronym: LP\n",
		"- Primary Focus: Machine learning research\n",
		"- Typical Activities: Research projects\n",
		"- Recruitment Process: Application and interviews\n",
		"- Freshman Friendliness: Medium\n",
		"- Special Notes: Take CS 189 first\n",
		"- How to Join: Apply in the fall\n",
		"- Website: https://launchpad.berkeley.edu\n",
		"- Application Link: https://apply.example.com\n",
		"Built a transformer from scratch.",
		`"match_score"`,
		`"strategy_summary"`,
	} {
		assert.Contains(t, prompt, want)
	}
	assert.NotContains(t, prompt, "{{")
}

func TestBuildPromptUsesPlaceholderForMissingAttributes(t *testing.T) {
	prompt := BuildPrompt("resume", clubs.Club{Name: "Codebase"})

	assert.Contains(t, prompt, "- Website: "+clubs.NotSpecified+"\n")
	assert.Contains(t, prompt, "- Special Notes: "+clubs.NotSpecified+"\n")

	unnamed := BuildPrompt("resume", clubs.Club{})
	assert.Contains(t, unnamed, "- Club Name: "+clubs.UnknownClub+"\n")
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	c := club("Blueprint")
	assert.Equal(t, BuildPrompt("same text", c), BuildPrompt("same text", c))
}

func TestBuildPromptDoesNotExpandPlaceholdersInResume(t *testing.T) {
	prompt := BuildPrompt("my notes mention {{club_name}} literally", club("Blueprint"))
	assert.True(t, strings.Contains(prompt, "my notes mention {{club_name}} literally"))
}
