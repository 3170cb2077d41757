package analyses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResultPlainJSON(t *testing.T) {
	res, err := ParseResult(resultJSON(85))
	require.NoError(t, err)
	assert.Equal(t, 85, res.MatchScore)
	assert.Equal(t, []string{"Coffee chat with an officer"}, res.NetworkingStrategy)
	assert.Equal(t, "Strong fit.", res.StrategySummary)
}

func TestParseResultStripsFences(t *testing.T) {
	for name, raw := range map[string]string{
		"json fence":    "```json\n" + resultJSON(70) + "\n```",
		"bare fence":    "```\n" + resultJSON(70) + "\n```",
		"padded":        "\n\n  ```json" + resultJSON(70) + "```  \n",
		"trailing only": resultJSON(70) + "\n```",
	} {
		t.Run(name, func(t *testing.T) {
			res, err := ParseResult(raw)
			require.NoError(t, err)
			assert.Equal(t, 70, res.MatchScore)
		})
	}
}

func TestParseResultFallsBackOnMalformedOutput(t *testing.T) {
	for _, raw := range []string{
		"I'm sorry, I can't help with that.",
		"",
		"null",
		`["not", "an", "object"]`,
		`{"match_score": 80,`,
	} {
		res, err := ParseResult(raw)
		require.Error(t, err, raw)
		assert.Equal(t, 0, res.MatchScore)
		for _, list := range [][]string{
			res.NetworkingStrategy,
			res.CampusResources,
			res.ApplicationTimeline,
			res.PreparationSteps,
			res.Improvements,
		} {
			require.NotEmpty(t, list)
			assert.NotEmpty(t, list[0])
		}
		assert.NotEmpty(t, res.StrategySummary)
	}
}

func TestParseResultCoercesFieldShapes(t *testing.T) {
	raw := `{
		"networking_strategy": "Attend the info session",
		"campus_resources": ["Career Center", 42, null, "  "],
		"application_timeline": {"unexpected": "object"},
		"match_score": "85",
		"strategy_summary": 12
	}`
	res, err := ParseResult(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"Attend the info session"}, res.NetworkingStrategy)
	assert.Equal(t, []string{"Career Center", "42"}, res.CampusResources)
	assert.Equal(t, []string{}, res.ApplicationTimeline)
	assert.Equal(t, []string{}, res.PreparationSteps)
	assert.Equal(t, 85, res.MatchScore)
	assert.Equal(t, "12", res.StrategySummary)
}

func TestParseResultScoreVariants(t *testing.T) {
	cases := map[string]int{
		`{"match_score": 85.0}`:            85,
		`{"match_score": 72.6}`:            73,
		`{"match_score": "64%"}`:           64,
		`{"match_score": "high"}`:          0,
		`{"match_score": true}`:            0,
		`{}`:                               0,
		`{"match_score": 140}`:             140,
		`{"match_score": -5}`:              -5,
		`{"match_score": 1e20}`:            0,
		`{"match_score": -1e20}`:           0,
		`{"match_score": 9999999999999}`:   0,
		`{"match_score": "9999999999999"}`: 0,
		`{"match_score": 2147483647}`:      2147483647,
	}
	for raw, want := range cases {
		res, err := ParseResult(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, res.MatchScore, raw)
	}
}
