package analyses

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errNotObject = errors.New("response is not a JSON object")

// FallbackResult is returned when a model response cannot be decoded.
func FallbackResult() Result {
	return Result{
		NetworkingStrategy:  []string{"Unable to parse strategy - please try again"},
		CampusResources:     []string{"Analysis parsing failed"},
		ApplicationTimeline: []string{"Please retry the analysis"},
		PreparationSteps:    []string{"Try again with a different approach"},
		Improvements:        []string{"Analysis parsing failed"},
		MatchScore:          0,
		StrategySummary:     "Analysis parsing failed due to JSON format issues",
	}
}

// ParseResult decodes a model response, tolerating a Markdown code fence.
// When the response is not a JSON object it returns FallbackResult and the
// decode error. Fields of the wrong shape are coerced where unambiguous and
// left empty otherwise.
func ParseResult(raw string) (Result, error) {
	body := stripFence(raw)

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return FallbackResult(), fmt.Errorf("decode model response: %w", err)
	}
	if fields == nil {
		return FallbackResult(), errNotObject
	}

	return Result{
		NetworkingStrategy:  toStrings(fields["networking_strategy"]),
		CampusResources:     toStrings(fields["campus_resources"]),
		ApplicationTimeline: toStrings(fields["application_timeline"]),
		PreparationSteps:    toStrings(fields["preparation_steps"]),
		Improvements:        toStrings(fields["improvements"]),
		MatchScore:          toInt(fields["match_score"]),
		StrategySummary:     toString(fields["strategy_summary"]),
	}, nil
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func toStrings(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func toInt(v any) int {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%"))
	default:
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Round(f)
	// Scores are stored in an INTEGER column.
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}
