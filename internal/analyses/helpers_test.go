package analyses

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/25eliu/ClubApp/internal/clubs"
)

// fakeLLM answers prompts with reply and counts calls.
type fakeLLM struct {
	mu           sync.Mutex
	reply        func(prompt string) (string, error)
	unconfigured bool
	prompts      []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.reply == nil {
		return resultJSON(50), nil
	}
	return f.reply(prompt)
}

func (f *fakeLLM) Configured() bool { return !f.unconfigured }

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func resultJSON(score int) string {
	return fmt.Sprintf(`{
  "networking_strategy": ["Coffee chat with an officer"],
  "campus_resources": ["Career Center"],
  "application_timeline": ["Apply in week 2"],
  "preparation_steps": ["Build a project"],
  "improvements": ["Quantify impact"],
  "match_score": %d,
  "strategy_summary": "Strong fit."
}`, score)
}

// scoreByClub replies with the score configured for the club named in the prompt.
func scoreByClub(scores map[string]int) func(string) (string, error) {
	return func(prompt string) (string, error) {
		for name, score := range scores {
			if strings.Contains(prompt, "- Club Name: "+name+"\n") {
				return resultJSON(score), nil
			}
		}
		return "", fmt.Errorf("no score for prompt")
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock { return &clock{now: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func sampleResult(score int) Result {
	return Result{
		NetworkingStrategy:  []string{"n"},
		CampusResources:     []string{"c"},
		ApplicationTimeline: []string{"a"},
		PreparationSteps:    []string{"p"},
		Improvements:        []string{"i"},
		MatchScore:          score,
		StrategySummary:     fmt.Sprintf("score %d", score),
	}
}

func club(name string) clubs.Club {
	return clubs.Club{Name: name, PrimaryFocus: name + " focus"}
}
