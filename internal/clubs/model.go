package clubs

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Column names as they appear in the club directory spreadsheet.
const (
	FieldName            = "Club Name"
	FieldAcronym         = "Acronym"
	FieldPrimaryFocus    = "Primary Focus"
	FieldActivities      = "Typical Activities"
	FieldRecruitment     = "Typical Recruitment"
	FieldFriendliness    = "Freshman Friendliness (General Vibe)"
	FieldNotes           = "Notes for EECS Freshmen"
	FieldHowToJoin       = "How to Join/Learn More"
	FieldWebsite         = "Website"
	FieldApplicationLink = "ApplicationLink"
)

const (
	NotSpecified = "Not specified"
	UnknownClub  = "Unknown Club"
)

// Club is a student organization from the directory. Empty fields mean the
// directory had no value for that attribute.
type Club struct {
	Name                 string `mapstructure:"Club Name" db:"name" json:"name"`
	Acronym              string `mapstructure:"Acronym" db:"acronym" json:"acronym"`
	PrimaryFocus         string `mapstructure:"Primary Focus" db:"primary_focus" json:"primaryFocus"`
	TypicalActivities    string `mapstructure:"Typical Activities" db:"typical_activities" json:"typicalActivities"`
	TypicalRecruitment   string `mapstructure:"Typical Recruitment" db:"typical_recruitment" json:"typicalRecruitment"`
	FreshmanFriendliness string `mapstructure:"Freshman Friendliness (General Vibe)" db:"freshman_friendliness" json:"freshmanFriendliness"`
	NotesForFreshmen     string `mapstructure:"Notes for EECS Freshmen" db:"notes_for_freshmen" json:"notesForFreshmen"`
	HowToJoin            string `mapstructure:"How to Join/Learn More" db:"how_to_join" json:"howToJoin"`
	Website              string `mapstructure:"Website" db:"website" json:"website"`
	ApplicationLink      string `mapstructure:"ApplicationLink" db:"application_link" json:"applicationLink"`
}

// Stats summarizes the directory.
type Stats struct {
	Total                int `json:"totalClubs"`
	HighFreshmanFriendly int `json:"highFreshmanFriendly"`
}

// Resolved returns a copy with every missing attribute replaced by its display default.
func (c Club) Resolved() Club {
	out := c
	if strings.TrimSpace(out.Name) == "" {
		out.Name = UnknownClub
	}
	for _, f := range []*string{
		&out.Acronym,
		&out.PrimaryFocus,
		&out.TypicalActivities,
		&out.TypicalRecruitment,
		&out.FreshmanFriendliness,
		&out.NotesForFreshmen,
		&out.HowToJoin,
		&out.Website,
		&out.ApplicationLink,
	} {
		if strings.TrimSpace(*f) == "" {
			*f = NotSpecified
		}
	}
	return out
}

// IsHighFreshmanFriendly reports whether the vibe column mentions "high".
func (c Club) IsHighFreshmanFriendly() bool {
	return strings.Contains(strings.ToLower(c.FreshmanFriendliness), "high")
}

var aliases = map[string]string{
	"name":                                 FieldName,
	"club":                                 FieldName,
	"club_name":                            FieldName,
	"club name":                            FieldName,
	"acronym":                              FieldAcronym,
	"primary_focus":                        FieldPrimaryFocus,
	"primary focus":                        FieldPrimaryFocus,
	"typical_activities":                   FieldActivities,
	"typical activities":                   FieldActivities,
	"typical_recruitment":                  FieldRecruitment,
	"typical recruitment":                  FieldRecruitment,
	"freshman_friendliness":                FieldFriendliness,
	"freshman friendliness":                FieldFriendliness,
	"freshman friendliness (general vibe)": FieldFriendliness,
	"notes_for_freshmen":                   FieldNotes,
	"notes for eecs freshmen":              FieldNotes,
	"how_to_join":                          FieldHowToJoin,
	"how to join/learn more":               FieldHowToJoin,
	"website":                              FieldWebsite,
	"application_link":                     FieldApplicationLink,
	"applicationlink":                      FieldApplicationLink,
	"application link":                     FieldApplicationLink,
}

// FromRecord decodes a loosely keyed row (spreadsheet headers or snake_case
// keys) into a Club. Values of any scalar type are stringified.
func FromRecord(record map[string]any) (Club, error) {
	// A column spelled exactly like the spreadsheet header beats any alias of
	// it; among aliases the first in sorted key order wins.
	normalized := make(map[string]any, len(record))
	exact := make(map[string]bool, len(record))
	for _, k := range slices.Sorted(maps.Keys(record)) {
		v := record[k]
		if v == nil {
			continue
		}
		key := strings.TrimSpace(k)
		isExact := true
		if canonical, ok := aliases[strings.ToLower(key)]; ok {
			isExact = key == canonical
			key = canonical
		}
		if _, seen := normalized[key]; seen && (exact[key] || !isExact) {
			continue
		}
		normalized[key] = v
		exact[key] = isExact
	}

	var club Club
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &club,
	})
	if err != nil {
		return Club{}, err
	}
	if err := dec.Decode(normalized); err != nil {
		return Club{}, fmt.Errorf("decode club record: %w", err)
	}
	club.trim()
	return club, nil
}

func (c *Club) trim() {
	for _, f := range []*string{
		&c.Name,
		&c.Acronym,
		&c.PrimaryFocus,
		&c.TypicalActivities,
		&c.TypicalRecruitment,
		&c.FreshmanFriendliness,
		&c.NotesForFreshmen,
		&c.HowToJoin,
		&c.Website,
		&c.ApplicationLink,
	} {
		*f = strings.TrimSpace(*f)
	}
}
