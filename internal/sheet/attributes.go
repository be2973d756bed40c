package sheet

import (
	"strings"

	"github.com/dmhub/campaign-manager-api/internal/models"
)

// The fillable sheet templates in circulation disagree on form field names,
// down to trailing spaces and casing. Each logical value therefore carries an
// ordered candidate list; the first name present in the template's schema
// wins. Oddball entries like "DEXmod " and "CHamod" are real field names
// observed in the TWC 5E sheet.

type ability struct {
	Name  string
	Abbr  string
	Score func(ch *models.Character) int
}

var abilities = []ability{
	{"Strength", "STR", func(ch *models.Character) int { return ch.Strength }},
	{"Dexterity", "DEX", func(ch *models.Character) int { return ch.Dexterity }},
	{"Constitution", "CON", func(ch *models.Character) int { return ch.Constitution }},
	{"Intelligence", "INT", func(ch *models.Character) int { return ch.Intelligence }},
	{"Wisdom", "WIS", func(ch *models.Character) int { return ch.Wisdom }},
	{"Charisma", "CHA", func(ch *models.Character) int { return ch.Charisma }},
}

func (a ability) scoreCandidates() []string {
	lower := strings.ToLower(a.Name)
	return []string{
		a.Name + "Score",
		a.Name,
		lower + "score",
		lower,
		a.Abbr,
		strings.ToLower(a.Abbr),
		a.Name + " ",
		a.Name + "Score ",
	}
}

func (a ability) modifierCandidates() []string {
	lower := strings.ToLower(a.Name)
	var out []string
	switch a.Abbr {
	case "DEX":
		out = append(out, "DEXmod", "DEXMod", "DEXmod ")
	case "CHA":
		out = append(out, "CHamod")
	}
	return append(out,
		a.Name+"Mod",
		a.Name+"Modifier",
		a.Name+" Mod",
		a.Name+" Modifier",
		lower+"mod",
		lower+"modifier",
		a.Abbr+"Mod",
		a.Abbr+"mod",
		a.Abbr+" Mod",
	)
}

func (a ability) savingThrowCandidates() []string {
	return []string{
		a.Name + "ST",
		a.Name + "Save",
		strings.ToLower(a.Name) + "save",
		a.Abbr + "ST",
		a.Abbr + "Save",
	}
}

type skill struct {
	Name    string
	Ability string
	// FieldNames are base names; modifier and proficiency candidates are
	// derived from them.
	FieldNames []string
}

var skills = []skill{
	{"Acrobatics", "DEX", []string{"Acrobatics", "acrobatics", "Acrobatics ", "acrobatics "}},
	{"Animal Handling", "WIS", []string{"AnimalHandling", "animalhandling", "Animal Handling", "Animal Handling ", "animal handling", "AnimalHandling ", "Animal"}},
	{"Arcana", "INT", []string{"Arcana", "arcana", "Arcana ", "arcana "}},
	{"Athletics", "STR", []string{"Athletics", "athletics", "Athletics ", "athletics "}},
	{"Deception", "CHA", []string{"Deception", "deception", "Deception ", "deception "}},
	{"History", "INT", []string{"History", "history", "History ", "history "}},
	{"Insight", "WIS", []string{"Insight", "insight", "Insight ", "insight "}},
	{"Intimidation", "CHA", []string{"Intimidation", "intimidation", "Intimidation ", "intimidation "}},
	{"Investigation", "INT", []string{"Investigation", "investigation", "Investigation ", "investigation "}},
	{"Medicine", "WIS", []string{"Medicine", "medicine", "Medicine ", "medicine "}},
	{"Nature", "INT", []string{"Nature", "nature", "Nature ", "nature "}},
	{"Perception", "WIS", []string{"Perception", "perception", "Perception ", "perception "}},
	{"Performance", "CHA", []string{"Performance", "performance", "Performance ", "performance "}},
	{"Persuasion", "CHA", []string{"Persuasion", "persuasion", "Persuasion ", "persuasion "}},
	{"Religion", "INT", []string{"Religion", "religion", "Religion ", "religion "}},
	{"Sleight of Hand", "DEX", []string{"SleightofHand", "Sleight of Hand", "Sleight of Hand ", "sleightofhand", "SleightofHand ", "sleight of hand"}},
	{"Stealth", "DEX", []string{"Stealth", "stealth", "Stealth ", "stealth "}},
	{"Survival", "WIS", []string{"Survival", "survival", "Survival ", "survival "}},
}

func (s skill) abilityScore(ch *models.Character) int {
	switch s.Ability {
	case "STR":
		return ch.Strength
	case "DEX":
		return ch.Dexterity
	case "CON":
		return ch.Constitution
	case "INT":
		return ch.Intelligence
	case "WIS":
		return ch.Wisdom
	case "CHA":
		return ch.Charisma
	}
	return 10
}

func (s skill) modifierCandidates() []string {
	var out []string
	for _, base := range s.FieldNames {
		out = append(out,
			base,
			base+"Mod",
			base+" Mod",
			base+"Modifier",
			base+" Modifier",
		)
	}
	return out
}

func (s skill) proficiencyCandidates() []string {
	var out []string
	for _, base := range s.FieldNames {
		out = append(out,
			base+"Prof",
			base+"Check",
			base+" Prof",
			base+" Check",
		)
	}
	return out
}
