// Package sheet renders a character onto a fillable PDF character sheet by
// introspecting the template's form schema and matching each character value
// against known field name candidates.
package sheet

import (
	"fmt"
	"math"

	"github.com/dmhub/campaign-manager-api/internal/models"
)

// FieldKind distinguishes the two form field types the mapper fills.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldCheckbox
)

// Schema is a template's form fields by name.
type Schema map[string]FieldKind

// FieldValues is the resolved fill payload for one character against one
// schema. Only fields actually present in the schema appear.
type FieldValues struct {
	Text   map[string]string
	Checks map[string]bool
}

// Modifier is the 5E ability modifier, rounding down.
func Modifier(score int) int {
	return int(math.Floor(float64(score-10) / 2))
}

// FormatModifier renders a modifier with an explicit sign, "+0" included.
func FormatModifier(m int) string {
	if m >= 0 {
		return fmt.Sprintf("+%d", m)
	}
	return fmt.Sprintf("%d", m)
}

// SkillModifier adds the proficiency bonus to the ability modifier when the
// character is proficient in the skill.
func SkillModifier(abilityScore int, proficient bool, proficiencyBonus int) int {
	mod := Modifier(abilityScore)
	if proficient {
		mod += proficiencyBonus
	}
	return mod
}

// MapCharacter resolves every sheet value against the schema. For each value
// the first candidate name found in the schema with the expected field kind
// is filled; the rest are skipped. Values with no matching field are dropped
// silently, so a sparse or unknown template still yields a best effort sheet.
func MapCharacter(ch *models.Character, schema Schema) FieldValues {
	v := FieldValues{
		Text:   make(map[string]string),
		Checks: make(map[string]bool),
	}

	setText := func(value string, candidates ...string) {
		for _, name := range candidates {
			if kind, ok := schema[name]; ok && kind == FieldText {
				v.Text[name] = value
				return
			}
		}
	}
	setCheck := func(checked bool, candidates ...string) {
		for _, name := range candidates {
			if kind, ok := schema[name]; ok && kind == FieldCheckbox {
				v.Checks[name] = checked
				return
			}
		}
	}

	level := ch.Level
	if level == 0 {
		level = 1
	}

	setText(ch.CharacterName, "CharacterName", "charname", "name", "Character Name")
	setText(ch.Class, "Class", "class")
	setText(fmt.Sprintf("%s %d", ch.Class, level), "ClassLevel", "Class & Level", "classlevel")
	setText(fmt.Sprintf("%d", level), "Level", "level", "charlevel")
	setText(ch.Background, "Background", "background")
	setText(ch.PlayerName, "PlayerName", "playername", "player", "Player Name")
	setText(ch.Race, "Race", "race", "Race ", "race ")
	setText(ch.Alignment, "Alignment", "alignment")
	setText(fmt.Sprintf("%d", ch.ExperiencePoints), "ExperiencePoints", "experience", "xp")

	for _, a := range abilities {
		score := a.Score(ch)
		setText(fmt.Sprintf("%d", score), a.scoreCandidates()...)
		setText(FormatModifier(Modifier(score)), a.modifierCandidates()...)

		proficient := contains(ch.SavingThrowProficiencies, a.Abbr)
		setCheck(proficient, a.savingThrowCandidates()...)
	}

	for _, s := range skills {
		proficient := contains(ch.SkillProficiencies, s.Name)
		mod := SkillModifier(s.abilityScore(ch), proficient, ch.ProficiencyBonus)
		setText(FormatModifier(mod), s.modifierCandidates()...)
		setCheck(proficient, s.proficiencyCandidates()...)
	}

	armorClass := ch.ArmorClass
	if armorClass == 0 {
		armorClass = 10
	}
	setText(fmt.Sprintf("%d", armorClass), "ArmorClass", "AC", "armorclass", "ac")
	setText(FormatModifier(ch.Initiative), "Initiative", "initiative", "init")

	speed := ch.Speed
	if speed == 0 {
		speed = 30
	}
	setText(fmt.Sprintf("%d", speed), "Speed", "speed")

	maxHP := ch.MaxHitPoints
	if maxHP == 0 {
		maxHP = 8
	}
	currentHP := ch.CurrentHitPoints
	if currentHP == 0 {
		currentHP = maxHP
	}
	setText(fmt.Sprintf("%d", maxHP),
		"HitPointMaximum", "Hit Point Maximum", "Hit Point Maximum ", "HP Maximum", "MaxHP", "Max HP", "maxhp", "HP Max", "HP", "hp")
	setText(fmt.Sprintf("%d", currentHP),
		"CurrentHitPoints", "Current Hit Points", "Current Hit Points ", "CurrentHP", "Current HP", "currenthp", "HP Current")
	setText(fmt.Sprintf("%d", ch.TemporaryHitPoints), "TemporaryHitPoints", "TempHP", "temphp")

	hitDice := ch.HitDice
	if hitDice == "" {
		hitDice = "1d8"
	}
	setText(hitDice, "HitDice", "hitdice", "HD")

	profBonus := ch.ProficiencyBonus
	if profBonus == 0 {
		profBonus = 2
	}
	setText(FormatModifier(profBonus), "ProficiencyBonus", "proficiency", "prof")

	setText(ch.PersonalityTraits, "PersonalityTraits", "personality", "traits")
	setText(ch.Ideals, "Ideals", "ideals")
	setText(ch.Bonds, "Bonds", "bonds")
	setText(ch.Flaws, "Flaws", "flaws")
	setText(ch.CharacterAppearance, "CharacterAppearance", "Appearance", "appearance")
	setText(ch.AlliesAndOrganizations, "Allies", "allies", "AlliesAndOrganizations")
	setText(ch.AdditionalFeaturesAndTraits, "Features", "features", "FeaturesAndTraits", "AdditionalFeatures")
	setText(ch.Equipment, "Equipment", "equipment", "EquipmentAndInventory")
	setText(ch.Spells, "Spells", "spells", "SpellList", "Spellcasting")

	return v
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
