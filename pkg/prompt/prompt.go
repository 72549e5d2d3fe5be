// Package prompt builds the upstream model prompts for a naming request.
package prompt

import (
	"fmt"
	"strings"

	"github.com/pario-ai/namegen/pkg/models"
)

// NameCount is the number of candidates the model is asked for.
const NameCount = 3

var styleDescriptions = map[models.Style]string{
	models.StyleTraditional: "traditional and classical, drawing on established naming conventions and auspicious characters",
	models.StyleModern:      "modern and contemporary, easy to read and natural in everyday use",
	models.StyleElegant:     "elegant and refined, with graceful sound and sophisticated characters",
	models.StyleNature:      "inspired by nature, using imagery of mountains, water, plants and seasons",
	models.StyleLiterary:    "literary, with allusions to classical poetry and literature",
}

var genderDescriptions = map[models.Gender]string{
	models.GenderMale:    "a man",
	models.GenderFemale:  "a woman",
	models.GenderNeutral: "a person of any gender",
}

const systemPrompt = `You are an expert in Chinese naming culture, linguistics and classical literature.
You create authentic Chinese names for people from other cultures. Every name must use real,
commonly written characters, carry a positive meaning and be pleasant to pronounce.
Reply with JSON only, without commentary or Markdown.`

// Builder renders prompts. The zero value is ready to use.
type Builder struct{}

// StyleDescription returns the descriptive phrase for a style.
func StyleDescription(s models.Style) string {
	if d, ok := styleDescriptions[s]; ok {
		return d
	}
	return styleDescriptions[models.StyleModern]
}

// Build returns the system and user prompts for req. Output is deterministic
// for identical input.
func (Builder) Build(req models.NamingRequest) (system, user string) {
	gender, ok := genderDescriptions[req.Gender]
	if !ok {
		gender = genderDescriptions[models.GenderNeutral]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create %d Chinese names for %s whose given name is %q.\n", NameCount, gender, req.Seed)
	fmt.Fprintf(&b, "Style: %s.\n\n", StyleDescription(req.Style))

	b.WriteString("Requirements:\n")
	rules := []string{
		"Each name is a surname followed by a one or two character given name.",
		fmt.Sprintf("Where possible, echo the sound or meaning of %q.", req.Seed),
		"Explain the meaning of every character in the name.",
	}
	rules = append(rules, preferenceRules(req.Preferences)...)
	for i, r := range rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r)
	}

	b.WriteString("\nRespond with a JSON object of exactly this shape, containing exactly ")
	fmt.Fprintf(&b, "%d entries in \"names\":\n", NameCount)
	b.WriteString(`{"names":[{"name":"Chinese characters","romanization":"pinyin with tone marks",` +
		`"meaning":"meaning of the name","cultural_context":"optional cultural background",` +
		`"suitability":"optional score from 1 to 100"}]}`)
	b.WriteString("\n")

	return systemPrompt, b.String()
}

func preferenceRules(p *models.Preferences) []string {
	if p.Empty() {
		return nil
	}
	var rules []string
	if len(p.AvoidWords) > 0 {
		rules = append(rules, fmt.Sprintf("Avoid these words or characters: %s.", strings.Join(p.AvoidWords, ", ")))
	}
	if len(p.PreferredElements) > 0 {
		rules = append(rules, fmt.Sprintf("Prefer these elements: %s.", strings.Join(p.PreferredElements, ", ")))
	}
	if p.MeaningFocus != "" {
		rules = append(rules, fmt.Sprintf("Focus the meaning on: %s.", p.MeaningFocus))
	}
	return rules
}
