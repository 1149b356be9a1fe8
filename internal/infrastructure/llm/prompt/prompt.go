package prompt

import (
	"fmt"
	"strings"
)

// Mode selects which rendition of a prompt is sent to the model. Some
// prompts only carry a subset of renditions; missing ones fall back to
// plain text.
type Mode string

const (
	ModePlainText Mode = "plain_text"
	ModeJSON      Mode = "json"
	ModeXML       Mode = "xml"
	ModeMarkdown  Mode = "markdown"
	ModeYAML      Mode = "yaml"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.TrimSpace(raw)) {
	case ModePlainText, "":
		return ModePlainText, nil
	case ModeJSON:
		return ModeJSON, nil
	case ModeXML:
		return ModeXML, nil
	case ModeMarkdown:
		return ModeMarkdown, nil
	case ModeYAML:
		return ModeYAML, nil
	default:
		return "", fmt.Errorf("invalid prompt mode %q", raw)
	}
}

// Variants holds the per-mode renditions of a single prompt text.
type Variants struct {
	PlainText string
	JSON      string
	XML       string
	Markdown  string
	YAML      string
}

func (v Variants) forMode(mode Mode) string {
	var text string
	switch mode {
	case ModeJSON:
		text = v.JSON
	case ModeXML:
		text = v.XML
	case ModeMarkdown:
		text = v.Markdown
	case ModeYAML:
		text = v.YAML
	default:
		text = v.PlainText
	}
	if text == "" {
		text = v.PlainText
	}
	return text
}

// Prompt is a system/user pair.
type Prompt struct {
	System Variants
	User   Variants
}

// Get resolves the system and user texts for a mode.
func Get(p Prompt, mode Mode) (system, user string) {
	return p.System.forMode(mode), p.User.forMode(mode)
}

// Render substitutes {name} placeholders. Unknown placeholders are left
// in place.
func Render(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
