package prompt

import (
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		raw     string
		want    Mode
		wantErr bool
	}{
		{"plain_text", ModePlainText, false},
		{"", ModePlainText, false},
		{"json", ModeJSON, false},
		{"markdown", ModeMarkdown, false},
		{"yaml", ModeYAML, false},
		{"xml", ModeXML, false},
		{"html", "", true},
	}
	for _, tc := range cases {
		got, err := ParseMode(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q) expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q) error = %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestGetFallsBackToPlainText(t *testing.T) {
	system, user := Get(Rewrite, ModeMarkdown)
	wantSystem, wantUser := Get(Rewrite, ModePlainText)
	if system != wantSystem || user != wantUser {
		t.Fatalf("expected markdown rewrite prompt to fall back to plain text")
	}
}

func TestGetSelectsModeVariant(t *testing.T) {
	system, _ := Get(Translate, ModeJSON)
	if !strings.Contains(system, `"Persona"`) {
		t.Fatalf("expected json variant, got %q", system[:40])
	}
}

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	out := Render("Input: {query} to {tgt_lang}", map[string]string{
		"query":    "xin chào",
		"tgt_lang": "English",
	})
	if out != "Input: xin chào to English" {
		t.Fatalf("Render() = %q", out)
	}
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	out := Render("{query} {missing}", map[string]string{"query": "q"})
	if out != "q {missing}" {
		t.Fatalf("Render() = %q", out)
	}
}
