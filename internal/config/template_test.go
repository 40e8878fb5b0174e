package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"papersum/internal/config"
)

func writeTemplate(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "template.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write template file: %v", err)
	}

	return path
}

func TestLoadTemplate(t *testing.T) {
	path := writeTemplate(t, `{
		"system_prompt": "You summarize papers.",
		"prompt_template": "For {audience} in {length}: {text}"
	}`)

	template, err := config.LoadTemplate(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if template.SystemPrompt != "You summarize papers." {
		t.Fatalf("unexpected system prompt: %q", template.SystemPrompt)
	}
	if template.PromptTemplate != "For {audience} in {length}: {text}" {
		t.Fatalf("unexpected prompt template: %q", template.PromptTemplate)
	}
}

func TestLoadTemplateMissingFile(t *testing.T) {
	if _, err := config.LoadTemplate(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadTemplateInvalidJSON(t *testing.T) {
	path := writeTemplate(t, "not json")

	if _, err := config.LoadTemplate(path); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestLoadTemplateMissingFields(t *testing.T) {
	for name, content := range map[string]string{
		"no system prompt":   `{"prompt_template": "{text}"}`,
		"no prompt template": `{"system_prompt": "You summarize papers."}`,
		"blank fields":       `{"system_prompt": " ", "prompt_template": " "}`,
	} {
		path := writeTemplate(t, content)

		if _, err := config.LoadTemplate(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
