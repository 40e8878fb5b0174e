package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// PromptTemplate is the static pair of strings that shapes every completion
// request. It is loaded once at startup and passed by value; nothing mutates it.
type PromptTemplate struct {
	SystemPrompt   string `json:"system_prompt"`
	PromptTemplate string `json:"prompt_template"`
}

// LoadTemplate reads the template file. Any failure here is fatal to startup:
// the service cannot build a single prompt without both fields.
func LoadTemplate(path string) (PromptTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PromptTemplate{}, fmt.Errorf("read template file: %w", err)
	}

	var t PromptTemplate
	if err := json.Unmarshal(data, &t); err != nil {
		return PromptTemplate{}, fmt.Errorf("parse template file: %w", err)
	}

	if strings.TrimSpace(t.SystemPrompt) == "" {
		return PromptTemplate{}, fmt.Errorf("template file %s: system_prompt is missing", path)
	}
	if strings.TrimSpace(t.PromptTemplate) == "" {
		return PromptTemplate{}, fmt.Errorf("template file %s: prompt_template is missing", path)
	}

	return t, nil
}
