package conformance

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// DangerousAction is one entry in the dangerous-intent catalog. Like the
// gate's suspicion catalog, the table is data: replaceable from YAML
// without touching the checking logic.
type DangerousAction struct {
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description"`
}

type compiledAction struct {
	re          *regexp.Regexp
	description string
}

var defaultDangerousActions = []DangerousAction{
	{Pattern: `\b(email|send|transmit|post|upload)\b`, Description: "Communication/exfiltration attempt"},
	{Pattern: `\b(print|display|output|echo)\b.*\b(system|prompt|instruction)`, Description: "System prompt disclosure"},
	{Pattern: `\b(reveal|disclose|show|tell)\b.*\b(system|secret|key|token)`, Description: "Secret disclosure"},
	{Pattern: `\b(navigate|redirect|visit|goto)\b.*(http|www|\.com|\.net)`, Description: "External navigation"},
	{Pattern: `\b(click|follow)\b.*\b(link|url|href)`, Description: "Link following"},
	{Pattern: `\b(execute|run|perform|invoke)\b.*\b(command|script|code)`, Description: "Code execution"},
	{Pattern: `\b(download|fetch|retrieve)\b.*\b(from|url|external)`, Description: "External resource access"},
	{Pattern: `\b(act as|pretend|role.?play)\b.*\b(admin|root|system)`, Description: "Role elevation"},
	{Pattern: `\b(ignore|override|bypass)\b.*\b(instruction|rule|policy)`, Description: "Security bypass"},
}

var dangerousActions = mustCompileActions(defaultDangerousActions)

func mustCompileActions(actions []DangerousAction) []compiledAction {
	compiled, err := compileActions(actions)
	if err != nil {
		panic(err)
	}
	return compiled
}

func compileActions(actions []DangerousAction) ([]compiledAction, error) {
	compiled := make([]compiledAction, 0, len(actions))
	for _, a := range actions {
		re, err := regexp.Compile(`(?i)` + a.Pattern)
		if err != nil {
			return nil, fmt.Errorf("dangerous-action pattern %q: %w", a.Pattern, err)
		}
		compiled = append(compiled, compiledAction{re: re, description: a.Description})
	}
	return compiled, nil
}

// LoadDangerousActions replaces the process-wide dangerous-action catalog
// from a YAML file. A missing file leaves the built-in catalog in place.
func LoadDangerousActions(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var actions []DangerousAction
	if err := yaml.Unmarshal(data, &actions); err != nil {
		return fmt.Errorf("parse dangerous-action catalog %s: %w", path, err)
	}
	if len(actions) == 0 {
		return nil
	}

	compiled, err := compileActions(actions)
	if err != nil {
		return err
	}
	dangerousActions = compiled
	return nil
}
