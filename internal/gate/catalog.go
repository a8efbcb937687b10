package gate

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Indicator is one suspicious-intent pattern in the catalog. Catalogs are
// data, not code: the built-in set can be replaced or extended from a YAML
// file without touching the scoring logic.
type Indicator struct {
	ID       string `yaml:"id"`
	Category string `yaml:"category"`
	Pattern  string `yaml:"pattern"`
}

// Catalog holds the compiled suspicion indicators.
type Catalog struct {
	indicators []compiledIndicator
}

type compiledIndicator struct {
	id       string
	category string
	re       *regexp.Regexp
}

// defaultIndicators covers the known prompt-injection phrasings: override,
// disclosure, exfiltration, bypass, role elevation, execution, navigation.
var defaultIndicators = []Indicator{
	{ID: "instruction-override", Category: "override", Pattern: `ignore.{0,5}(previous|all|prior).{0,5}instructions`},
	{ID: "secret-disclosure", Category: "disclosure", Pattern: `(disclose|reveal|leak|expose|show|tell|give|send).{0,20}(system|secret|api|key|prompt|password|token)`},
	{ID: "data-exfiltration", Category: "exfiltration", Pattern: `send.{0,20}(data|secrets|credentials|information)`},
	{ID: "hidden-output", Category: "disclosure", Pattern: `(copy|print|display|output|echo).{0,10}(system|hidden|prompt|instructions)`},
	{ID: "security-bypass", Category: "bypass", Pattern: `(override|bypass|circumvent|disable).{0,10}(policy|guardrail|safety|security)`},
	{ID: "exfiltration-channel", Category: "exfiltration", Pattern: `(email|post|upload|transmit|exfiltrate).{0,20}(data|secrets|credentials|system|prompt|internal)`},
	{ID: "role-elevation", Category: "elevation", Pattern: `(act as|pretend to be|role.?play).{0,20}(admin|root|system|developer)`},
	{ID: "command-execution", Category: "execution", Pattern: `(execute|run|perform).{0,20}(command|script|code)`},
	{ID: "unsolicited-navigation", Category: "navigation", Pattern: `(navigate|redirect|visit).{0,20}(to|url|link|site)`},
	{ID: "external-fetch", Category: "navigation", Pattern: `(download|fetch|retrieve).{0,20}(from|url|link|external)`},
}

// DefaultCatalog returns the built-in suspicion catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultIndicators)
	if err != nil {
		// Built-in patterns are compile-checked by tests; this cannot
		// happen at runtime.
		panic(err)
	}
	return c
}

// NewCatalog compiles a catalog from indicator definitions. All patterns
// are matched case-insensitively.
func NewCatalog(indicators []Indicator) (*Catalog, error) {
	c := &Catalog{indicators: make([]compiledIndicator, 0, len(indicators))}
	for _, ind := range indicators {
		re, err := regexp.Compile(`(?i)` + ind.Pattern)
		if err != nil {
			return nil, fmt.Errorf("indicator %q: %w", ind.ID, err)
		}
		c.indicators = append(c.indicators, compiledIndicator{
			id:       ind.ID,
			category: ind.Category,
			re:       re,
		})
	}
	return c, nil
}

// LoadCatalog reads indicator definitions from a YAML file. A missing file
// is not an error: the built-in catalog is returned instead.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCatalog(), nil
		}
		return nil, err
	}

	var indicators []Indicator
	if err := yaml.Unmarshal(data, &indicators); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(indicators) == 0 {
		return DefaultCatalog(), nil
	}
	return NewCatalog(indicators)
}
