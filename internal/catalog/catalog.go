// Package catalog holds the adversary-emulation tests offered by the console.
//
// A Catalog is built once at startup and never changes afterwards: there is no
// mutation API, and accessors hand out copies so callers cannot alter entries
// through shared slices.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	appErrors "mitremenu/internal/errors"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// DefaultSource names the embedded catalog in logs and errors.
const DefaultSource = "built-in catalog"

// TestCase is one emulation test for a MITRE ATT&CK technique.
type TestCase struct {
	ID          string
	Title       string
	TestName    string
	Description string
	// DetectionRules is positional: an entry without a leading dash starts a
	// group, dash entries belong to the group above them.
	DetectionRules []string
	Command        string
}

// RuleLine is one detection rule entry classified for display.
type RuleLine struct {
	Text   string
	Header bool
}

// RuleLines classifies DetectionRules in their original order.
func (t TestCase) RuleLines() []RuleLine {
	lines := make([]RuleLine, 0, len(t.DetectionRules))
	for _, entry := range t.DetectionRules {
		lines = append(lines, RuleLine{Text: entry, Header: !isRuleName(entry)})
	}
	return lines
}

func isRuleName(entry string) bool {
	return strings.HasPrefix(strings.TrimSpace(entry), "-")
}

func (t TestCase) clone() TestCase {
	t.DetectionRules = append([]string(nil), t.DetectionRules...)
	return t
}

// Catalog is an ordered, read-only list of tests.
type Catalog struct {
	tests  []TestCase
	source string
}

// New validates tests and builds a catalog from them.
func New(source string, tests ...TestCase) (Catalog, error) {
	if len(tests) == 0 {
		return Catalog{}, invalid(source, "catalog has no tests", nil)
	}
	seen := make(map[string]int, len(tests))
	owned := make([]TestCase, 0, len(tests))
	for i, tc := range tests {
		if err := validate(tc); err != nil {
			return Catalog{}, invalid(source, fmt.Sprintf("test #%d: %v", i+1, err), err)
		}
		if prev, ok := seen[tc.ID]; ok {
			return Catalog{}, invalid(source, fmt.Sprintf("test #%d: duplicate id %q (first used by test #%d)", i+1, tc.ID, prev+1), nil)
		}
		seen[tc.ID] = i
		owned = append(owned, tc.clone())
	}
	return Catalog{tests: owned, source: source}, nil
}

// Len reports the number of tests.
func (c Catalog) Len() int {
	return len(c.tests)
}

// At returns a copy of the test at index i. It panics when i is out of range,
// like a slice index would.
func (c Catalog) At(i int) TestCase {
	return c.tests[i].clone()
}

// Tests returns a copy of all tests in catalog order.
func (c Catalog) Tests() []TestCase {
	out := make([]TestCase, len(c.tests))
	for i, tc := range c.tests {
		out[i] = tc.clone()
	}
	return out
}

// Find looks a test up by technique id (case-insensitive).
func (c Catalog) Find(id string) (TestCase, int, bool) {
	want := strings.TrimSpace(id)
	for i, tc := range c.tests {
		if strings.EqualFold(tc.ID, want) {
			return tc.clone(), i, true
		}
	}
	return TestCase{}, -1, false
}

// Source describes where the catalog was loaded from.
func (c Catalog) Source() string {
	return c.source
}

// Default parses the catalog embedded in the binary.
func Default() (Catalog, error) {
	return Parse(defaultCatalog, DefaultSource)
}

// Load reads a catalog file. An empty path selects the embedded catalog.
func Load(path string) (Catalog, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Default()
	}
	//nolint:gosec // G304: The catalog path is chosen by the operator
	data, err := os.ReadFile(trimmed)
	if err != nil {
		return Catalog{}, appErrors.New(appErrors.CodeConfigurationError, fmt.Sprintf("read catalog %s: %v", trimmed, err), err)
	}
	return Parse(data, trimmed)
}

type fileFormat struct {
	Tests []record `yaml:"tests"`
}

// record mirrors one YAML entry; pointers tell a missing field from an empty one.
type record struct {
	ID          *string   `yaml:"id"`
	Title       *string   `yaml:"title"`
	Test        *string   `yaml:"test"`
	Description *string   `yaml:"description"`
	Rules       *[]string `yaml:"rules"`
	Command     *string   `yaml:"command"`
}

// Parse decodes a YAML catalog document.
func Parse(data []byte, source string) (Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc fileFormat
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Catalog{}, invalid(source, "catalog is empty", err)
		}
		return Catalog{}, invalid(source, fmt.Sprintf("malformed catalog: %v", err), err)
	}

	tests := make([]TestCase, 0, len(doc.Tests))
	for i, rec := range doc.Tests {
		tc, err := rec.toTestCase()
		if err != nil {
			return Catalog{}, invalid(source, fmt.Sprintf("test #%d: %v", i+1, err), err)
		}
		tests = append(tests, tc)
	}
	return New(source, tests...)
}

func (r record) toTestCase() (TestCase, error) {
	var missing []string
	str := func(name string, v *string) string {
		if v == nil {
			missing = append(missing, name)
			return ""
		}
		return *v
	}
	tc := TestCase{
		ID:          str("id", r.ID),
		Title:       str("title", r.Title),
		TestName:    str("test", r.Test),
		Description: str("description", r.Description),
		Command:     str("command", r.Command),
	}
	if r.Rules == nil {
		missing = append(missing, "rules")
	} else {
		tc.DetectionRules = *r.Rules
	}
	if len(missing) > 0 {
		return TestCase{}, fmt.Errorf("missing field(s): %s", strings.Join(missing, ", "))
	}
	return tc, nil
}

func validate(tc TestCase) error {
	var empty []string
	if strings.TrimSpace(tc.ID) == "" {
		empty = append(empty, "id")
	}
	if strings.TrimSpace(tc.Title) == "" {
		empty = append(empty, "title")
	}
	if strings.TrimSpace(tc.TestName) == "" {
		empty = append(empty, "test")
	}
	if strings.TrimSpace(tc.Command) == "" {
		empty = append(empty, "command")
	}
	if len(empty) > 0 {
		return fmt.Errorf("empty field(s): %s", strings.Join(empty, ", "))
	}
	return nil
}

func invalid(source, msg string, err error) error {
	if source != "" {
		msg = source + ": " + msg
	}
	return appErrors.New(appErrors.CodeCatalogInvalid, msg, err)
}
