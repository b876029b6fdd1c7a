package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	appErrors "mitremenu/internal/errors"
)

func TestDefaultCatalogLoads(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	if cat.Len() != 9 {
		t.Fatalf("expected 9 built-in tests, got %d", cat.Len())
	}
	if got := cat.At(0).ID; got != "T1027.007" {
		t.Fatalf("expected first test T1027.007, got %s", got)
	}
	if got := cat.At(1).ID; got != "T1036.003" {
		t.Fatalf("expected second test T1036.003, got %s", got)
	}
	if cat.Source() != DefaultSource {
		t.Fatalf("expected source %q, got %q", DefaultSource, cat.Source())
	}

	injection, _, ok := cat.Find("t1055")
	if !ok {
		t.Fatal("expected case-insensitive lookup of T1055")
	}
	if len(injection.DetectionRules) != 12 {
		t.Fatalf("expected 12 rule entries for T1055, got %d", len(injection.DetectionRules))
	}
	if injection.Command != "Invoke-AtomicTest T1055 -TestNumbers 4" {
		t.Fatalf("unexpected command %q", injection.Command)
	}

	native, _, _ := cat.Find("T1106")
	if !strings.Contains(native.Description, "\n- Use syscall") {
		t.Fatalf("expected embedded newlines preserved in description, got %q", native.Description)
	}
}

func TestRuleLinesKeepPositionalGrouping(t *testing.T) {
	tc := TestCase{DetectionRules: []string{
		"Exfiltration Prevention",
		"- Malicious File Detected",
		"Ransomware Prevention",
		"  - Injected Thread",
	}}
	lines := tc.RuleLines()
	want := []RuleLine{
		{Text: "Exfiltration Prevention", Header: true},
		{Text: "- Malicious File Detected"},
		{Text: "Ransomware Prevention", Header: true},
		{Text: "  - Injected Thread"},
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %+v, got %+v", i, want[i], lines[i])
		}
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	cat, err := New("test", TestCase{
		ID: "T1", Title: "One", TestName: "one", Command: "echo 1",
		DetectionRules: []string{"Group", "- Rule"},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	first := cat.At(0)
	first.DetectionRules[0] = "mutated"
	first.Title = "mutated"

	all := cat.Tests()
	all[0].DetectionRules[1] = "mutated"

	again := cat.At(0)
	if again.Title != "One" || again.DetectionRules[0] != "Group" || again.DetectionRules[1] != "- Rule" {
		t.Fatalf("catalog entry changed through a returned copy: %+v", again)
	}
}

func TestNewDoesNotAliasCallerSlices(t *testing.T) {
	rules := []string{"Group"}
	cat, err := New("test", TestCase{ID: "T1", Title: "t", TestName: "n", Command: "c", DetectionRules: rules})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	rules[0] = "mutated"
	if got := cat.At(0).DetectionRules[0]; got != "Group" {
		t.Fatalf("expected catalog to own its rules, got %q", got)
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{name: "emptyDocument", doc: "", wantMsg: "catalog is empty"},
		{name: "noTests", doc: "tests: []\n", wantMsg: "no tests"},
		{name: "malformedYAML", doc: "tests: [\n", wantMsg: "malformed"},
		{
			name: "unknownField",
			doc: `tests:
  - id: T1
    title: t
    test: n
    description: d
    rules: []
    command: c
    severity: high
`,
			wantMsg: "malformed",
		},
		{
			name: "missingRules",
			doc: `tests:
  - id: T1
    title: t
    test: n
    description: d
    command: c
`,
			wantMsg: "missing field(s): rules",
		},
		{
			name: "missingSeveralFields",
			doc: `tests:
  - id: T1
    rules: []
`,
			wantMsg: "missing field(s): title, test, description, command",
		},
		{
			name: "blankCommand",
			doc: `tests:
  - id: T1
    title: t
    test: n
    description: d
    rules: []
    command: "  "
`,
			wantMsg: "empty field(s): command",
		},
		{
			name: "duplicateID",
			doc: `tests:
  - {id: T1, title: a, test: a, description: a, rules: [], command: a}
  - {id: T1, title: b, test: b, description: b, rules: [], command: b}
`,
			wantMsg: `duplicate id "T1"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc), "fixture.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !appErrors.IsCode(err, appErrors.CodeCatalogInvalid) {
				t.Fatalf("expected %s code, got %s (%v)", appErrors.CodeCatalogInvalid, appErrors.CodeOf(err), err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("expected message containing %q, got %q", tc.wantMsg, err.Error())
			}
			if !strings.HasPrefix(err.Error(), "fixture.yaml: ") {
				t.Fatalf("expected source prefix, got %q", err.Error())
			}
		})
	}
}

func TestParseAcceptsEmptyRulesList(t *testing.T) {
	cat, err := Parse([]byte(`tests:
  - id: T9
    title: Quiet
    test: nothing fires
    description: ""
    rules: []
    command: echo quiet
`), "fixture.yaml")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := len(cat.At(0).DetectionRules); got != 0 {
		t.Fatalf("expected no rules, got %d", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `tests:
  - id: T1
    title: One
    test: first
    description: d
    rules: ["Group", "- Rule"]
    command: echo one
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cat.Len() != 1 || cat.Source() != path {
		t.Fatalf("unexpected catalog: len=%d source=%q", cat.Len(), cat.Source())
	}
}

func TestLoadMissingFileIsConfigurationError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing catalog file")
	}
	if !appErrors.IsCode(err, appErrors.CodeConfigurationError) {
		t.Fatalf("expected configuration error, got %s", appErrors.CodeOf(err))
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	cat, err := Load("  ")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cat.Source() != DefaultSource {
		t.Fatalf("expected built-in catalog, got %q", cat.Source())
	}
}
