package menu

import (
	"fmt"
	"math/rand"
	"testing"

	"mitremenu/internal/catalog"
)

func buildCatalog(t *testing.T, ids ...string) catalog.Catalog {
	t.Helper()
	tests := make([]catalog.TestCase, len(ids))
	for i, id := range ids {
		tests[i] = catalog.TestCase{
			ID:             id,
			Title:          "Title " + id,
			TestName:       "variant " + id,
			DetectionRules: []string{"Execution Prevention", "- Malicious File Detected"},
			Command:        "Invoke-AtomicTest " + id,
		}
	}
	cat, err := catalog.New("test", tests...)
	if err != nil {
		t.Fatalf("catalog.New returned error: %v", err)
	}
	return cat
}

func press(s State, cat catalog.Catalog, keys ...Key) State {
	for _, k := range keys {
		s, _ = Step(s, k, cat)
	}
	return s
}

func TestNewStartsOnMenuAtFirstEntry(t *testing.T) {
	s := New()
	if s.View != MenuList || s.Selected != 0 || s.Active != nil {
		t.Fatalf("unexpected start state: %+v", s)
	}
}

func TestDownWrapsScenario(t *testing.T) {
	cat := buildCatalog(t, "T1027.007", "T1036.003")
	s := New()

	s, eff := Step(s, KeyDown, cat)
	if s.View != MenuList || s.Selected != 1 {
		t.Fatalf("expected (MenuList, 1), got (%s, %d)", s.View, s.Selected)
	}
	if eff.Kind != EffectRender {
		t.Fatalf("expected render effect, got %v", eff.Kind)
	}

	s, _ = Step(s, KeyDown, cat)
	if s.View != MenuList || s.Selected != 0 {
		t.Fatalf("expected wrap to (MenuList, 0), got (%s, %d)", s.View, s.Selected)
	}
}

func TestWrapAroundForEveryCatalogSize(t *testing.T) {
	for n := 1; n <= 7; n++ {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("T%04d", i)
		}
		cat := buildCatalog(t, ids...)

		s := press(New(), cat, KeyUp)
		if s.Selected != n-1 {
			t.Fatalf("n=%d: UP from 0 should land on %d, got %d", n, n-1, s.Selected)
		}
		s = press(s, cat, KeyDown)
		if s.Selected != 0 {
			t.Fatalf("n=%d: DOWN from %d should land on 0, got %d", n, n-1, s.Selected)
		}
	}
}

func TestSelectedIndexStaysInRange(t *testing.T) {
	cat := buildCatalog(t, "A", "B", "C", "D", "E")
	rng := rand.New(rand.NewSource(42))
	s := New()
	for i := 0; i < 500; i++ {
		k := KeyUp
		if rng.Intn(2) == 0 {
			k = KeyDown
		}
		s, _ = Step(s, k, cat)
		if s.Selected < 0 || s.Selected >= cat.Len() {
			t.Fatalf("step %d: selected index %d out of [0,%d)", i, s.Selected, cat.Len())
		}
	}
}

func TestSelectThenBackScenario(t *testing.T) {
	cat := buildCatalog(t, "T1027.007", "T1036.003")
	s := New()

	s, _ = Step(s, KeySelect, cat)
	if s.View != TestDetail {
		t.Fatalf("expected TestDetail, got %s", s.View)
	}
	if s.Active == nil || s.Active.ID != "T1027.007" {
		t.Fatalf("expected active test catalog[0], got %+v", s.Active)
	}

	s, eff := Step(s, KeyBack, cat)
	if s.View != MenuList || s.Selected != 0 {
		t.Fatalf("expected (MenuList, 0), got (%s, %d)", s.View, s.Selected)
	}
	if eff.Kind != EffectRender {
		t.Fatalf("expected render effect, got %v", eff.Kind)
	}
}

func TestBackPreservesSelection(t *testing.T) {
	cat := buildCatalog(t, "A", "B", "C")
	for start := 0; start < cat.Len(); start++ {
		s := New()
		for i := 0; i < start; i++ {
			s, _ = Step(s, KeyDown, cat)
		}
		s = press(s, cat, KeySelect, KeyBack)
		if s.View != MenuList || s.Selected != start {
			t.Fatalf("expected (MenuList, %d) after BACK, got (%s, %d)", start, s.View, s.Selected)
		}
	}
}

func TestActiveTestIsCapturedNotReferenced(t *testing.T) {
	cat := buildCatalog(t, "A", "B", "C")
	s := press(New(), cat, KeyDown, KeySelect)
	captured := s.Active
	if captured == nil || captured.ID != "B" {
		t.Fatalf("expected B captured, got %+v", captured)
	}
	if want := cat.At(1); captured.Command != want.Command || captured.Title != want.Title {
		t.Fatalf("expected captured test to equal catalog[1], got %+v", captured)
	}

	s = press(s, cat, KeyBack, KeyDown, KeyDown)
	if s.Selected != 0 {
		t.Fatalf("expected selection to wrap to 0, got %d", s.Selected)
	}
	if captured.ID != "B" {
		t.Fatalf("captured test changed after navigation: %+v", captured)
	}
}

func TestSelectInDetailRequestsExecution(t *testing.T) {
	cat := buildCatalog(t, "T1027.007", "T1036.003")
	s := press(New(), cat, KeyDown, KeySelect)

	s, eff := Step(s, KeySelect, cat)
	if s.View != Executing {
		t.Fatalf("expected Executing, got %s", s.View)
	}
	if eff.Kind != EffectExecute || eff.Command != "Invoke-AtomicTest T1036.003" {
		t.Fatalf("expected execute effect with the active command, got %+v", eff)
	}

	s = Finish(s)
	if s.View != MenuList || s.Selected != 1 {
		t.Fatalf("expected (MenuList, 1) after execution, got (%s, %d)", s.View, s.Selected)
	}
}

func TestExecutingIgnoresKeys(t *testing.T) {
	cat := buildCatalog(t, "A", "B")
	s := press(New(), cat, KeySelect, KeySelect)
	for _, k := range []Key{KeyUp, KeyDown, KeySelect, KeyBack, KeyQuit, KeyOther} {
		next, eff := Step(s, k, cat)
		if next.View != Executing || eff.Kind != EffectNone {
			t.Fatalf("key %s changed executing state: %+v %+v", k, next, eff)
		}
	}
}

func TestQuitOnlyFromMenu(t *testing.T) {
	cat := buildCatalog(t, "A")

	s, eff := Step(New(), KeyQuit, cat)
	if s.View != Terminated || eff.Kind != EffectQuit {
		t.Fatalf("expected Terminated with quit effect, got %s %v", s.View, eff.Kind)
	}

	detail := press(New(), cat, KeySelect)
	next, eff := Step(detail, KeyQuit, cat)
	if next.View != TestDetail || eff.Kind != EffectNone {
		t.Fatalf("expected QUIT to be ignored in detail view, got %s %v", next.View, eff.Kind)
	}
}

func TestTerminatedIsTerminal(t *testing.T) {
	cat := buildCatalog(t, "A", "B")
	s := press(New(), cat, KeyQuit)
	for _, k := range []Key{KeyUp, KeyDown, KeySelect, KeyBack, KeyQuit, KeyOther} {
		next, eff := Step(s, k, cat)
		if next.View != Terminated || eff.Kind != EffectNone {
			t.Fatalf("key %s left the terminated state: %+v", k, next)
		}
	}
}

func TestUnrecognizedKeysAreIgnored(t *testing.T) {
	cat := buildCatalog(t, "A", "B")
	cases := []State{
		New(),
		press(New(), cat, KeyDown),
		press(New(), cat, KeySelect),
	}
	for _, s := range cases {
		next, eff := Step(s, KeyOther, cat)
		if next.View != s.View || next.Selected != s.Selected || next.Active != s.Active {
			t.Fatalf("KeyOther changed state %+v -> %+v", s, next)
		}
		if eff.Kind != EffectNone {
			t.Fatalf("KeyOther requested effect %v", eff.Kind)
		}
	}

	// BACK has no meaning on the menu itself.
	next, eff := Step(New(), KeyBack, cat)
	if next.View != MenuList || eff.Kind != EffectNone {
		t.Fatalf("expected BACK ignored on menu, got %s %v", next.View, eff.Kind)
	}
}

func TestFinishOutsideExecutionIsNoop(t *testing.T) {
	cat := buildCatalog(t, "A")
	detail := press(New(), cat, KeySelect)
	if got := Finish(detail); got.View != TestDetail {
		t.Fatalf("expected Finish to leave detail view alone, got %s", got.View)
	}
}

func TestEmptyCatalogNeverTransitions(t *testing.T) {
	var empty catalog.Catalog
	for _, k := range []Key{KeyUp, KeyDown, KeySelect, KeyQuit} {
		next, eff := Step(New(), k, empty)
		if next != New() || eff.Kind != EffectNone {
			t.Fatalf("key %s transitioned on an empty catalog: %+v", k, next)
		}
	}
}
