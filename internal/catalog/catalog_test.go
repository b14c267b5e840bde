package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/meltforce/liftlog/internal/models"
)

// TestDefaultTypes verifies the built-in catalog keeps its declared order.
func TestDefaultTypes(t *testing.T) {
	want := []string{
		"Upper Push",
		"Lower Body (Squat Focus)",
		"Upper Pull",
		"Lower Body (Posterior Chain Focus)",
		"Optional Conditioning",
	}
	got := Default().Types()
	if len(got) != len(want) {
		t.Fatalf("types = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("types[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestLookup verifies exercises come back in template order and unknown
// types report not found.
func TestLookup(t *testing.T) {
	c := Default()
	exercises, ok := c.Lookup("Upper Push")
	if !ok {
		t.Fatal("Upper Push not found")
	}
	if exercises[0].Name != "Bench Press" {
		t.Errorf("first exercise = %q, want Bench Press", exercises[0].Name)
	}
	if got := exercises[0].Label(); got != "Bench Press 4 x 4-6" {
		t.Errorf("label = %q, want %q", got, "Bench Press 4 x 4-6")
	}

	if _, ok := c.Lookup("Leg Day"); ok {
		t.Error("expected unknown type to be missing")
	}
}

// TestTemplateEntry verifies duration templates produce timed entries.
func TestTemplateEntry(t *testing.T) {
	tmpl, ok := Default().Template("Lower Body (Posterior Chain Focus)", "Farmer's Carry")
	if !ok {
		t.Fatal("Farmer's Carry not found")
	}
	e := tmpl.Entry()
	if e.Kind != models.KindTimed || e.Duration != "30-40s" {
		t.Errorf("entry = %+v, want timed 30-40s", e)
	}
	if e.WeightLabel() != "Bodyweight" {
		t.Errorf("weight label = %q, want Bodyweight", e.WeightLabel())
	}
}

// TestCustomRejectsEmptyName verifies a blank custom exercise name is refused.
func TestCustomRejectsEmptyName(t *testing.T) {
	_, _, err := Custom("   ", 3, 10, 20, "")
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("err = %v, want ErrEmptyName", err)
	}
}

// TestCustom verifies a custom exercise becomes a trimmed standard entry.
func TestCustom(t *testing.T) {
	name, entry, err := Custom(" Cable Fly ", 3, 12, 15, " slow eccentric ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Cable Fly" {
		t.Errorf("name = %q, want Cable Fly", name)
	}
	want := models.Standard(3, 12, 15).WithNotes("slow eccentric")
	if entry != want {
		t.Errorf("entry = %+v, want %+v", entry, want)
	}

	if _, _, err := Custom("Cable Fly", 3, 12, 400, ""); err == nil {
		t.Error("expected error for weight above the limit")
	}
}

// TestLoadOverride verifies a catalog file replaces the built-in templates.
func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
workouts:
  - type: Full Body
    exercises:
      - {name: Squat, sets: 5, reps: 5, weight: 100}
      - {name: Run, sets: 1, distance: 5km}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if types := c.Types(); len(types) != 1 || types[0] != "Full Body" {
		t.Fatalf("types = %v, want [Full Body]", types)
	}
	run, ok := c.Template("Full Body", "Run")
	if !ok {
		t.Fatal("Run not found")
	}
	if run.Entry().Kind != models.KindDistance {
		t.Errorf("kind = %q, want distance", run.Entry().Kind)
	}
}

// TestParseRejectsDuplicates verifies duplicate workout types are an error.
func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte(`
workouts:
  - type: A
    exercises: [{name: X, sets: 1, reps: 1}]
  - type: A
    exercises: [{name: Y, sets: 1, reps: 1}]
`))
	if err == nil {
		t.Fatal("expected error for duplicate type")
	}
}
