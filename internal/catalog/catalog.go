// Package catalog holds the workout templates offered by the Add Workout page.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/meltforce/liftlog/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// ErrEmptyName is returned when a custom exercise has no name.
var ErrEmptyName = errors.New("exercise name is required")

// Template is the default prescription for one exercise.
type Template struct {
	Name     string  `yaml:"name" json:"name"`
	Sets     int     `yaml:"sets" json:"sets"`
	RepRange string  `yaml:"rep_range,omitempty" json:"rep_range,omitempty"`
	Reps     int     `yaml:"reps,omitempty" json:"reps,omitempty"`
	Weight   float64 `yaml:"weight,omitempty" json:"weight,omitempty"`
	Duration string  `yaml:"duration,omitempty" json:"duration,omitempty"`
	Distance string  `yaml:"distance,omitempty" json:"distance,omitempty"`
}

// Label renders the template the way it is shown in the exercise picker,
// e.g. "Bench Press 4 x 4-6".
func (t Template) Label() string {
	scheme := t.RepRange
	switch {
	case t.Duration != "":
		scheme = t.Duration
	case t.Distance != "":
		scheme = t.Distance
	case scheme == "" && t.Reps > 0:
		scheme = fmt.Sprint(t.Reps)
	}
	if scheme == "" {
		return t.Name
	}
	return fmt.Sprintf("%s %d x %s", t.Name, t.Sets, scheme)
}

// Entry returns the form defaults for this template.
func (t Template) Entry() models.ExerciseEntry {
	switch {
	case t.Duration != "":
		return models.Timed(t.Sets, t.Duration)
	case t.Distance != "":
		return models.Distance(t.Sets, t.Distance)
	default:
		return models.Standard(t.Sets, t.Reps, t.Weight)
	}
}

// Workout is one workout type with its ordered exercises.
type Workout struct {
	Type      string     `yaml:"type" json:"type"`
	Exercises []Template `yaml:"exercises" json:"exercises"`
}

// Catalog is an ordered, read-only set of workout templates.
type Catalog struct {
	workouts []Workout
	byType   map[string]int
}

type catalogFile struct {
	Workouts []Workout `yaml:"workouts"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Workouts) == 0 {
		return nil, fmt.Errorf("no workouts defined")
	}

	c := &Catalog{byType: make(map[string]int, len(f.Workouts))}
	for i, w := range f.Workouts {
		if w.Type == "" {
			return nil, fmt.Errorf("workout %d has no type", i+1)
		}
		if _, dup := c.byType[w.Type]; dup {
			return nil, fmt.Errorf("duplicate workout type %q", w.Type)
		}
		for _, t := range w.Exercises {
			if err := t.Entry().Validate(); err != nil {
				return nil, fmt.Errorf("%s / %s: %w", w.Type, t.Name, err)
			}
		}
		c.byType[w.Type] = i
		c.workouts = append(c.workouts, w)
	}
	return c, nil
}

// Types returns the workout types in catalog order.
func (c *Catalog) Types() []string {
	types := make([]string, len(c.workouts))
	for i, w := range c.workouts {
		types[i] = w.Type
	}
	return types
}

// Lookup returns the exercises of a workout type.
func (c *Catalog) Lookup(workoutType string) ([]Template, bool) {
	i, ok := c.byType[workoutType]
	if !ok {
		return nil, false
	}
	out := make([]Template, len(c.workouts[i].Exercises))
	copy(out, c.workouts[i].Exercises)
	return out, true
}

// Template finds one exercise template within a workout type.
func (c *Catalog) Template(workoutType, name string) (Template, bool) {
	templates, ok := c.Lookup(workoutType)
	if !ok {
		return Template{}, false
	}
	for _, t := range templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Workouts returns a copy of every workout in catalog order.
func (c *Catalog) Workouts() []Workout {
	out := make([]Workout, len(c.workouts))
	for i, w := range c.workouts {
		out[i] = Workout{Type: w.Type, Exercises: append([]Template(nil), w.Exercises...)}
	}
	return out
}

// Custom builds a user-defined standard exercise. The name must not be blank.
func Custom(name string, sets, reps int, weight float64, notes string) (string, models.ExerciseEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.ExerciseEntry{}, ErrEmptyName
	}
	entry := models.Standard(sets, reps, weight).WithNotes(strings.TrimSpace(notes))
	if err := entry.Validate(); err != nil {
		return "", models.ExerciseEntry{}, err
	}
	return name, entry, nil
}
