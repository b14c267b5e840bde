package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/liftlog/internal/catalog"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStoreSource(t *testing.T, records ...models.WorkoutRecord) StoreSource {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workouts.json")
	st := storage.New(storage.NewFileBackend(path, storage.LayoutList), storage.LayoutList, testLogger())
	for _, r := range records {
		if err := st.Add(context.Background(), r); err != nil {
			t.Fatal(err)
		}
	}
	return StoreSource{Store: st, Templates: catalog.Default()}
}

func benchRecord(date models.Date, weight float64) models.WorkoutRecord {
	r := models.NewRecord(date, "Upper Push")
	r.SetExercise("Bench Press", models.Standard(4, 6, weight))
	return r
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return text.Text
}

// TestDateRange verifies date range defaults and parsing.
func TestDateRange(t *testing.T) {
	start, end, err := dateRange("", "", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days := end.Sub(start.Time).Hours() / 24; days != 30 {
		t.Errorf("default range = %v days, want 30", days)
	}

	start, end, err = dateRange("2024-01-01", "2024-01-31", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.String() != "2024-01-01" || end.String() != "2024-01-31" {
		t.Errorf("range = %v..%v, want 2024-01-01..2024-01-31", start, end)
	}

	if _, _, err := dateRange("not-a-date", "", 30); err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestListWorkoutsTool verifies the tool filters by date range.
func TestListWorkoutsTool(t *testing.T) {
	ds := newStoreSource(t,
		benchRecord(models.NewDate(2024, 1, 5), 60),
		benchRecord(models.NewDate(2024, 3, 5), 70),
	)
	h := &handlers{ds: ds, log: testLogger()}

	res, err := h.listWorkouts(context.Background(), callTool("list_workouts", map[string]any{
		"start": "2024-01-01",
		"end":   "2024-01-31",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var workouts []models.WorkoutRecord
	if err := json.Unmarshal([]byte(resultText(t, res)), &workouts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(workouts) != 1 || workouts[0].Exercises["Bench Press"].Weight != 60 {
		t.Errorf("workouts = %+v, want the January record", workouts)
	}
}

// TestListWorkoutsBadDate verifies invalid dates are reported as tool errors.
func TestListWorkoutsBadDate(t *testing.T) {
	h := &handlers{ds: newStoreSource(t), log: testLogger()}
	res, err := h.listWorkouts(context.Background(), callTool("list_workouts", map[string]any{"start": "yesterday"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected tool error")
	}
}

// TestPersonalBestsTool verifies bests are returned and an empty log says so.
func TestPersonalBestsTool(t *testing.T) {
	empty := &handlers{ds: newStoreSource(t), log: testLogger()}
	res, err := empty.getPersonalBests(context.Background(), callTool("get_personal_bests", nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, res), "No weighted exercises") {
		t.Errorf("empty result = %q", resultText(t, res))
	}

	h := &handlers{ds: newStoreSource(t,
		benchRecord(models.NewDate(2024, 1, 5), 50),
		benchRecord(models.NewDate(2024, 1, 8), 60),
		benchRecord(models.NewDate(2024, 1, 12), 55),
	), log: testLogger()}
	res, err = h.getPersonalBests(context.Background(), callTool("get_personal_bests", nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, res), `"weight":60`) {
		t.Errorf("bests = %s, want weight 60", resultText(t, res))
	}
}

// TestExerciseProgressRequiresName verifies the exercise argument is required.
func TestExerciseProgressRequiresName(t *testing.T) {
	h := &handlers{ds: newStoreSource(t), log: testLogger()}
	res, err := h.getExerciseProgress(context.Background(), callTool("get_exercise_progress", nil))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing exercise")
	}
}

// TestRecentWorkoutsResource verifies the resource returns JSON text.
func TestRecentWorkoutsResource(t *testing.T) {
	h := &handlers{ds: newStoreSource(t, benchRecord(models.Today(), 80)), log: testLogger()}

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "liftlog://recent_workouts"
	contents, err := h.recentWorkouts(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content type = %T, want TextResourceContents", contents[0])
	}
	if !strings.Contains(text.Text, "Bench Press") {
		t.Errorf("resource text = %s, want the bench record", text.Text)
	}
}
