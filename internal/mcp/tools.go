package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/liftlog/internal/models"
)

// dateRange parses optional YYYY-MM-DD bounds. The end defaults to today and
// the start to defaultDays before the end.
func dateRange(startStr, endStr string, defaultDays int) (models.Date, models.Date, error) {
	var start, end models.Date
	var err error

	if endStr != "" {
		end, err = models.ParseDate(endStr)
		if err != nil {
			return models.Date{}, models.Date{}, err
		}
	} else {
		end = models.Today()
	}

	if startStr != "" {
		start, err = models.ParseDate(startStr)
		if err != nil {
			return models.Date{}, models.Date{}, err
		}
	} else {
		start = models.DateOf(end.AddDate(0, 0, -defaultDays))
	}

	return start, end, nil
}

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List logged workouts with every exercise's sets, reps (or duration/distance), weight and notes."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
	mcp.WithString("type", mcp.Description("Filter by workout type (e.g. 'Upper Push', 'Lower Body (Squat Focus)')")),
)

var toolGetPersonalBests = mcp.NewTool("get_personal_bests",
	mcp.WithDescription("Heaviest weight ever logged per exercise with the date it was first reached. Bodyweight, timed and distance exercises are excluded."),
)

var toolGetSummary = mcp.NewTool("get_summary",
	mcp.WithDescription("Training summary: total workouts, exercise entries, distinct exercises, most frequent workout type, last workout date and counts per type."),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("Date-ordered weight progression of one exercise. Entries without a numeric weight are counted in 'skipped'."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (e.g. 'Bench Press')")),
)

var toolGetCatalog = mcp.NewTool("get_catalog",
	mcp.WithDescription("Workout templates: each workout type with its exercises and prescribed sets and rep ranges."),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := dateRange(req.GetString("start", ""), req.GetString("end", ""), 30)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, start, end, req.GetString("type", ""))
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalBests(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bests, err := h.ds.PersonalBests(ctx)
	if err != nil {
		h.log.Error("mcp get_personal_bests", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if len(bests) == 0 {
		return mcp.NewToolResultText("No weighted exercises logged yet."), nil
	}

	result, err := mcp.NewToolResultJSON(bests)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := h.ds.Summary(ctx)
	if err != nil {
		h.log.Error("mcp get_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summary)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	series, err := h.ds.Series(ctx, exercise)
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(series)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getCatalog(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workouts, err := h.ds.Catalog(ctx)
	if err != nil {
		h.log.Error("mcp get_catalog", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
