package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meltforce/liftlog/internal/catalog"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/progress"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, v any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, from, to models.Date, workoutType string) ([]models.WorkoutRecord, error) {
	params := url.Values{}
	if !from.IsZero() {
		params.Set("from", from.String())
	}
	if !to.IsZero() {
		params.Set("to", to.String())
	}
	if workoutType != "" {
		params.Set("type", workoutType)
	}

	var records []models.WorkoutRecord
	if err := c.get(ctx, "/api/v1/workouts", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) PersonalBests(ctx context.Context) ([]progress.PersonalBest, error) {
	var bests []progress.PersonalBest
	if err := c.get(ctx, "/api/v1/progress/bests", nil, &bests); err != nil {
		return nil, err
	}
	return bests, nil
}

func (c *HTTPClient) Summary(ctx context.Context) (progress.Summary, error) {
	var s progress.Summary
	if err := c.get(ctx, "/api/v1/progress/summary", nil, &s); err != nil {
		return progress.Summary{}, err
	}
	return s, nil
}

func (c *HTTPClient) Series(ctx context.Context, exercise string) (progress.Series, error) {
	params := url.Values{}
	params.Set("exercise", exercise)

	var s progress.Series
	if err := c.get(ctx, "/api/v1/progress/series", params, &s); err != nil {
		return progress.Series{}, err
	}
	return s, nil
}

func (c *HTTPClient) Catalog(ctx context.Context) ([]catalog.Workout, error) {
	var workouts []catalog.Workout
	if err := c.get(ctx, "/api/v1/catalog", nil, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}
