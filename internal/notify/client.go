// Package notify forwards saved workouts to an external webhook and keeps a
// log of every delivery attempt.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// DefaultURL is used when the webhook is enabled without a URL.
const DefaultURL = "http://localhost:5678/webhook/workout"

// DefaultTimeout bounds a single webhook call.
const DefaultTimeout = 10 * time.Second

// DeliveryHeader carries the per-attempt delivery ID.
const DeliveryHeader = "X-Delivery-ID"

// Outcome is the result of one delivery attempt. A failed delivery is a
// warning for the user, never a failed save.
type Outcome struct {
	DeliveryID uuid.UUID     `json:"delivery_id"`
	RecordID   uuid.UUID     `json:"record_id"`
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code,omitempty"`
	OK         bool          `json:"ok"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	At         time.Time     `json:"at"`
}

// Message is the user-facing description of the outcome.
func (o Outcome) Message() string {
	if o.OK {
		return "Workout data successfully sent to webhook."
	}
	if o.StatusCode != 0 {
		return fmt.Sprintf("Failed to send data to webhook (status %d).", o.StatusCode)
	}
	return fmt.Sprintf("Failed to send data to webhook: %s", o.Error)
}

// Recorder persists delivery outcomes.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

// Client posts saved workouts to a webhook URL. A nil *Client is a disabled
// notifier.
type Client struct {
	url        string
	httpClient *http.Client
	recorder   Recorder
	log        *slog.Logger
}

// NewClient creates a webhook client. An empty url falls back to DefaultURL.
// A zero timeout leaves the call unbounded apart from ctx.
func NewClient(url string, timeout time.Duration, recorder Recorder, log *slog.Logger) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		recorder: recorder,
		log:      log,
	}
}

// URL returns the configured endpoint.
func (c *Client) URL() string {
	return c.url
}

// Enabled reports whether notifications are sent.
func (c *Client) Enabled() bool {
	return c != nil
}

// Notify POSTs rec to the webhook once. Success is an HTTP 200; anything else
// is reported in the outcome. Notify never returns an error.
func (c *Client) Notify(ctx context.Context, rec models.WorkoutRecord) Outcome {
	o := Outcome{
		DeliveryID: uuid.New(),
		RecordID:   rec.ID,
		URL:        c.url,
		At:         time.Now().UTC(),
	}

	start := time.Now()
	o.StatusCode, o.Error = c.post(ctx, o.DeliveryID, NewPayload(rec))
	o.Duration = time.Since(start)
	o.OK = o.StatusCode == http.StatusOK && o.Error == ""

	if o.OK {
		c.log.Info("webhook delivered", "delivery_id", o.DeliveryID, "record_id", rec.ID, "duration", o.Duration)
	} else {
		c.log.Warn("webhook delivery failed", "delivery_id", o.DeliveryID, "record_id", rec.ID,
			"status", o.StatusCode, "error", o.Error)
	}

	if c.recorder != nil {
		if err := c.recorder.Record(ctx, o); err != nil {
			c.log.Error("recording delivery", "delivery_id", o.DeliveryID, "error", err)
		}
	}
	return o
}

func (c *Client) post(ctx context.Context, deliveryID uuid.UUID, payload Payload) (int, string) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Sprintf("marshaling payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Sprintf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(DeliveryHeader, deliveryID.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err.Error()
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Sprintf("webhook returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return resp.StatusCode, ""
}
