package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"go.uber.org/goleak"
)

// TestMain runs goleak after all tests in the package.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecord() models.WorkoutRecord {
	r := models.NewRecord(models.NewDate(2025, 4, 2), "Upper Push")
	r.SetExercise("Bench Press", models.Standard(4, 6, 82.5).WithNotes("paused"))
	r.SetExercise("Farmer's Carry", models.Timed(3, "30-40s"))
	return r
}

type memRecorder struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (m *memRecorder) Record(_ context.Context, o Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, o)
	return nil
}

// TestNotifySuccess verifies a 200 response is a successful delivery and the
// body uses PascalCase keys.
func TestNotifySuccess(t *testing.T) {
	var (
		mu         sync.Mutex
		body       map[string]any
		deliveryID string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		deliveryID = r.Header.Get(DeliveryHeader)
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rec := &memRecorder{}
	c := NewClient(srv.URL, time.Second, rec, testLogger())
	defer c.httpClient.CloseIdleConnections()

	record := testRecord()
	o := c.Notify(context.Background(), record)
	if !o.OK {
		t.Fatalf("outcome = %+v, want OK", o)
	}
	mu.Lock()
	defer mu.Unlock()
	if o.RecordID != record.ID {
		t.Errorf("record id = %v, want %v", o.RecordID, record.ID)
	}
	if deliveryID != o.DeliveryID.String() {
		t.Errorf("delivery header = %q, want %q", deliveryID, o.DeliveryID)
	}

	if body["Id"] != record.ID.String() || body["Date"] != "2025-04-02" || body["Type"] != "Upper Push" {
		t.Errorf("body header fields = %v", body)
	}
	exercises, _ := body["Exercises"].(map[string]any)
	bench, _ := exercises["Bench Press"].(map[string]any)
	if bench["Weight"] != 82.5 || bench["Reps"] != float64(6) || bench["Notes"] != "paused" {
		t.Errorf("bench = %v", bench)
	}
	carry, _ := exercises["Farmer's Carry"].(map[string]any)
	if carry["Reps"] != "30-40s" || carry["Weight"] != "Bodyweight" || carry["Kind"] != "timed" {
		t.Errorf("carry = %v", carry)
	}

	if len(rec.outcomes) != 1 || !rec.outcomes[0].OK {
		t.Errorf("recorded = %+v, want one OK outcome", rec.outcomes)
	}
}

// TestNotifyNon200 verifies any other status is a failure without retries.
func TestNotifyNon200(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil, testLogger())
	defer c.httpClient.CloseIdleConnections()

	o := c.Notify(context.Background(), testRecord())
	if o.OK {
		t.Fatal("202 must not count as success")
	}
	if o.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d, want 202", o.StatusCode)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
	if o.Message() != "Failed to send data to webhook (status 202)." {
		t.Errorf("message = %q", o.Message())
	}
}

// TestNotifyTimeout verifies a slow endpoint fails within the bound.
func TestNotifyTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, 50*time.Millisecond, nil, testLogger())
	defer c.httpClient.CloseIdleConnections()

	start := time.Now()
	o := c.Notify(context.Background(), testRecord())
	if o.OK {
		t.Fatal("expected timeout failure")
	}
	if o.Error == "" {
		t.Error("expected an error message")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("notify took %v", elapsed)
	}
}

// TestNotifyUnreachable verifies transport errors become a warning outcome.
func TestNotifyUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, nil, testLogger())
	o := c.Notify(context.Background(), testRecord())
	if o.OK || o.StatusCode != 0 || o.Error == "" {
		t.Errorf("outcome = %+v, want transport failure", o)
	}
}

// TestDefaultURL verifies the local fallback endpoint.
func TestDefaultURL(t *testing.T) {
	c := NewClient("", 0, nil, testLogger())
	if c.URL() != DefaultURL {
		t.Errorf("url = %q, want %q", c.URL(), DefaultURL)
	}
	var disabled *Client
	if disabled.Enabled() {
		t.Error("nil client reported enabled")
	}
}

// TestDeliveryLog verifies outcomes round-trip through SQLite newest first.
func TestDeliveryLog(t *testing.T) {
	dl, err := OpenDeliveryLog(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer dl.Close()

	ctx := context.Background()
	base := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	first := Outcome{DeliveryID: uuid.New(), RecordID: uuid.New(), URL: "http://x", StatusCode: 200, OK: true,
		Duration: 120 * time.Millisecond, At: base}
	second := Outcome{DeliveryID: uuid.New(), RecordID: uuid.New(), URL: "http://x", Error: "connection refused",
		At: base.Add(time.Minute)}

	for _, o := range []Outcome{first, second} {
		if err := dl.Record(ctx, o); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := dl.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(got))
	}
	if got[0].DeliveryID != second.DeliveryID || got[0].OK || got[0].Error != "connection refused" {
		t.Errorf("got[0] = %+v, want second outcome", got[0])
	}
	if got[1].DeliveryID != first.DeliveryID || !got[1].OK || got[1].Duration != 120*time.Millisecond {
		t.Errorf("got[1] = %+v, want first outcome", got[1])
	}
	if !got[1].At.Equal(base) {
		t.Errorf("at = %v, want %v", got[1].At, base)
	}
}
