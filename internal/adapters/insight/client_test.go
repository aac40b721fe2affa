package insight_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"reviewpulse/internal/adapters/insight"
	"reviewpulse/internal/domain"
)

func newClient(t *testing.T, base string) *insight.Client {
	t.Helper()
	cl, err := insight.New(insight.Config{BaseURL: base, APIKey: "test-key", RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func TestClient_CreateReview(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/reviews/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("missing api key header, got %q", got)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["text"] != "great phone" || body["source"] != "manual" {
			t.Errorf("unexpected body: %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 42, "text": body["text"], "source": body["source"],
			"created_at": time.Now().UTC().Format(time.RFC3339),
		})
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL)
	rv, err := cl.CreateReview(context.Background(), "great phone", "manual")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rv.ID != 42 || rv.Text != "great phone" {
		t.Fatalf("unexpected review: %+v", rv)
	}
}

func TestClient_ListReviews_SkipLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("skip") != "20" || q.Get("limit") != "10" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "text": "a", "source": "csv", "created_at": "2026-01-02T00:00:00Z"},
		})
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL)
	rs, err := cl.ListReviews(context.Background(), 20, 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rs) != 1 || rs[0].ID != 1 {
		t.Fatalf("unexpected reviews: %+v", rs)
	}
}

func TestClient_FullAnalysis_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl := newClient(t, ts.URL)
	_, err := cl.FullAnalysis(context.Background(), 99)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_NoRetries(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL)
	_, err := cl.AnalyzeSentiment(context.Background(), 5)
	if err == nil {
		t.Fatalf("expected error for 500")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected exactly 1 call (no retries), got %d", n)
	}
}

func TestClient_UploadCSV(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reviews/upload-csv" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		if hdr.Filename != "reviews.csv" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		b, _ := io.ReadAll(f)
		if !strings.HasPrefix(string(b), "text,rating") {
			t.Errorf("unexpected file content: %q", b)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"filename": hdr.Filename, "reviews_processed": 3, "success": true,
		})
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL)
	csv := strings.NewReader("text,rating\ngood,5\nbad,1\nokay,3\n")
	rc, err := cl.UploadCSV(context.Background(), "reviews.csv", csv)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rc.Accepted != 3 || !rc.Success {
		t.Fatalf("unexpected receipt: %+v", rc)
	}
}

func TestClient_RejectsUnknownLabel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"review_id": 1, "sentiment_score": 0.2, "sentiment_label": "mixed", "confidence": 0.5,
		})
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL)
	_, err := cl.AnalyzeSentiment(context.Background(), 1)
	if err == nil {
		t.Fatalf("expected decode error for unrecognized label")
	}
}
