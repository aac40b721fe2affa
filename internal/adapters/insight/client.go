package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"reviewpulse/internal/adapters/observability"
	"reviewpulse/internal/domain"
)

// Config is the explicit, passed-in client configuration. There is no
// module-wide base URL; tests construct a Client against a fake backend.
type Config struct {
	BaseURL string
	APIKey  string
	RPS     int
	Timeout time.Duration
}

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("insight: base URL is required")
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: cfg.Timeout},
		key:  cfg.APIKey,
		rl:   rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS),
	}, nil
}

// ---- Public API ----

func (c *Client) CreateReview(ctx context.Context, text, source string) (domain.Review, error) {
	var out domain.Review
	body := map[string]string{"text": text, "source": source}
	return out, c.postJSON(ctx, "create_review", "/reviews/", body, &out)
}

func (c *Client) ListReviews(ctx context.Context, skip, limit int) ([]domain.Review, error) {
	q := url.Values{}
	q.Set("skip", fmt.Sprint(skip))
	q.Set("limit", fmt.Sprint(limit))
	var out []domain.Review
	return out, c.do(ctx, "list_reviews", http.MethodGet, "/reviews/?"+q.Encode(), nil, "", &out)
}

func (c *Client) FullAnalysis(ctx context.Context, id int64) (domain.CombinedAnalysis, error) {
	var out domain.CombinedAnalysis
	path := fmt.Sprintf("/reviews/%d/full-analysis", id)
	return out, c.do(ctx, "full_analysis", http.MethodGet, path, nil, "", &out)
}

func (c *Client) AnalyzeSentiment(ctx context.Context, id int64) (domain.SentimentResult, error) {
	var out domain.SentimentResult
	path := fmt.Sprintf("/sentiment/analyze-review/%d", id)
	return out, c.do(ctx, "analyze_sentiment", http.MethodPost, path, nil, "", &out)
}

func (c *Client) ExtractAspects(ctx context.Context, id int64) ([]domain.AspectResult, error) {
	var out []domain.AspectResult
	path := fmt.Sprintf("/aspects/analyze-review/%d", id)
	return out, c.do(ctx, "extract_aspects", http.MethodPost, path, nil, "", &out)
}

func (c *Client) SummarizeReview(ctx context.Context, id int64) (domain.ReviewSummary, error) {
	var out domain.ReviewSummary
	path := fmt.Sprintf("/summarization/summarize-review/%d", id)
	return out, c.do(ctx, "summarize_review", http.MethodPost, path, nil, "", &out)
}

func (c *Client) SentimentTrends(ctx context.Context) ([]domain.TrendRecord, error) {
	var out []domain.TrendRecord
	return out, c.do(ctx, "sentiment_trends", http.MethodGet, "/sentiment/trends", nil, "", &out)
}

func (c *Client) TopAspects(ctx context.Context) ([]domain.RankedAspect, error) {
	var out []domain.RankedAspect
	return out, c.do(ctx, "top_aspects", http.MethodGet, "/aspects/top", nil, "", &out)
}

// UploadCSV streams one file as multipart form data. Rows are processed by
// the service asynchronously; only the accepted count comes back.
func (c *Client) UploadCSV(ctx context.Context, filename string, file io.Reader) (domain.UploadReceipt, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return domain.UploadReceipt{}, fmt.Errorf("insight: build upload form: %w", err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return domain.UploadReceipt{}, fmt.Errorf("insight: read upload file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return domain.UploadReceipt{}, fmt.Errorf("insight: finish upload form: %w", err)
	}

	var out domain.UploadReceipt
	return out, c.do(ctx, "upload_csv", http.MethodPost, "/reviews/upload-csv", &buf, mw.FormDataContentType(), &out)
}

// ---- Internals ----

func (c *Client) postJSON(ctx context.Context, op, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("insight: %s: encode body: %w", op, err)
	}
	return c.do(ctx, op, http.MethodPost, path, bytes.NewReader(b), "application/json", out)
}

// do performs a single attempt with client-side rate limiting and JSON decode
// into out. There are no retries: a failed call is terminal and the caller
// decides whether the user re-invokes the operation.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	req.Header.Set("User-Agent", "reviewpulse/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		observability.ObserveExternal("insight", op, 0, time.Since(start))
		return fmt.Errorf("insight: %s: %w", op, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("insight", op, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("insight: %s: decode response: %w", op, err)
		}
		return nil

	case http.StatusNoContent:
		return nil

	case http.StatusNotFound:
		return fmt.Errorf("insight: %s: %w", op, domain.ErrNotFound)

	case http.StatusUnauthorized:
		return fmt.Errorf("insight: %s: %w", op, domain.ErrUnauthorized)

	case http.StatusForbidden:
		return fmt.Errorf("insight: %s: %w", op, domain.ErrForbidden)

	default:
		// keep a small error body for diagnostics; never shown to end users
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("insight: %s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(b)))
	}
}
