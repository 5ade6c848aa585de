package extracthtml

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"champhelper/internal/metrics"
)

// DefaultUserAgent mimics a desktop browser; some sources refuse bare clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Fetcher returns the body of a URL as text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Input describes where HTML should come from.
type Input struct {
	// URL, if provided, is fetched via HTTP GET.
	URL string

	// Stdin is used when URL is empty. If nil, stdin reads as empty.
	Stdin io.Reader
}

// Loader fetches or reads documents with a consistent timeout policy.
type Loader struct {
	client  *http.Client
	timeout time.Duration
	header  http.Header

	// Job tags HTTP metrics. Empty means "champhelper".
	Job string
}

// NewLoader creates a Loader. If client is nil, http.DefaultClient is used.
// An empty userAgent selects DefaultUserAgent.
func NewLoader(client *http.Client, timeout time.Duration, userAgent string) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "application/json,text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	return &Loader{
		client:  client,
		timeout: timeout,
		header:  h,
	}
}

// Load returns the document for either stdin (when input.URL is empty)
// or a fetched URL.
//
// On non-2xx HTTP responses, Load returns an error that includes the status
// code and up to 4KB of the response body for debugging.
func (l *Loader) Load(ctx context.Context, input Input) (string, error) {
	if strings.TrimSpace(input.URL) == "" {
		if input.Stdin == nil {
			return "", nil
		}
		b, err := io.ReadAll(input.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	return l.Fetch(ctx, input.URL)
}

// Fetch GETs url and returns the body.
func (l *Loader) Fetch(ctx context.Context, url string) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	status, body, err := l.get(ctx, url)
	elapsed := time.Since(start)

	job := l.Job
	if job == "" {
		job = "champhelper"
	}
	metrics.RecordHTTP(job, status, err, elapsed, elapsed, int64(len(body)))

	if err != nil {
		return "", err
	}
	return body, nil
}

func (l *Loader) get(ctx context.Context, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", fmt.Errorf("new request: %w", err)
	}
	for k, v := range l.header {
		req.Header[k] = v
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, "", fmt.Errorf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, string(b), nil
}

// FetchJSON fetches url with f and decodes the body into v.
func FetchJSON(ctx context.Context, f Fetcher, url string, v any) error {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
