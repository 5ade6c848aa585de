// Package metrics is the process-wide metrics facade.
//
// Library code records through the helpers in this package and never sees a
// concrete backend. Commands pick a backend at startup with SetBackend; until
// then every call is a no-op.
package metrics

import (
	"strconv"
	"sync"
	"time"
)

// Labels are metric dimensions (tag name -> value).
type Labels map[string]string

// Backend receives recorded metrics.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
}

// Metric names understood by the backends.
const (
	HTTPRequestsTotal   = "champ_http_requests_total"
	HTTPErrorsTotal     = "champ_http_errors_total"
	HTTPRequestSeconds  = "champ_http_request_duration_seconds"
	HTTPResponseSeconds = "champ_http_response_duration_seconds"
	HTTPDownloadBytes   = "champ_http_download_bytes"

	ExtractTotal   = "champ_extract_total"
	ExtractSeconds = "champ_extract_duration_seconds"

	ResolveTotal = "champ_resolve_total"
	StoreTotal   = "champ_store_total"
)

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b. A nil b restores the no-op backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nopBackend{}
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush flushes the installed backend.
func Flush() error {
	return current().Flush()
}

// RecordHTTP records one HTTP attempt. status is 0 when no response arrived.
// Negative durations and sizes mean "not measured" and are skipped.
func RecordHTTP(job string, status int, err error, reqDur, respDur time.Duration, size int64) {
	b := current()
	l := Labels{"job": job, "status": statusLabel(status)}

	b.IncCounter(HTTPRequestsTotal, 1, l)
	if err != nil || status < 200 || status >= 300 {
		b.IncCounter(HTTPErrorsTotal, 1, l)
	}
	if reqDur >= 0 {
		b.ObserveHistogram(HTTPRequestSeconds, reqDur.Seconds(), l)
	}
	if respDur >= 0 {
		b.ObserveHistogram(HTTPResponseSeconds, respDur.Seconds(), l)
	}
	if size >= 0 {
		b.ObserveHistogram(HTTPDownloadBytes, float64(size), l)
	}
}

// RecordExtract records one extraction attempt. outcome is "ok" or an error kind.
func RecordExtract(marker, outcome string, dur time.Duration) {
	b := current()
	l := Labels{"marker": marker, "outcome": outcome}
	b.IncCounter(ExtractTotal, 1, l)
	b.ObserveHistogram(ExtractSeconds, dur.Seconds(), l)
}

// RecordResolve records which resolver tier answered a query ("miss" if none).
func RecordResolve(tier string) {
	current().IncCounter(ResolveTotal, 1, Labels{"tier": tier})
}

// RecordStore records an alias-table store operation: result is one of
// "hit", "miss", "save" or "error".
func RecordStore(kind, result string) {
	current().IncCounter(StoreTotal, 1, Labels{"kind": kind, "result": result})
}

func statusLabel(status int) string {
	if status <= 0 {
		return "none"
	}
	return strconv.Itoa(status)
}
