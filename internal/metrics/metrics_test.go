package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type call struct {
	kind   string
	name   string
	value  float64
	labels Labels
}

type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) IncCounter(name string, delta float64, labels Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{"counter", name, delta, labels})
}

func (r *recorder) ObserveHistogram(name string, value float64, labels Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{"histogram", name, value, labels})
}

func (r *recorder) Flush() error { return nil }

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.name)
	}
	return out
}

// These tests swap the process-wide backend, so they do not run in parallel.

func TestRecordHTTP_SuccessSkipsErrorCounter(t *testing.T) {
	rec := &recorder{}
	SetBackend(rec)
	t.Cleanup(func() { SetBackend(nil) })

	RecordHTTP("job", 200, nil, 10*time.Millisecond, 20*time.Millisecond, 512)

	want := []string{HTTPRequestsTotal, HTTPRequestSeconds, HTTPResponseSeconds, HTTPDownloadBytes}
	got := rec.names()
	if len(got) != len(want) {
		t.Fatalf("calls=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call[%d]=%q, want %q", i, got[i], want[i])
		}
	}
	if rec.calls[0].labels["status"] != "200" {
		t.Fatalf("status label=%q, want 200", rec.calls[0].labels["status"])
	}
}

func TestRecordHTTP_NetworkErrorSkipsUnmeasured(t *testing.T) {
	rec := &recorder{}
	SetBackend(rec)
	t.Cleanup(func() { SetBackend(nil) })

	RecordHTTP("job", 0, errors.New("dial"), -1, -1, -1)

	got := rec.names()
	if len(got) != 2 || got[0] != HTTPRequestsTotal || got[1] != HTTPErrorsTotal {
		t.Fatalf("calls=%v", got)
	}
	if rec.calls[0].labels["status"] != "none" {
		t.Fatalf("status label=%q, want none", rec.calls[0].labels["status"])
	}
}

func TestRecordResolveAndStore(t *testing.T) {
	rec := &recorder{}
	SetBackend(rec)
	t.Cleanup(func() { SetBackend(nil) })

	RecordResolve("exact")
	RecordStore("sqlite", "hit")
	RecordExtract("window.__SSR_DATA__", "ok", time.Millisecond)

	if len(rec.calls) != 4 {
		t.Fatalf("got %d calls, want 4", len(rec.calls))
	}
	if rec.calls[0].labels["tier"] != "exact" {
		t.Fatalf("tier=%q", rec.calls[0].labels["tier"])
	}
	if rec.calls[1].labels["kind"] != "sqlite" || rec.calls[1].labels["result"] != "hit" {
		t.Fatalf("store labels=%v", rec.calls[1].labels)
	}
}

func TestSetBackendNilRestoresNop(t *testing.T) {
	SetBackend(nil)
	// Must not panic and must flush cleanly.
	RecordResolve("miss")
	if err := Flush(); err != nil {
		t.Fatalf("Flush()=%v, want nil", err)
	}
}
