// Package datadog implements a Datadog backend for the internal/metrics package.
//
// Metrics are buffered in memory and submitted:
//   - periodically on a ticker (default: every 60 seconds)
//   - one final time on Close()
//
// Short commands therefore still report on exit, and long interactive
// sessions produce a time series instead of one spike.
//
// Concurrency model:
//   - callers record through IncCounter/ObserveHistogram at any time
//   - Flush snapshots+resets buffers under a mutex, then submits out-of-lock
//   - Close stops the loop and flushes once more
package datadog

import (
	"context"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"champhelper/internal/metrics"
)

// Options controls Datadog backend configuration.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric.
	// If empty, defaults to "champhelper".
	JobName string

	// Tags are extra Datadog tags (e.g. []string{"env:prod", "team:tools"}).
	Tags []string

	// FlushEvery controls how often buffered metrics are submitted.
	// If <= 0, defaults to 60 seconds.
	FlushEvery time.Duration

	// Unexported test seams; production code never sets them.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter metricsSubmitter
}

// metricsSubmitter is the one method of *datadogV2.MetricsApi we use.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// metricSpec maps an internal metric name to its Datadog name and the labels
// that become tags. Labels not listed are dropped; "job" is always a base tag.
type metricSpec struct {
	ddName string
	tags   []string
}

var counterSpecs = map[string]metricSpec{
	metrics.HTTPRequestsTotal: {"champ.http.requests.total", []string{"status"}},
	metrics.HTTPErrorsTotal:   {"champ.http.errors.total", []string{"status"}},
	metrics.ExtractTotal:      {"champ.extract.total", []string{"marker", "outcome"}},
	metrics.ResolveTotal:      {"champ.resolve.total", []string{"tier"}},
	metrics.StoreTotal:        {"champ.store.total", []string{"kind", "result"}},
}

var histogramSpecs = map[string]metricSpec{
	metrics.HTTPRequestSeconds:  {"champ.http.request_duration_seconds", []string{"status"}},
	metrics.HTTPResponseSeconds: {"champ.http.response_duration_seconds", []string{"status"}},
	metrics.HTTPDownloadBytes:   {"champ.http.download_bytes", []string{"status"}},
	metrics.ExtractSeconds:      {"champ.extract.duration_seconds", []string{"outcome"}},
}

// seriesKey identifies one buffered series: Datadog name plus its sorted,
// joined tags.
type seriesKey struct {
	metric string
	tags   string
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api metricsSubmitter
	ctx context.Context

	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	baseTags []string

	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker

	mu       sync.Mutex
	counters map[seriesKey]float64
	samples  map[seriesKey][]float64
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

// NewBackend constructs a Datadog backend using the official client. The API
// key and site come from the client's usual environment variables
// (DD_API_KEY, DD_SITE).
//
// Edge cases:
//   - If opts.FlushEvery <= 0, defaults to 60s.
//   - If opts.JobName is empty, defaults to "champhelper".
//   - Environment tag selection uses ENV then DD_ENV, otherwise env:unknown.
//
// Network errors surface from Flush and Close, never from NewBackend.
func NewBackend(parent context.Context, opts Options) *Backend {
	job := opts.JobName
	if job == "" {
		job = "champhelper"
	}
	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 2+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	newTicker := opts.newTicker
	if newTicker == nil {
		newTicker = time.NewTicker
	}
	submitter := opts.submitter
	if submitter == nil {
		submitter = datadogV2.NewMetricsApi(dd.NewAPIClient(dd.NewConfiguration()))
	}

	b := &Backend{
		api:        submitter,
		ctx:        dd.NewDefaultContext(parent),
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		baseTags:   baseTags,
		now:        nowFn,
		newTicker:  newTicker,
		counters:   make(map[seriesKey]float64),
		samples:    make(map[seriesKey][]float64),
	}

	go b.loop()
	return b
}

func (b *Backend) loop() {
	defer close(b.doneCh)

	t := b.newTicker(b.flushEvery)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// Close stops the background flush loop and performs one final Flush().
// Call it once.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

// IncCounter implements metrics.Backend. Unknown metrics are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	spec, ok := counterSpecs[name]
	if !ok || delta <= 0 {
		return
	}
	k := spec.key(labels)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.counters[k] += delta
}

// ObserveHistogram implements metrics.Backend. Unknown metrics are ignored.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	spec, ok := histogramSpecs[name]
	if !ok || value < 0 {
		return
	}
	k := spec.key(labels)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples[k] = append(b.samples[k], value)
}

func (s metricSpec) key(labels metrics.Labels) seriesKey {
	tags := make([]string, 0, len(s.tags))
	for _, name := range s.tags {
		v := labels[name]
		if v == "" {
			v = "unknown"
		}
		tags = append(tags, name+":"+v)
	}
	sort.Strings(tags)
	return seriesKey{metric: s.ddName, tags: strings.Join(tags, ",")}
}

func (k seriesKey) tagList() []string {
	if k.tags == "" {
		return nil
	}
	return strings.Split(k.tags, ",")
}

// snapshotAndReset detaches the current buffers under the lock.
func (b *Backend) snapshotAndReset() (map[seriesKey]float64, map[seriesKey][]float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	counters, samples := b.counters, b.samples
	b.counters = make(map[seriesKey]float64)
	b.samples = make(map[seriesKey][]float64)
	return counters, samples
}

// Flush submits buffered metrics and resets local buffers. It returns nil
// when there is nothing to submit.
//
// Buffers are reset even when submission fails; delivery is best effort.
func (b *Backend) Flush() error {
	counters, samples := b.snapshotAndReset()
	if len(counters) == 0 && len(samples) == 0 {
		return nil
	}

	series := b.buildSeries(counters, samples, b.now().Unix())
	payload := datadogV2.MetricPayload{Series: series}

	_, _, err := b.api.SubmitMetrics(b.ctx, payload, *datadogV2.NewSubmitMetricsOptionalParameters())
	return err
}

// buildSeries turns buffered state into Datadog series at a fixed timestamp,
// in a deterministic order.
func (b *Backend) buildSeries(counters map[seriesKey]float64, samples map[seriesKey][]float64, nowUnix int64) []datadogV2.MetricSeries {
	series := make([]datadogV2.MetricSeries, 0, len(counters)+6*len(samples))

	for _, k := range sortedKeys(counters) {
		tags := withTags(b.baseTags, k.tagList()...)
		series = append(series, point(k.metric, datadogV2.METRICINTAKETYPE_COUNT, counters[k], tags, nowUnix))
	}

	for _, k := range sortedKeys(samples) {
		cp := append([]float64(nil), samples[k]...)
		if len(cp) == 0 {
			continue
		}
		sort.Float64s(cp)
		tags := withTags(b.baseTags, k.tagList()...)

		gauge := func(suffix string, v float64) {
			series = append(series, point(k.metric+suffix, datadogV2.METRICINTAKETYPE_GAUGE, v, tags, nowUnix))
		}
		gauge(".p50", percentileNearestRank(cp, 0.50))
		gauge(".p90", percentileNearestRank(cp, 0.90))
		gauge(".p95", percentileNearestRank(cp, 0.95))
		gauge(".p99", percentileNearestRank(cp, 0.99))
		gauge(".max", cp[len(cp)-1])
		gauge(".samples", float64(len(cp)))
	}
	return series
}

func point(metric string, typ datadogV2.MetricIntakeType, value float64, tags []string, nowUnix int64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: metric,
		Type:   typ.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

func sortedKeys[V any](m map[seriesKey]V) []seriesKey {
	keys := make([]seriesKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].metric != keys[j].metric {
			return keys[i].metric < keys[j].metric
		}
		return keys[i].tags < keys[j].tags
	})
	return keys
}

func withTags(base []string, extras ...string) []string {
	out := make([]string, 0, len(base)+len(extras))
	out = append(out, base...)
	out = append(out, extras...)
	return out
}

func percentileNearestRank(s []float64, p float64) float64 {
	n := len(s)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return s[0]
	}
	if p >= 1 {
		return s[n-1]
	}
	idx := int(p*float64(n-1) + 0.5)
	if idx >= n {
		idx = n - 1
	}
	return s[idx]
}

var _ metrics.Backend = (*Backend)(nil)
