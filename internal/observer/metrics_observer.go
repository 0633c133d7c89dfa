package observer

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Metric names exposed on /metrics
const (
	metricAnalysesTotal      = "plant_analyses_total"
	metricAnalysesStarted    = "plant_analyses_started_total"
	metricAnalysesInFlight   = "plant_analyses_in_flight"
	metricAnalysisDuration   = "plant_analysis_duration_seconds"
	metricReportsTotal       = "plant_reports_total"
	metricFetchFailuresTotal = "plant_image_fetch_failures_total"
	metricImagesFetchedTotal = "plant_images_fetched_total"
	metricLastHealthScore    = "plant_last_health_score"
)

// durationBuckets are the histogram upper bounds in seconds
var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// MetricsObserver aggregates analysis events into Prometheus metrics
type MetricsObserver struct {
	mu sync.RWMutex

	started   int64
	succeeded int64
	failed    map[string]int64 // by error type

	reports map[string]int64 // by status

	fetched       int64
	fetchFailures map[string]int64 // by error type

	durationCount   uint64
	durationSum     float64
	durationBuckets []uint64

	lastScore     float64
	haveLastScore bool
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		failed:          make(map[string]int64),
		reports:         make(map[string]int64),
		fetchFailures:   make(map[string]int64),
		durationBuckets: make([]uint64, len(durationBuckets)),
	}
}

// OnEvent handles analysis events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case AnalysisStarted:
		o.started++
	case AnalysisCompleted:
		o.succeeded++
		o.reports[event.Status]++
		o.observeDuration(event.ProcessingTime)
		o.lastScore = float64(event.HealthScore)
		o.haveLastScore = true
	case AnalysisFailed:
		o.failed[errorLabel(event.ErrorType)]++
		o.observeDuration(event.ProcessingTime)
	case ImageFetched:
		o.fetched++
	case ImageFetchFailed:
		o.fetchFailures[errorLabel(event.ErrorType)]++
	}
}

func (o *MetricsObserver) observeDuration(d time.Duration) {
	secs := d.Seconds()
	o.durationCount++
	o.durationSum += secs
	for i, ub := range durationBuckets {
		if secs <= ub {
			o.durationBuckets[i]++
		}
	}
}

func errorLabel(t string) string {
	if t == "" {
		return "unknown"
	}
	return t
}

// inFlightLocked is started minus finished. Events arrive asynchronously,
// so a finish may be counted before its start.
func (o *MetricsObserver) inFlightLocked() int64 {
	n := o.started - o.succeeded
	for _, f := range o.failed {
		n -= f
	}
	if n < 0 {
		return 0
	}
	return n
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Snapshot is a point-in-time copy of the main counters
type Snapshot struct {
	Started   int64
	InFlight  int64
	Succeeded int64
	Failed    int64
	Fetched   int64
	Reports   map[string]int64
}

// GetMetrics returns current counters
func (o *MetricsObserver) GetMetrics() Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	s := Snapshot{
		Started:   o.started,
		InFlight:  o.inFlightLocked(),
		Succeeded: o.succeeded,
		Fetched:   o.fetched,
		Reports:   make(map[string]int64, len(o.reports)),
	}
	for _, n := range o.failed {
		s.Failed += n
	}
	for k, v := range o.reports {
		s.Reports[k] = v
	}
	return s
}

// Families builds the Prometheus metric families for the current state
func (o *MetricsObserver) Families() []*dto.MetricFamily {
	o.mu.RLock()
	defer o.mu.RUnlock()

	analyses := &dto.MetricFamily{
		Name: proto.String(metricAnalysesTotal),
		Help: proto.String("Plant analyses by outcome."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	analyses.Metric = append(analyses.Metric, counter(float64(o.succeeded), "result", "success"))
	for _, k := range sortedKeys(o.failed) {
		analyses.Metric = append(analyses.Metric, counter(float64(o.failed[k]), "result", "failure", "error_type", k))
	}

	reports := &dto.MetricFamily{
		Name: proto.String(metricReportsTotal),
		Help: proto.String("Health reports by status band."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, k := range sortedKeys(o.reports) {
		reports.Metric = append(reports.Metric, counter(float64(o.reports[k]), "status", k))
	}

	started := &dto.MetricFamily{
		Name:   proto.String(metricAnalysesStarted),
		Help:   proto.String("Plant analyses started."),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{counter(float64(o.started))},
	}

	inFlight := &dto.MetricFamily{
		Name:   proto.String(metricAnalysesInFlight),
		Help:   proto.String("Plant analyses started but not yet finished."),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(float64(o.inFlightLocked()))}}},
	}

	fetched := &dto.MetricFamily{
		Name:   proto.String(metricImagesFetchedTotal),
		Help:   proto.String("Photos acquired from a source."),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{counter(float64(o.fetched))},
	}

	fetchFailures := &dto.MetricFamily{
		Name: proto.String(metricFetchFailuresTotal),
		Help: proto.String("Photos that could not be acquired, by error type."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, k := range sortedKeys(o.fetchFailures) {
		fetchFailures.Metric = append(fetchFailures.Metric, counter(float64(o.fetchFailures[k]), "error_type", k))
	}

	hist := &dto.Histogram{
		SampleCount: proto.Uint64(o.durationCount),
		SampleSum:   proto.Float64(o.durationSum),
	}
	for i, ub := range durationBuckets {
		hist.Bucket = append(hist.Bucket, &dto.Bucket{
			UpperBound:      proto.Float64(ub),
			CumulativeCount: proto.Uint64(o.durationBuckets[i]),
		})
	}
	duration := &dto.MetricFamily{
		Name:   proto.String(metricAnalysisDuration),
		Help:   proto.String("Time spent acquiring and analyzing a photo."),
		Type:   dto.MetricType_HISTOGRAM.Enum(),
		Metric: []*dto.Metric{{Histogram: hist}},
	}

	families := []*dto.MetricFamily{analyses, started, inFlight, duration, fetched, reports}
	if len(fetchFailures.Metric) > 0 {
		families = append(families, fetchFailures)
	}
	if o.haveLastScore {
		families = append(families, &dto.MetricFamily{
			Name:   proto.String(metricLastHealthScore),
			Help:   proto.String("Health score of the most recent report."),
			Type:   dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(o.lastScore)}}},
		})
	}
	// Families with no samples are not valid exposition
	out := families[:0]
	for _, mf := range families {
		if len(mf.Metric) > 0 {
			out = append(out, mf)
		}
	}
	return out
}

// Expose writes the metrics in the Prometheus text exposition format
func (o *MetricsObserver) Expose(w io.Writer) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range o.Families() {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	if closer, ok := enc.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ContentType is the HTTP content type matching Expose
func ContentType() string {
	return string(expfmt.NewFormat(expfmt.TypeTextPlain))
}

// counter builds a counter sample from alternating label names and values
func counter(v float64, labels ...string) *dto.Metric {
	m := &dto.Metric{Counter: &dto.Counter{Value: proto.Float64(v)}}
	for i := 0; i+1 < len(labels); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{
			Name:  proto.String(labels[i]),
			Value: proto.String(labels[i+1]),
		})
	}
	return m
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
