package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	contactSentTotal      atomic.Uint64
	contactFailedTotal    atomic.Uint64
	analysisFailedByStage labeledCounter
	rateLimitedByLimiter  labeledCounter
	analysisCreatedByType labeledCounter
	mediaUploadedTotal    atomic.Uint64
	httpRequestsTotal     atomic.Uint64
	httpServerErrorsTotal atomic.Uint64

	analysisDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncContactSent counts a relayed contact message.
func IncContactSent() { contactSentTotal.Add(1) }

// IncContactFailed counts a contact message the transport rejected.
func IncContactFailed() { contactFailedTotal.Add(1) }

// IncRateLimited counts a request rejected by the named limiter.
func IncRateLimited(limiter string) { rateLimitedByLimiter.Inc(limiter) }

// IncAnalysisCreated counts a persisted analysis of the given type.
func IncAnalysisCreated(analysisType string) { analysisCreatedByType.Inc(analysisType) }

// IncAnalysisFailed counts an analysis that failed at stage (upload, model, store).
func IncAnalysisFailed(stage string) { analysisFailedByStage.Inc(stage) }

// IncMediaUploaded counts a hosted image.
func IncMediaUploaded() { mediaUploadedTotal.Add(1) }

// ObserveHTTPRequest records a completed request.
func ObserveHTTPRequest(status int) {
	httpRequestsTotal.Add(1)
	if status >= 500 {
		httpServerErrorsTotal.Add(1)
	}
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "contact_sent_total", "Contact messages relayed", contactSentTotal.Load())
	writeCounter(&buf, "contact_failed_total", "Contact messages that failed to send", contactFailedTotal.Load())
	writeLabeled(&buf, "rate_limited_total", "Requests rejected by a rate limiter", "limiter", rateLimitedByLimiter.Snapshot())
	writeLabeled(&buf, "analysis_created_total", "Analyses persisted", "type", analysisCreatedByType.Snapshot())
	writeLabeled(&buf, "analysis_failed_total", "Analyses that failed", "stage", analysisFailedByStage.Snapshot())
	writeCounter(&buf, "media_uploaded_total", "Images uploaded to the media store", mediaUploadedTotal.Load())
	writeCounter(&buf, "http_requests_total", "HTTP requests served", httpRequestsTotal.Load())
	writeCounter(&buf, "http_server_errors_total", "HTTP responses with status >= 500", httpServerErrorsTotal.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	return buf.String()
}

// labeledCounter is a counter family keyed by a single label value.
type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func (l *labeledCounter) Inc(label string) {
	if label == "" {
		label = "unknown"
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.values == nil {
		l.values = make(map[string]uint64)
	}
	l.values[label]++
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe stores the value in the first bucket whose bound covers it;
// cumulative counts are computed at render time.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeled(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s counter\n", name, help, name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
