package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	uploadTotal           atomic.Uint64
	uploadFallbackTotal   atomic.Uint64
	uploadRejectedTotal   atomic.Uint64
	streamTotal           atomic.Uint64
	streamFallbackTotal   atomic.Uint64
	documentDeletedTotal  atomic.Uint64
	orphanedDocumentTotal atomic.Uint64
	parseTotal            atomic.Uint64
	parseFailedTotal      atomic.Uint64

	parseDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncUpload increments the upload counter.
func IncUpload() { uploadTotal.Add(1) }

// IncUploadFallback counts uploads that fell back to local storage.
func IncUploadFallback() { uploadFallbackTotal.Add(1) }

// IncUploadRejected counts uploads rejected by validation.
func IncUploadRejected() { uploadRejectedTotal.Add(1) }

// IncStream increments the stream counter.
func IncStream() { streamTotal.Add(1) }

// IncStreamFallback counts reads served by the local fallback probe.
func IncStreamFallback() { streamFallbackTotal.Add(1) }

// IncDocumentDeleted counts successful best-effort deletions.
func IncDocumentDeleted() { documentDeletedTotal.Add(1) }

// IncOrphanedDocument counts deletions that failed and left an orphan behind.
func IncOrphanedDocument() { orphanedDocumentTotal.Add(1) }

// IncParse increments the parse counter.
func IncParse() { parseTotal.Add(1) }

// IncParseFailed increments the failed parse counter.
func IncParseFailed() { parseFailedTotal.Add(1) }

// ObserveParseDurationMs records a parse duration in milliseconds.
func ObserveParseDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	parseDuration.Observe(value)
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
	writeCounter(&buf, "document_upload_total", "Total document uploads", uploadTotal.Load())
	writeCounter(&buf, "document_upload_fallback_total", "Total uploads that fell back to local storage", uploadFallbackTotal.Load())
	writeCounter(&buf, "document_upload_rejected_total", "Total uploads rejected by validation", uploadRejectedTotal.Load())
	writeCounter(&buf, "document_stream_total", "Total document streams", streamTotal.Load())
	writeCounter(&buf, "document_stream_fallback_total", "Total streams served by the local fallback probe", streamFallbackTotal.Load())
	writeCounter(&buf, "document_deleted_total", "Total documents deleted", documentDeletedTotal.Load())
	writeCounter(&buf, "document_orphaned_total", "Total documents orphaned by failed best-effort deletes", orphanedDocumentTotal.Load())
	writeCounter(&buf, "document_parse_total", "Total parse invocations", parseTotal.Load())
	writeCounter(&buf, "document_parse_failed_total", "Total failed parse invocations", parseFailedTotal.Load())
	writeHistogram(&buf, "document_parse_duration_ms", "Parse duration in milliseconds", parseDuration.Snapshot())
	return buf.String()
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
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
