package extractor

import (
	"sync"
	"time"

	"github.com/aleister1102/giftwatch/internal/models"
)

// statsTracker keeps process-wide extractor counters behind a single writer.
type statsTracker struct {
	mutex sync.Mutex
	stats models.ExtractorStats
}

func (st *statsTracker) record(success bool, latency time.Duration) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	st.stats.TotalRequests++
	st.stats.LastRequestTime = time.Now()
	if !success {
		st.stats.FailedRequests++
		return
	}

	st.stats.SuccessfulRequests++
	// Running average over successful requests only.
	prev := st.stats.AverageResponseTime * time.Duration(st.stats.SuccessfulRequests-1)
	st.stats.AverageResponseTime = (prev + latency) / time.Duration(st.stats.SuccessfulRequests)
}

// Snapshot returns a copy of the current counters.
func (st *statsTracker) Snapshot() models.ExtractorStats {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	return st.stats
}

// Reset zeroes all counters.
func (st *statsTracker) Reset() {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.stats = models.ExtractorStats{}
}
