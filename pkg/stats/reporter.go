package stats

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ashpect/edgeproxy/pkg/cache"
)

// Source is anything that can describe its current size.
type Source interface {
	Stats() cache.Stats
}

// Snapshot is the JSON body of the stats endpoint.
type Snapshot struct {
	EntryCount   int   `json:"entry_count"`
	WeightedSize int64 `json:"weighted_size"`
	TTLSeconds   int   `json:"ttl_seconds"`
	MaxCapacity  int   `json:"max_capacity"`
}

// Reporter reads live counts from the source and reports the configured
// TTL and capacity as given at startup.
type Reporter struct {
	source      Source
	ttl         time.Duration
	maxCapacity int
}

func NewReporter(source Source, ttl time.Duration, maxCapacity int) *Reporter {
	return &Reporter{source: source, ttl: ttl, maxCapacity: maxCapacity}
}

func (r *Reporter) Report() Snapshot {
	st := r.source.Stats()
	return Snapshot{
		EntryCount:   st.EntryCount,
		WeightedSize: st.WeightedSize,
		TTLSeconds:   int(r.ttl / time.Second),
		MaxCapacity:  r.maxCapacity,
	}
}

func (r *Reporter) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	body, err := json.Marshal(r.Report())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
