package metrics

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Collector interface for pagination metrics
type Collector interface {
	PageLoad(source string, duration time.Duration, err error)
	LoadIgnored(source, reason string)
	Batch(source string, size int, first bool)
	SourceFetch(source string, live bool, err error)
	Subscriptions(source string, open int)
}

// NoOpCollector implements Collector with no-op methods
type NoOpCollector struct{}

func (NoOpCollector) PageLoad(string, time.Duration, error) {}
func (NoOpCollector) LoadIgnored(string, string)            {}
func (NoOpCollector) Batch(string, int, bool)               {}
func (NoOpCollector) SourceFetch(string, bool, error)       {}
func (NoOpCollector) Subscriptions(string, int)             {}

// Metric represents a recorded pagination event
type Metric struct {
	Type      string    `json:"type"`
	Value     int64     `json:"value"`
	Labels    Labels    `json:"labels"`
	Timestamp time.Time `json:"timestamp"`
}

// Labels for metric categorization
type Labels map[string]string

// PagingCollector collects pagination metrics in memory
type PagingCollector struct {
	// Page load metrics
	pageLoads      atomic.Int64
	pageLoadErrors atomic.Int64
	slowPageLoads  atomic.Int64
	loadsIgnored   atomic.Int64

	// Batch metrics
	batches      atomic.Int64
	firstBatches atomic.Int64
	documents    atomic.Int64

	// Source metrics
	fetches      atomic.Int64
	liveFetches  atomic.Int64
	fetchErrors  atomic.Int64
	openSubs     atomic.Int32
	lastPageLoad atomic.Value // time.Time

	// Recent events, bounded
	maxRecent int
	recent    []Metric
	recentMu  sync.Mutex

	slowThreshold time.Duration
}

// Snapshot is a point-in-time copy of the collector counters
type Snapshot struct {
	PageLoads      int64     `json:"page_loads"`
	PageLoadErrors int64     `json:"page_load_errors"`
	SlowPageLoads  int64     `json:"slow_page_loads"`
	LoadsIgnored   int64     `json:"loads_ignored"`
	Batches        int64     `json:"batches"`
	FirstBatches   int64     `json:"first_batches"`
	Documents      int64     `json:"documents"`
	Fetches        int64     `json:"fetches"`
	LiveFetches    int64     `json:"live_fetches"`
	FetchErrors    int64     `json:"fetch_errors"`
	OpenSubs       int32     `json:"open_subscriptions"`
	LastPageLoad   time.Time `json:"last_page_load"`
}

// NewPagingCollector creates a new collector keeping up to maxRecent events
func NewPagingCollector(maxRecent int) *PagingCollector {
	if maxRecent <= 0 {
		maxRecent = 100
	}

	c := &PagingCollector{
		maxRecent:     maxRecent,
		recent:        make([]Metric, 0, maxRecent),
		slowThreshold: time.Second,
	}
	c.lastPageLoad.Store(time.Time{})
	return c
}

// PageLoad records the outcome of a LoadNextPage call that issued a fetch
func (c *PagingCollector) PageLoad(source string, duration time.Duration, err error) {
	c.pageLoads.Add(1)
	c.lastPageLoad.Store(time.Now())

	if err != nil {
		c.pageLoadErrors.Add(1)
	}

	if duration > c.slowThreshold {
		c.slowPageLoads.Add(1)
	}

	c.recordMetric("page_load", duration.Milliseconds(), Labels{
		"source":  source,
		"success": strconv.FormatBool(err == nil),
		"slow":    strconv.FormatBool(duration > c.slowThreshold),
	})
}

// LoadIgnored records a LoadNextPage call that was collapsed into a no-op
func (c *PagingCollector) LoadIgnored(source, reason string) {
	c.loadsIgnored.Add(1)
	c.recordMetric("load_ignored", 1, Labels{
		"source": source,
		"reason": reason,
	})
}

// Batch records a merged batch
func (c *PagingCollector) Batch(source string, size int, first bool) {
	c.batches.Add(1)
	c.documents.Add(int64(size))
	if first {
		c.firstBatches.Add(1)
	}
	c.recordMetric("batch", int64(size), Labels{
		"source": source,
		"first":  strconv.FormatBool(first),
	})
}

// SourceFetch records a fetch issued against a source
func (c *PagingCollector) SourceFetch(source string, live bool, err error) {
	c.fetches.Add(1)
	if live {
		c.liveFetches.Add(1)
	}
	if err != nil {
		c.fetchErrors.Add(1)
	}
	c.recordMetric("source_fetch", 1, Labels{
		"source":  source,
		"live":    strconv.FormatBool(live),
		"success": strconv.FormatBool(err == nil),
	})
}

// Subscriptions records the number of open subscriptions
func (c *PagingCollector) Subscriptions(source string, open int) {
	c.openSubs.Store(int32(open))
	c.recordMetric("subscriptions", int64(open), Labels{"source": source})
}

// Snapshot returns the current counters
func (c *PagingCollector) Snapshot() Snapshot {
	last, _ := c.lastPageLoad.Load().(time.Time)
	return Snapshot{
		PageLoads:      c.pageLoads.Load(),
		PageLoadErrors: c.pageLoadErrors.Load(),
		SlowPageLoads:  c.slowPageLoads.Load(),
		LoadsIgnored:   c.loadsIgnored.Load(),
		Batches:        c.batches.Load(),
		FirstBatches:   c.firstBatches.Load(),
		Documents:      c.documents.Load(),
		Fetches:        c.fetches.Load(),
		LiveFetches:    c.liveFetches.Load(),
		FetchErrors:    c.fetchErrors.Load(),
		OpenSubs:       c.openSubs.Load(),
		LastPageLoad:   last,
	}
}

// Recent returns the most recent events, oldest first
func (c *PagingCollector) Recent() []Metric {
	c.recentMu.Lock()
	defer c.recentMu.Unlock()
	out := make([]Metric, len(c.recent))
	copy(out, c.recent)
	return out
}

// Reset clears all counters and events
func (c *PagingCollector) Reset() {
	c.pageLoads.Store(0)
	c.pageLoadErrors.Store(0)
	c.slowPageLoads.Store(0)
	c.loadsIgnored.Store(0)
	c.batches.Store(0)
	c.firstBatches.Store(0)
	c.documents.Store(0)
	c.fetches.Store(0)
	c.liveFetches.Store(0)
	c.fetchErrors.Store(0)
	c.openSubs.Store(0)
	c.lastPageLoad.Store(time.Time{})

	c.recentMu.Lock()
	c.recent = c.recent[:0]
	c.recentMu.Unlock()
}

func (c *PagingCollector) recordMetric(metricType string, value int64, labels Labels) {
	c.recentMu.Lock()
	defer c.recentMu.Unlock()

	if len(c.recent) == c.maxRecent {
		copy(c.recent, c.recent[1:])
		c.recent = c.recent[:len(c.recent)-1]
	}
	c.recent = append(c.recent, Metric{
		Type:      metricType,
		Value:     value,
		Labels:    labels,
		Timestamp: time.Now(),
	})
}
