package scraper

import (
	"sync"

	"tgscraper/pkg/models"
)

// Collector accumulates accepted records in arrival order for one scrape
// run. It is append-only; records are never mutated once added. Every run
// gets a fresh instance, so state cannot leak between scrapes.
type Collector struct {
	mu      sync.Mutex
	records []models.FileRecord
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Append adds one record.
func (c *Collector) Append(record models.FileRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
}

// Len returns the number of collected records.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Records returns an ordered snapshot. Mutating the snapshot does not
// affect the collector.
func (c *Collector) Records() []models.FileRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.FileRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Summarize derives the run summary from the collected records.
func (c *Collector) Summarize(scanned, detected int) models.ScrapeSummary {
	return models.Summarize(c.Records(), scanned, detected)
}
