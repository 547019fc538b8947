package models

import (
	"math"
	"path/filepath"
	"strings"
	"time"
)

// FileRecord describes one file attachment found in a group's history.
// Records are created by the extraction stage, never mutated afterwards,
// and exported in the order they were collected.
type FileRecord struct {
	Filename   string    `json:"filename"`
	MessageID  int64     `json:"message_id"`
	Date       time.Time `json:"date"`
	Sender     string    `json:"sender"`
	Caption    string    `json:"caption"`
	FileSizeMB float64   `json:"file_size_mb"`
	MessageURL string    `json:"message_url"`
}

// DateLayout is the fixed format used for the date column in both
// the CSV and JSON exports.
const DateLayout = "2006-01-02 15:04:05"

// FormattedDate returns the record's send time as a fixed-format UTC string.
func (r FileRecord) FormattedDate() string {
	if r.Date.IsZero() {
		return ""
	}
	return r.Date.UTC().Format(DateLayout)
}

// Extension returns the lowercased filename extension, including the dot.
func (r FileRecord) Extension() string {
	return strings.ToLower(filepath.Ext(r.Filename))
}

// ScrapeSummary aggregates one scrape run. It is derived from the collected
// records at report time and is read-only.
type ScrapeSummary struct {
	MessagesScanned int
	FilesDetected   int
	FilesCollected  int
	TotalSizeMB     float64
	OldestDate      time.Time
	NewestDate      time.Time
	ByExtension     map[string]int
	Largest         []FileRecord
}

// Summarize computes a summary over the given records. The scanned and
// detected counters come from the pipeline; everything else is derived
// from the records themselves.
func Summarize(records []FileRecord, scanned, detected int) ScrapeSummary {
	s := ScrapeSummary{
		MessagesScanned: scanned,
		FilesDetected:   detected,
		FilesCollected:  len(records),
		ByExtension:     make(map[string]int),
	}

	for _, r := range records {
		s.TotalSizeMB += r.FileSizeMB
		s.ByExtension[r.Extension()]++
		if s.OldestDate.IsZero() || r.Date.Before(s.OldestDate) {
			s.OldestDate = r.Date
		}
		if r.Date.After(s.NewestDate) {
			s.NewestDate = r.Date
		}
	}
	s.TotalSizeMB = roundSize(s.TotalSizeMB)
	s.Largest = largest(records, 10)

	return s
}

// largest returns up to n records sorted by size, descending. The input
// slice is not modified.
func largest(records []FileRecord, n int) []FileRecord {
	sorted := make([]FileRecord, len(records))
	copy(sorted, records)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].FileSizeMB > sorted[j-1].FileSizeMB; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func roundSize(mb float64) float64 {
	return math.Round(mb*100) / 100
}
