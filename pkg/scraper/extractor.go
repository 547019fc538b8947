package scraper

import (
	"fmt"
	"math"

	"tgscraper/pkg/models"
	"tgscraper/pkg/telegram"
)

// maxCaptionLen bounds exported captions, counted in runes so multi-byte
// text is never cut mid-character.
const maxCaptionLen = 500

const bytesPerMB = 1024 * 1024

// Extractor turns messages that carry a generic document attachment into
// FileRecords. Messages without one yield nil.
type Extractor struct {
	ref     telegram.GroupRef
	resolve SenderResolver
}

// NewExtractor creates an extractor for one group. A nil resolver falls
// back to the sender's own display name.
func NewExtractor(ref telegram.GroupRef, resolve SenderResolver) *Extractor {
	if resolve == nil {
		resolve = func(s *telegram.Sender) string { return s.DisplayName() }
	}
	return &Extractor{ref: ref, resolve: resolve}
}

// Extract returns the record for a message's file attachment, or nil when
// the message carries none. Per-message anomalies degrade to defaults and
// never fail the run.
func (e *Extractor) Extract(msg telegram.Message) *models.FileRecord {
	doc := msg.Document
	if doc == nil {
		return nil
	}

	sender := e.resolve(msg.Sender)
	if sender == "" {
		sender = "Unknown"
	}

	return &models.FileRecord{
		Filename:   normalizeFilename(doc, msg.ID),
		MessageID:  msg.ID,
		Date:       msg.Date.UTC(),
		Sender:     sender,
		Caption:    truncateCaption(msg.Text),
		FileSizeMB: sizeMB(doc.Size),
		MessageURL: e.ref.MessageURL(msg.ID),
	}
}

// normalizeFilename prefers the declared name and synthesizes
// file_<id>.<ext> from the MIME subtype when there is none.
func normalizeFilename(doc *telegram.Document, messageID int64) string {
	if doc.FileName != "" {
		return doc.FileName
	}
	if messageID == 0 {
		return "unknown"
	}
	if sub := doc.Subtype(); sub != "" {
		return fmt.Sprintf("file_%d.%s", messageID, sub)
	}
	return fmt.Sprintf("file_%d", messageID)
}

func truncateCaption(text string) string {
	runes := []rune(text)
	if len(runes) <= maxCaptionLen {
		return text
	}
	return string(runes[:maxCaptionLen])
}

func sizeMB(bytes int64) float64 {
	if bytes <= 0 {
		return 0
	}
	return math.Round(float64(bytes)/bytesPerMB*100) / 100
}
