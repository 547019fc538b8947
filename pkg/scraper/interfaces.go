package scraper

import (
	"context"

	"tgscraper/pkg/telegram"
)

// MessageFetcher defines the message-source operations the pipeline needs.
// The production implementation is the MTProto client; tests substitute
// stub fetchers.
type MessageFetcher interface {
	ResolveGroup(ctx context.Context, ref telegram.GroupRef) (*telegram.Group, error)
	FetchHistory(ctx context.Context, group *telegram.Group, offsetID int64, limit int) ([]telegram.Message, error)
}

// SenderResolver resolves a raw sender to a display name. It exists as a
// capability so tests can stub identity lookup deterministically.
type SenderResolver func(sender *telegram.Sender) string
