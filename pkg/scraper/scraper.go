package scraper

import (
	"context"
	"errors"
	"time"

	"tgscraper/pkg/config"
	errs "tgscraper/pkg/errors"
	"tgscraper/pkg/logger"
	"tgscraper/pkg/models"
	"tgscraper/pkg/ratelimit"
	"tgscraper/pkg/retry"
	"tgscraper/pkg/telegram"
)

// ProgressFunc is called for every collected record, in arrival order.
type ProgressFunc func(record models.FileRecord, count int)

// Scraper orchestrates one sequential scrape pass: paged history retrieval,
// attachment extraction, extension filtering and ordered collection.
type Scraper struct {
	fetcher  MessageFetcher
	limiter  ratelimit.Limiter
	guard    *ratelimit.FloodGuard
	filter   *ExtensionFilter
	resolver SenderResolver
	config   *config.Config
	logger   logger.Logger
	progress ProgressFunc
}

// Result holds everything a scrape produced. A cancelled run is not an
// error: the partial collection stays valid and exportable.
type Result struct {
	Group     *telegram.Group
	Records   []models.FileRecord
	Summary   models.ScrapeSummary
	Cancelled bool
}

// New creates a Scraper around a message fetcher.
func New(fetcher MessageFetcher, cfg *config.Config) *Scraper {
	log := logger.GetLogger()

	rpm := cfg.RateLimit.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &Scraper{
		fetcher: fetcher,
		limiter: ratelimit.NewTokenBucket(rpm, time.Minute),
		guard: ratelimit.NewFloodGuard(
			cfg.RateLimit.MaxFloodWaits,
			cfg.RateLimit.FloodWaitCeiling,
			cfg.RateLimit.DefaultFloodWait,
			log,
		),
		filter: NewExtensionFilter(cfg.Scrape.FileTypes),
		config: cfg,
		logger: log,
	}
}

// SetProgress registers a per-record progress callback.
func (s *Scraper) SetProgress(fn ProgressFunc) {
	s.progress = fn
}

// SetSenderResolver overrides sender identity resolution.
func (s *Scraper) SetSenderResolver(resolve SenderResolver) {
	s.resolver = resolve
}

// ScrapeGroup scans up to the configured message limit of the group's
// history and returns the collected file records. Cancellation is honored
// at every fetch boundary and during flood pauses; whatever was collected
// up to that point comes back with Cancelled set.
func (s *Scraper) ScrapeGroup(ctx context.Context, identifier string) (*Result, error) {
	ref, err := telegram.ParseGroupRef(identifier)
	if err != nil {
		return nil, annotate(err, identifier, "resolve")
	}

	s.logger.InfoWithFields("starting scrape", map[string]interface{}{
		"group":      ref.String(),
		"limit":      s.config.Scrape.MessageLimit,
		"file_types": s.filter.Extensions(),
	})

	group, err := s.resolveGroup(ctx, ref)
	if err != nil {
		return nil, annotate(err, ref.String(), "resolve")
	}

	s.logger.InfoWithFields("group resolved", map[string]interface{}{
		"group": ref.String(),
		"title": group.Title,
	})

	extractor := NewExtractor(group.Ref, s.resolver)
	collector := NewCollector()

	var (
		scanned   int
		detected  int
		offsetID  int64
		cancelled bool
		limit     = s.config.Scrape.MessageLimit
	)

	for scanned < limit {
		pageSize := s.config.Scrape.PageSize
		if remaining := limit - scanned; remaining < pageSize {
			pageSize = remaining
		}

		page, err := s.fetchPage(ctx, group, offsetID, pageSize)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				cancelled = true
				break
			}
			return nil, annotate(err, ref.String(), "fetch")
		}
		if len(page) == 0 {
			break
		}

		for _, msg := range page {
			scanned++
			offsetID = msg.ID

			record := extractor.Extract(msg)
			if record == nil {
				continue
			}
			detected++

			if !s.filter.Match(record.Filename) {
				continue
			}

			collector.Append(*record)
			if s.progress != nil {
				s.progress(*record, collector.Len())
			}
		}

		s.logger.DebugWithFields("page processed", map[string]interface{}{
			"group":     ref.String(),
			"scanned":   scanned,
			"collected": collector.Len(),
			"offset_id": offsetID,
		})
	}

	result := &Result{
		Group:     group,
		Records:   collector.Records(),
		Summary:   collector.Summarize(scanned, detected),
		Cancelled: cancelled,
	}

	s.logger.InfoWithFields("scrape finished", map[string]interface{}{
		"group":     ref.String(),
		"scanned":   scanned,
		"detected":  detected,
		"collected": len(result.Records),
		"cancelled": cancelled,
	})

	return result, nil
}

// resolveGroup resolves the group under the same flood and retry discipline
// as history fetches.
func (s *Scraper) resolveGroup(ctx context.Context, ref telegram.GroupRef) (*telegram.Group, error) {
	var group *telegram.Group
	err := s.guard.Do(ctx, func() error {
		return retry.Do(func() error {
			s.limiter.Wait()
			var err error
			group, err = s.fetcher.ResolveGroup(ctx, ref)
			return err
		}, retry.FromConfig(ctx, s.config.Retry, s.logger))
	})
	return group, err
}

// fetchPage retrieves one history page. The flood guard wraps the whole
// fetch; the retrier inside it only sees transient network errors, so a
// flood signal is never consumed as a retry attempt.
func (s *Scraper) fetchPage(ctx context.Context, group *telegram.Group, offsetID int64, limit int) ([]telegram.Message, error) {
	var page []telegram.Message
	err := s.guard.Do(ctx, func() error {
		return retry.Do(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.limiter.Wait()
			var err error
			page, err = s.fetcher.FetchHistory(ctx, group, offsetID, limit)
			return err
		}, retry.FromConfig(ctx, s.config.Retry, s.logger))
	})
	return page, err
}

// annotate attaches group and phase context to pipeline errors.
func annotate(err error, group, phase string) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.WithContext(group, phase)
	}
	return err
}
