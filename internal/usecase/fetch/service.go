// Package fetch implements the fetch/refresh orchestration engine:
// per-source, per-video, and bulk fetches with staleness scheduling,
// failure classification, and partial-failure containment.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/infra/extractor"
	"tubefeed/internal/infra/feed"
	"tubefeed/internal/infra/provider"
	"tubefeed/internal/observability/metrics"
	"tubefeed/internal/repository"
	"tubefeed/internal/usecase/notify"
	"tubefeed/internal/usecase/rules"
)

// DefaultNewVideoGrace is how long a freshly discovered video may keep
// failing with "unavailable" before the failure is treated as terminal.
// Covers premieres and scheduled live events that resolve on their own.
const DefaultNewVideoGrace = 36 * time.Hour

// Extractor is the slice of the extraction client the orchestrator
// consumes.
type Extractor interface {
	SourceMetadata(ctx context.Context, url string, params extractor.Params) (*extractor.SourceMetadata, error)
	VideoMetadata(ctx context.Context, url string) (*extractor.VideoMetadata, error)
}

// Config holds orchestrator behavior knobs.
type Config struct {
	// DeleteOrphans removes videos that upstream has delisted. Off by
	// default: downstream consumers hold permanent references to a
	// video's media endpoint even after delisting.
	DeleteOrphans bool

	// NewVideoGrace is the record-age threshold separating
	// retry-next-cycle from hard failure for unavailable videos.
	// Zero means DefaultNewVideoGrace.
	NewVideoGrace time.Duration
}

func (c Config) grace() time.Duration {
	if c.NewVideoGrace > 0 {
		return c.NewVideoGrace
	}
	return DefaultNewVideoGrace
}

// Service drives fetch and refresh flows. All flows are single-flow
// and cooperative: units run sequentially with context checks between
// them, preserving the oldest-updated-first refresh ordering that the
// rate-limited extractor depends on.
type Service struct {
	Sources   repository.SourceRepository
	Videos    repository.VideoRepository
	Filters   repository.FilterRepository
	Extractor Extractor
	Providers *provider.Registry
	Feeds     feed.Materializer
	Notify    notify.Service
	Config    Config

	now func() time.Time
}

// NewService creates a fetch Service with the provided dependencies.
func NewService(
	sources repository.SourceRepository,
	videos repository.VideoRepository,
	filters repository.FilterRepository,
	ext Extractor,
	providers *provider.Registry,
	feeds feed.Materializer,
	notifyService notify.Service,
	cfg Config,
) *Service {
	return &Service{
		Sources:   sources,
		Videos:    videos,
		Filters:   filters,
		Extractor: ext,
		Providers: providers,
		Feeds:     feeds,
		Notify:    notifyService,
		Config:    cfg,
		now:       time.Now,
	}
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// FetchSource forces a full refresh of one source regardless of
// staleness: fresh extraction, source field update, entry diff,
// optional orphan deletion, stale-video refresh, and feed
// regeneration.
func (s *Service) FetchSource(ctx context.Context, id string) (entity.FetchResults, error) {
	var results entity.FetchResults
	start := s.clock()

	src, err := s.Sources.Get(ctx, id)
	if err != nil {
		return results, fmt.Errorf("get source %s: %w", id, err)
	}

	handler, err := s.Providers.Lookup(src.Handler)
	if err != nil {
		return results, fmt.Errorf("source %s: %w", id, err)
	}

	now := s.clock()
	params := handler.SourceParams(now)
	// Effective playlist direction is the handler default XORed with
	// the per-source reverse flag.
	params.Reverse = params.Reverse != src.ReverseImportOrder

	extractStart := s.clock()
	meta, err := s.Extractor.SourceMetadata(ctx, src.URL, params)
	metrics.RecordExtraction("source", s.clock().Sub(extractStart))
	if err != nil {
		return results, s.handleSourceExtractionError(ctx, src, err)
	}

	handler.MapSourceMetadata(meta, src)
	src.LastFetchError = ""
	src.UpdatedAt = now
	if err := s.Sources.Update(ctx, src); err != nil {
		return results, fmt.Errorf("update source %s: %w", id, err)
	}

	added, err := s.importEntries(ctx, src, handler, meta.Entries, now)
	if err != nil {
		return results, err
	}
	results.AddedVideos = added

	deleted, err := s.removeOrphans(ctx, src, handler, meta.Entries)
	if err != nil {
		return results, err
	}
	results.DeletedVideos = deleted

	refreshed, err := s.refreshStale(ctx, src, handler)
	if err != nil {
		return results, err
	}
	results.RefreshedVideos = refreshed

	if err := s.regenerateFeeds(ctx, src); err != nil {
		return results, err
	}

	results.Sources = 1
	metrics.RecordSourceFetch(src.ID, s.clock().Sub(start), added)

	slog.Info("source fetch completed",
		slog.String("source_id", src.ID),
		slog.String("source_name", src.Name),
		slog.Int("added", added),
		slog.Int("deleted", deleted),
		slog.Int("refreshed", refreshed),
		slog.Duration("duration", s.clock().Sub(start)),
	)

	return results, nil
}

// handleSourceExtractionError classifies a failed source-level
// extraction. A permanently-gone channel deactivates the source and
// cancels this source only; anything else is reported and re-raised.
func (s *Service) handleSourceExtractionError(ctx context.Context, src *entity.Source, err error) error {
	src.LastFetchError = err.Error()

	if errors.Is(err, extractor.ErrSourceGone) {
		src.Active = false
		src.Deleted = true
		if updateErr := s.Sources.Update(ctx, src); updateErr != nil {
			return fmt.Errorf("deactivate gone source %s: %w", src.ID, updateErr)
		}
		metrics.RecordSourceFetchError(src.ID, "source_gone")
		slog.Warn("source permanently gone, deactivated",
			slog.String("source_id", src.ID),
			slog.String("source_name", src.Name))
		_ = s.Notify.NotifySourceFailed(ctx, src, err)
		return &entity.FetchSourceError{SourceID: src.ID, Err: err}
	}

	if updateErr := s.Sources.Update(ctx, src); updateErr != nil {
		slog.Warn("failed to record fetch error on source",
			slog.String("source_id", src.ID),
			slog.Any("error", updateErr))
	}
	metrics.RecordSourceFetchError(src.ID, "extraction_failed")
	slog.Error("source extraction failed",
		slog.String("source_id", src.ID),
		slog.String("source_name", src.Name),
		slog.Any("error", err))
	_ = s.Notify.NotifySourceFailed(ctx, src, err)
	return fmt.Errorf("extract source %s: %w", src.ID, err)
}

// importEntries diffs extracted entries against known video ids,
// creating and linking the unseen ones. Returns the number of videos
// newly attached to the source.
func (s *Service) importEntries(
	ctx context.Context,
	src *entity.Source,
	handler provider.Handler,
	entries []extractor.Entry,
	now time.Time,
) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	type candidate struct {
		id    string
		url   string
		entry *extractor.Entry
	}

	candidates := make([]candidate, 0, len(entries))
	ids := make([]string, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		sanitized, err := handler.SanitizeVideoURL(e.PageURL())
		if err != nil {
			slog.Warn("skipping entry with unusable URL",
				slog.String("source_id", src.ID),
				slog.String("url", e.PageURL()),
				slog.Any("error", err))
			continue
		}
		id := entity.DeriveID(sanitized)
		candidates = append(candidates, candidate{id: id, url: sanitized, entry: e})
		ids = append(ids, id)
	}

	known, err := s.Videos.ExistsByIDBatch(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("batch check videos for source %s: %w", src.ID, err)
	}

	linkedIDs, err := s.Sources.VideoIDs(ctx, src.ID)
	if err != nil {
		return 0, fmt.Errorf("list linked videos for source %s: %w", src.ID, err)
	}
	linked := make(map[string]bool, len(linkedIDs))
	for _, id := range linkedIDs {
		linked[id] = true
	}

	added := 0
	for _, c := range candidates {
		if linked[c.id] {
			continue
		}

		if !known[c.id] {
			v := &entity.Video{
				ID:          c.id,
				Handler:     handler.Name(),
				Uploader:    c.entry.Uploader,
				UploaderID:  c.entry.UploaderID,
				Title:       c.entry.Title,
				Description: c.entry.Description,
				Duration:    int(c.entry.Duration),
				Thumbnail:   c.entry.Thumbnail,
				URL:         c.url,
				ReleasedAt:  c.entry.ReleasedTime(),
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.Videos.Create(ctx, v); err != nil && !errors.Is(err, entity.ErrAlreadyExists) {
				return added, fmt.Errorf("create video %s: %w", c.id, err)
			}

			// Dispatch is fire-and-forget inside the notify service; a
			// failed dispatch never fails the import.
			if err := s.Notify.NotifyNewVideo(ctx, v, src); err != nil {
				slog.Warn("failed to dispatch new-video notification",
					slog.String("video_id", v.ID),
					slog.String("source_id", src.ID),
					slog.Any("error", err))
			}
		}

		if err := s.Sources.LinkVideo(ctx, src.ID, c.id); err != nil {
			return added, fmt.Errorf("link video %s to source %s: %w", c.id, src.ID, err)
		}
		linked[c.id] = true
		added++
	}

	return added, nil
}

// removeOrphans unlinks and deletes videos that upstream no longer
// lists. Disabled unless Config.DeleteOrphans is set.
func (s *Service) removeOrphans(
	ctx context.Context,
	src *entity.Source,
	handler provider.Handler,
	entries []extractor.Entry,
) (int, error) {
	if !s.Config.DeleteOrphans {
		return 0, nil
	}

	current := make(map[string]bool, len(entries))
	for i := range entries {
		sanitized, err := handler.SanitizeVideoURL(entries[i].PageURL())
		if err != nil {
			continue
		}
		current[entity.DeriveID(sanitized)] = true
	}

	linkedIDs, err := s.Sources.VideoIDs(ctx, src.ID)
	if err != nil {
		return 0, fmt.Errorf("list linked videos for source %s: %w", src.ID, err)
	}

	deleted := 0
	for _, id := range linkedIDs {
		if current[id] {
			continue
		}
		if err := s.Sources.UnlinkVideo(ctx, src.ID, id); err != nil {
			return deleted, fmt.Errorf("unlink video %s from source %s: %w", id, src.ID, err)
		}
		if err := s.Videos.Delete(ctx, id); err != nil && !errors.Is(err, entity.ErrNotFound) {
			return deleted, fmt.Errorf("delete orphan video %s: %w", id, err)
		}
		deleted++
	}

	return deleted, nil
}

// refreshStale selects the source's stale videos and refreshes each
// oldest-updated-first, with per-item failure containment.
func (s *Service) refreshStale(ctx context.Context, src *entity.Source, handler provider.Handler) (int, error) {
	videos, err := s.Sources.Videos(ctx, src.ID)
	if err != nil {
		return 0, fmt.Errorf("list videos for source %s: %w", src.ID, err)
	}

	stale := SelectStale(videos, handler.Settings(), s.clock())
	refreshed := 0
	for _, v := range stale {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if err := s.refreshOne(ctx, handler, v); err != nil {
			if containRefreshError(err) {
				continue
			}
			return refreshed, err
		}
		refreshed++
	}
	return refreshed, nil
}

// containRefreshError reports whether a per-item refresh error is
// absorbed at item scope. Canceled items retry next cycle; terminal
// per-video failures have already been reported and must not abort the
// surrounding batch. Integrity and store errors escalate.
func containRefreshError(err error) bool {
	var canceled *entity.FetchCanceledError
	if errors.As(err, &canceled) {
		return true
	}
	var videoErr *entity.FetchVideoError
	return errors.As(err, &videoErr)
}

// refreshOne re-derives a single video's media reference.
func (s *Service) refreshOne(ctx context.Context, handler provider.Handler, v *entity.Video) error {
	now := s.clock()

	extractStart := s.clock()
	meta, err := s.Extractor.VideoMetadata(ctx, v.URL)
	metrics.RecordExtraction("video", s.clock().Sub(extractStart))
	if err != nil {
		return s.classifyVideoError(ctx, v, err, now)
	}

	if err := handler.MapVideoMetadata(meta, v); err != nil {
		if errors.Is(err, entity.ErrFormatNotFound) {
			return s.classifyVideoError(ctx, v, err, now)
		}
		return fmt.Errorf("map video %s metadata: %w", v.ID, err)
	}

	v.UpdatedAt = now
	if err := s.Videos.Update(ctx, v); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return s.integrityError(ctx, v.ID, err)
		}
		return fmt.Errorf("update video %s: %w", v.ID, err)
	}

	metrics.RecordVideoRefresh("success")
	return nil
}

// classifyVideoError applies the per-video failure taxonomy: an
// unavailable video younger than the grace threshold is canceled and
// retried next cycle; older ones are terminal and reported; anything
// unclassified is reported and re-raised.
func (s *Service) classifyVideoError(ctx context.Context, v *entity.Video, err error, now time.Time) error {
	if errors.Is(err, extractor.ErrVideoUnavailable) || errors.Is(err, entity.ErrFormatNotFound) {
		if v.Age(now) < s.Config.grace() {
			metrics.RecordVideoRefresh("canceled")
			slog.Info("video refresh canceled, will retry next cycle",
				slog.String("video_id", v.ID),
				slog.String("title", v.Title),
				slog.Duration("age", v.Age(now)))
			return &entity.FetchCanceledError{Reason: err.Error()}
		}

		metrics.RecordVideoRefresh("failure")
		slog.Warn("video refresh failed terminally",
			slog.String("video_id", v.ID),
			slog.String("title", v.Title),
			slog.Any("error", err))
		_ = s.Notify.NotifyFetchError(ctx, fmt.Sprintf("video %s", v.ID), err)
		return &entity.FetchVideoError{VideoID: v.ID, Err: err}
	}

	if errors.Is(err, entity.ErrNotFound) {
		return s.integrityError(ctx, v.ID, err)
	}

	metrics.RecordVideoRefresh("failure")
	slog.Error("unexpected video refresh error",
		slog.String("video_id", v.ID),
		slog.Any("error", err))
	_ = s.Notify.NotifyFetchError(ctx, fmt.Sprintf("video %s", v.ID), err)
	return fmt.Errorf("refresh video %s: %w", v.ID, err)
}

// integrityError reports a store desync loudly and propagates it.
func (s *Service) integrityError(ctx context.Context, videoID string, err error) error {
	detail := fmt.Sprintf("video %s missing from store during refresh", videoID)
	slog.Error("store integrity error", slog.String("video_id", videoID), slog.Any("error", err))
	_ = s.Notify.NotifyIntegrityError(ctx, detail)
	return fmt.Errorf("%s: %w", detail, err)
}

// regenerateFeeds rewrites the source feed and every attached filter
// feed from the current video set.
func (s *Service) regenerateFeeds(ctx context.Context, src *entity.Source) error {
	videos, err := s.Sources.Videos(ctx, src.ID)
	if err != nil {
		return fmt.Errorf("list videos for feeds of source %s: %w", src.ID, err)
	}

	ordered := entity.VideosSorted(videos, src.OrderedBy)
	if err := s.Feeds.WriteSourceFeed(ctx, src, ordered); err != nil {
		return fmt.Errorf("write source feed %s: %w", src.ID, err)
	}

	filters, err := s.Filters.ListBySource(ctx, src.ID)
	if err != nil {
		return fmt.Errorf("list filters for source %s: %w", src.ID, err)
	}

	now := s.clock()
	for _, f := range filters {
		selected := rules.FilterVideos(f, videos, now)
		if err := s.Feeds.WriteFilterFeed(ctx, src, f, selected); err != nil {
			return fmt.Errorf("write filter feed %s/%s: %w", src.ID, f.ID, err)
		}
	}

	return nil
}

// FetchAllSources iterates every fetchable source and folds the
// per-source results. Inactive and soft-deleted sources are skipped
// entirely, including in the aggregate source count. A per-source
// failure never aborts the batch: it is logged and notified, and the
// loop moves on.
func (s *Service) FetchAllSources(ctx context.Context) (entity.FetchResults, error) {
	var results entity.FetchResults
	start := s.clock()

	// Inactive and deleted sources are excluded at the store, so they
	// never show up in the batch or its counts.
	srcs, err := s.Sources.ListFetchable(ctx)
	if err != nil {
		return results, fmt.Errorf("list fetchable sources: %w", err)
	}

	for _, src := range srcs {
		// Cooperative yield between sources.
		if err := ctx.Err(); err != nil {
			return results, err
		}

		r, err := s.FetchSource(ctx, src.ID)
		results = results.Add(r)
		if err != nil {
			slog.Warn("source fetch failed in batch",
				slog.String("source_id", src.ID),
				slog.String("source_name", src.Name),
				slog.Any("error", err))
			_ = s.Notify.NotifyFetchError(ctx, fmt.Sprintf("source %s", src.ID), err)
		}
	}

	slog.Info("all sources fetch completed",
		slog.Int("sources", results.Sources),
		slog.Int("added", results.AddedVideos),
		slog.Int("deleted", results.DeletedVideos),
		slog.Int("refreshed", results.RefreshedVideos),
		slog.Duration("duration", s.clock().Sub(start)),
	)

	return results, nil
}

// FetchVideo forces a refresh of one video's media reference and
// returns the updated record.
func (s *Service) FetchVideo(ctx context.Context, id string) (*entity.Video, error) {
	v, err := s.Videos.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}

	handler, err := s.Providers.Lookup(v.Handler)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", id, err)
	}

	if err := s.refreshOne(ctx, handler, v); err != nil {
		return nil, err
	}
	return v, nil
}

// RefreshVideos refreshes the given videos' media references,
// oldest-updated-first, with per-item failure containment.
func (s *Service) RefreshVideos(ctx context.Context, videos []*entity.Video) (entity.FetchResults, error) {
	var results entity.FetchResults

	ordered := make([]*entity.Video, len(videos))
	copy(ordered, videos)
	sortOldestUpdatedFirst(ordered)

	for _, v := range ordered {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		handler, err := s.Providers.Lookup(v.Handler)
		if err != nil {
			slog.Warn("skipping video with unknown handler",
				slog.String("video_id", v.ID),
				slog.String("handler", v.Handler))
			continue
		}

		if err := s.refreshOne(ctx, handler, v); err != nil {
			if containRefreshError(err) {
				continue
			}
			return results, err
		}
		results.RefreshedVideos++
	}

	return results, nil
}
