// Package media implements the media delivery guard: on-demand,
// self-healing resolution of playable media URLs and a redirect-aware
// reverse proxy for handlers that require proxied delivery.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/infra/cache"
	"tubefeed/internal/infra/provider"
	"tubefeed/internal/observability/metrics"
	"tubefeed/internal/repository"
)

const (
	// maxProxyAttempts bounds the 403-triggered re-fetch loop.
	maxProxyAttempts = 3

	// maxRedirectHops bounds manual redirect following.
	maxRedirectHops = 10
)

// VideoFetcher is the slice of the fetch orchestrator the guard uses
// to force a synchronous media refresh.
type VideoFetcher interface {
	FetchVideo(ctx context.Context, id string) (*entity.Video, error)
}

// Guard resolves playable media URLs, healing stale references before
// responding and retrying once on upstream 403.
type Guard struct {
	Videos    repository.VideoRepository
	Providers *provider.Registry
	Fetcher   VideoFetcher
	Cache     *cache.MediaCache

	// httpClient must not auto-follow redirects: the proxy follows
	// them manually so intermediate bodies get closed.
	httpClient *http.Client

	// refetches collapses concurrent re-fetches of the same video into
	// one extractor call.
	refetches singleflight.Group

	now func() time.Time
}

// NewGuard creates a media delivery guard. cache may be nil when Redis
// is not configured.
func NewGuard(
	videos repository.VideoRepository,
	providers *provider.Registry,
	fetcher VideoFetcher,
	mediaCache *cache.MediaCache,
) *Guard {
	return &Guard{
		Videos:    videos,
		Providers: providers,
		Fetcher:   fetcher,
		Cache:     mediaCache,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		now: time.Now,
	}
}

func (g *Guard) clock() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now()
}

// Resolve returns the video with a playable media URL and its handler.
// A cached URL is used as-is; otherwise a stale or unresolved media
// reference triggers a synchronous re-fetch before returning.
func (g *Guard) Resolve(ctx context.Context, videoID string) (*entity.Video, provider.Handler, error) {
	v, err := g.Videos.Get(ctx, videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("get video %s: %w", videoID, err)
	}

	handler, err := g.Providers.Lookup(v.Handler)
	if err != nil {
		return nil, nil, fmt.Errorf("video %s: %w", videoID, err)
	}

	if cached := g.Cache.Get(ctx, videoID); cached != "" {
		metrics.RecordMediaResolve("cache_hit")
		v.MediaURL = cached
		return v, handler, nil
	}

	settings := handler.Settings()
	if g.needsRefetch(v, settings) {
		refreshed, err := g.refetchShared(ctx, videoID)
		if err != nil {
			metrics.RecordMediaResolve("failure")
			return nil, nil, fmt.Errorf("resolve video %s: %w", videoID, err)
		}
		v = refreshed
		metrics.RecordMediaResolve("refetched")
	} else {
		metrics.RecordMediaResolve("fresh")
	}

	g.Cache.Set(ctx, videoID, v.MediaURL, settings.RefreshInterval)
	return v, handler, nil
}

// needsRefetch reports whether the stored media reference is missing
// or older than the handler's refresh window.
func (g *Guard) needsRefetch(v *entity.Video, settings provider.Settings) bool {
	if v.MediaURL == "" {
		return true
	}
	return v.UpdatedAt.Before(g.clock().Add(-settings.RefreshInterval))
}

// refetchShared re-derives a video through the fetcher, deduplicating
// concurrent callers: simultaneous viewers of the same stale video
// share one extractor round trip.
func (g *Guard) refetchShared(ctx context.Context, videoID string) (*entity.Video, error) {
	v, err, _ := g.refetches.Do(videoID, func() (any, error) {
		return g.Fetcher.FetchVideo(ctx, videoID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.Video), nil
}

// forceRefetch re-derives the media URL, bypassing staleness checks
// and dropping the cache entry. Used after an upstream 403.
func (g *Guard) forceRefetch(ctx context.Context, videoID string) (*entity.Video, error) {
	g.Cache.Invalidate(ctx, videoID)
	metrics.RecordMediaProxyRetry()
	return g.refetchShared(ctx, videoID)
}

// ServeVideo streams or redirects the video's media to the client.
// Proxy handlers stream through the redirect-following proxy; others
// get a plain 302 to the media URL.
func (g *Guard) ServeVideo(w http.ResponseWriter, r *http.Request, videoID string) {
	ctx := r.Context()

	v, handler, err := g.Resolve(ctx, videoID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("media resolution failed",
			slog.String("video_id", videoID),
			slog.Any("error", err))
		http.Error(w, "media resolution failed", http.StatusBadGateway)
		return
	}

	if !handler.Settings().UseProxy {
		http.Redirect(w, r, v.MediaURL, http.StatusFound)
		return
	}

	g.proxy(w, r, v)
}

// proxy streams the terminal upstream response to the client. An
// upstream 403 forces a media re-fetch and a retry, bounded by
// maxProxyAttempts.
func (g *Guard) proxy(w http.ResponseWriter, r *http.Request, v *entity.Video) {
	ctx := r.Context()
	mediaURL := v.MediaURL

	for attempt := 1; attempt <= maxProxyAttempts; attempt++ {
		resp, err := g.terminalResponse(ctx, mediaURL, r.Header.Get("Range"))
		if err != nil {
			slog.Error("media proxy upstream error",
				slog.String("video_id", v.ID),
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			http.Error(w, "upstream fetch failed", http.StatusBadGateway)
			return
		}

		if resp.StatusCode == http.StatusForbidden {
			resp.Body.Close()
			if attempt == maxProxyAttempts {
				break
			}
			slog.Warn("upstream rejected media url, forcing re-fetch",
				slog.String("video_id", v.ID),
				slog.Int("attempt", attempt))

			refreshed, err := g.forceRefetch(ctx, v.ID)
			if err != nil {
				http.Error(w, "media re-fetch failed", http.StatusBadGateway)
				return
			}
			mediaURL = refreshed.MediaURL
			continue
		}

		g.stream(w, resp, v)
		return
	}

	http.Error(w, "upstream kept rejecting media url", http.StatusBadGateway)
}

// terminalResponse performs the request and follows redirect responses
// manually until a non-redirect response, closing every intermediate
// body. The caller owns the returned body.
func (g *Guard) terminalResponse(ctx context.Context, rawURL, rangeHeader string) (*http.Response, error) {
	url := rawURL
	for hop := 0; hop <= maxRedirectHops; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build upstream request: %w", err)
		}
		if rangeHeader != "" {
			req.Header.Set("Range", rangeHeader)
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("upstream request: %w", err)
		}

		if !isRedirect(resp.StatusCode) {
			return resp, nil
		}

		location := resp.Header.Get("Location")
		// Redirect bodies carry nothing useful; close before hopping.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if location == "" {
			return nil, fmt.Errorf("redirect %d without location", resp.StatusCode)
		}
		next, err := resp.Request.URL.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("resolve redirect location: %w", err)
		}
		url = next.String()
	}
	return nil, fmt.Errorf("too many redirects for %s", rawURL)
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// stream copies the upstream response to the client.
func (g *Guard) stream(w http.ResponseWriter, resp *http.Response, v *entity.Video) {
	defer resp.Body.Close()

	for _, h := range []string{"Content-Type", "Content-Length", "Content-Range", "Accept-Ranges"} {
		if val := resp.Header.Get(h); val != "" {
			w.Header().Set(h, val)
		}
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		// Client disconnects are routine mid-stream.
		slog.Debug("media stream interrupted",
			slog.String("video_id", v.ID),
			slog.Any("error", err))
	}
}
