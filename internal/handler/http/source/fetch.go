package source

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/handler/http/pathutil"
	"tubefeed/internal/handler/http/respond"
)

// batchFetchTimeout bounds a detached full-catalog run. A run walks every
// fetchable source sequentially, so the ceiling is generous.
const batchFetchTimeout = 2 * time.Hour

// FetchHandler triggers a synchronous fetch of one source and reports
// the run's counters.
type FetchHandler struct{ Fetcher Fetcher }

func (h FetchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.PathValue("id"), "")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	results, err := h.Fetcher.FetchSource(r.Context(), id)
	if err != nil {
		var canceled *entity.FetchCanceledError
		if errors.As(err, &canceled) {
			// Transient by definition: the next cycle retries. Report the
			// partial counters with an explanation instead of failing.
			respond.JSON(w, http.StatusAccepted, map[string]any{
				"results": fromResults(results),
				"detail":  canceled.Reason,
			})
			return
		}
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, fromResults(results))
}

// BatchFetchHandler starts a fetch of every fetchable source. The run is
// detached from the request: the handler answers 202 immediately and the
// pipeline reports failures through counters and notifications only.
type BatchFetchHandler struct{ Fetcher Fetcher }

func (h BatchFetchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), batchFetchTimeout)
		defer cancel()

		results, err := h.Fetcher.FetchAllSources(ctx)
		if err != nil {
			slog.Error("batch fetch failed", slog.Any("error", err))
			return
		}
		slog.Info("batch fetch finished",
			slog.Int("sources", results.Sources),
			slog.Int("added_videos", results.AddedVideos),
			slog.Int("deleted_videos", results.DeletedVideos),
			slog.Int("refreshed_videos", results.RefreshedVideos),
		)
	}()

	respond.JSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}
