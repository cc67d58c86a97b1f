package cuelinks

import (
	"context"
	"errors"
	"net/http"

	"bachatlist/internal/cuelinks"
	resp "bachatlist/internal/lib/api/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type Syncer interface {
	Sync(ctx context.Context) (*cuelinks.ImportResult, error)
}

type Response struct {
	resp.Response
	Stats *cuelinks.ImportResult `json:"stats,omitempty"`
}

// New triggers a Cuelinks campaign import on demand.
func New(log *zap.Logger, syncer Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cuelinks.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		stats, err := syncer.Sync(r.Context())
		if errors.Is(err, cuelinks.ErrMissingAPIKey) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Cuelinks API key not configured"))
			return
		}
		if err != nil {
			log.Error("cuelinks sync failed", zap.Error(err))

			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, resp.Error("Failed to sync Cuelinks campaigns"))
			return
		}

		log.Info("cuelinks sync finished",
			zap.Int("fetched", stats.Fetched),
			zap.Int("imported", stats.Imported),
			zap.Int("failed", stats.Failed),
		)

		render.JSON(w, r, Response{Response: resp.OK(), Stats: stats})
	}
}
