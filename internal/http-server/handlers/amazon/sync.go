package amazon

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bachatlist/internal/catalog"
	resp "bachatlist/internal/lib/api/response"
	"bachatlist/internal/models"
	"bachatlist/internal/monitor"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type PriceSyncer interface {
	RunPriceSync(ctx context.Context) (*monitor.Summary, error)
}

type StatusProvider interface {
	SyncStatus(ctx context.Context) (*catalog.SyncStatus, error)
}

type SyncResponse struct {
	resp.Response
	Message string           `json:"message"`
	Results *monitor.Summary `json:"results"`
}

// SyncPrices runs a price sync in the request.
func SyncPrices(log *zap.Logger, syncer PriceSyncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.amazon.SyncPrices"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		summary, err := syncer.RunPriceSync(r.Context())
		if err != nil {
			status, msg := StatusFor(err)
			log.Error("price sync failed", zap.Error(err))

			render.Status(r, status)
			render.JSON(w, r, resp.Error(msg))
			return
		}

		log.Info("price sync completed",
			zap.Int("success", summary.Success),
			zap.Int("failed", summary.Failed),
		)

		render.JSON(w, r, SyncResponse{
			Response: resp.OK(),
			Message: fmt.Sprintf("Price sync completed: %d synced, %d failed, %d price changes",
				summary.Success, summary.Failed, summary.PriceChanges),
			Results: summary,
		})
	}
}

type LastSync struct {
	Status    models.LogStatus `json:"status"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
}

type SyncStats struct {
	TotalLinkedProducts int `json:"totalLinkedProducts"`
	RecentlyChecked     int `json:"recentlyChecked"`
}

type StatusResponse struct {
	resp.Response
	LastSync *LastSync `json:"lastSync"`
	Stats    SyncStats `json:"stats"`
}

// SyncStatus reports the last batch and the linked product counters.
func SyncStatus(log *zap.Logger, provider StatusProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.amazon.SyncStatus"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		status, err := provider.SyncStatus(r.Context())
		if err != nil {
			log.Error("failed to fetch sync status", zap.Error(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Failed to fetch sync status"))
			return
		}

		out := StatusResponse{
			Response: resp.OK(),
			Stats: SyncStats{
				TotalLinkedProducts: status.TotalLinked,
				RecentlyChecked:     status.RecentlyChecked,
			},
		}
		if status.LastSync != nil {
			out.LastSync = &LastSync{
				Status:    status.LastSync.Status,
				Message:   status.LastSync.Message,
				CreatedAt: status.LastSync.CreatedAt,
			}
		}

		render.JSON(w, r, out)
	}
}
