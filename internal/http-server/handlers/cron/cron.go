package cron

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"bachatlist/internal/cuelinks"
	resp "bachatlist/internal/lib/api/response"
	"bachatlist/internal/models"
	"bachatlist/internal/monitor"
	"bachatlist/internal/notify"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

const networkID = "cron"

type PriceSyncer interface {
	RunPriceSync(ctx context.Context) (*monitor.Summary, error)
}

type CampaignSyncer interface {
	Sync(ctx context.Context) (*cuelinks.ImportResult, error)
}

type Digester interface {
	SendNewDealDigest(ctx context.Context) (notify.Report, error)
}

type LogWriter interface {
	AppendLog(ctx context.Context, e models.SyncLogEntry) error
}

type Response struct {
	resp.Response
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// SyncPrices is the scheduler entry point for the price sync.
func SyncPrices(log *zap.Logger, syncer PriceSyncer, logs LogWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cron.SyncPrices"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		summary, err := syncer.RunPriceSync(r.Context())
		if errors.Is(err, monitor.ErrSyncInProgress) {
			log.Info("price sync already running, skipping")

			render.Status(r, http.StatusConflict)
			render.JSON(w, r, resp.Error("A price sync is already running"))
			return
		}
		if err != nil {
			log.Error("scheduled price sync failed", zap.Error(err))
			appendLog(r.Context(), log, logs, models.ActionPriceSync, models.StatusFailed, err.Error())

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))
			return
		}

		msg := fmt.Sprintf("Synced %d products, %d failed", summary.Success, summary.Failed)
		appendLog(r.Context(), log, logs, models.ActionPriceSync, summary.Status, msg)

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  msg,
			Results:  summary,
		})
	}
}

// Cuelinks runs the scheduled Cuelinks campaign import.
func Cuelinks(log *zap.Logger, importer CampaignSyncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cron.Cuelinks"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		result, err := importer.Sync(r.Context())
		if err != nil {
			log.Error("scheduled cuelinks sync failed", zap.Error(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))
			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message: fmt.Sprintf("Imported %d campaigns, updated %d",
				result.Imported, result.Updated),
			Results: result,
		})
	}
}

// Notifications sends the new-deal digest.
func Notifications(log *zap.Logger, digest Digester, logs LogWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cron.Notifications"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		report, err := digest.SendNewDealDigest(r.Context())
		if err != nil {
			log.Error("digest failed", zap.Error(err))
			appendLog(r.Context(), log, logs, models.ActionNotifications, models.StatusFailed, err.Error())

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))
			return
		}

		msg := fmt.Sprintf("Notified %d channels", report.Delivered)
		appendLog(r.Context(), log, logs, models.ActionNotifications,
			models.BatchStatus(report.Delivered, report.Failed), msg)

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  msg,
			Results:  report,
		})
	}
}

func appendLog(ctx context.Context, log *zap.Logger, logs LogWriter, action models.LogAction, status models.LogStatus, msg string) {
	network := networkID
	err := logs.AppendLog(context.WithoutCancel(ctx), models.SyncLogEntry{
		NetworkID: &network,
		Type:      models.LogCron,
		Action:    action,
		Status:    status,
		Message:   msg,
	})
	if err != nil {
		log.Warn("failed to write cron log", zap.Error(err))
	}
}
