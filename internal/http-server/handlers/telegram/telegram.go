package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"bachatlist/internal/database"
	resp "bachatlist/internal/lib/api/response"
	"bachatlist/internal/models"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	validator "github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Store interface {
	GetChannel(ctx context.Context, id string) (*models.Channel, error)
	AppendLog(ctx context.Context, e models.SyncLogEntry) error
}

type Bot interface {
	TestConnection(ctx context.Context, token string) (*tgbotapi.User, error)
	SetWebhook(ctx context.Context, token, url string) error
}

type BotInfo struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
}

type TestResponse struct {
	resp.Response
	Bot *BotInfo `json:"bot,omitempty"`
}

type WebhookRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type WebhookResponse struct {
	resp.Response
	Message string `json:"message,omitempty"`
}

// Test calls getMe with the channel's token and records the outcome.
func Test(log *zap.Logger, store Store, bot Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.telegram.Test"

		id := chi.URLParam(r, "id")
		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("channel_id", id),
		)

		ch, ok := telegramChannel(w, r, log, store, id)
		if !ok {
			return
		}

		me, err := bot.TestConnection(r.Context(), ch.Token)
		if err != nil {
			log.Warn("telegram connection test failed", zap.Error(err))
			appendLog(r.Context(), log, store, ch.ID, models.ActionTest, models.StatusFailed, err.Error())

			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, resp.Error(err.Error()))
			return
		}

		appendLog(r.Context(), log, store, ch.ID, models.ActionTest, models.StatusSuccess,
			fmt.Sprintf("Connected as @%s", me.UserName))

		render.JSON(w, r, TestResponse{
			Response: resp.OK(),
			Bot: &BotInfo{
				ID:        me.ID,
				Username:  me.UserName,
				FirstName: me.FirstName,
			},
		})
	}
}

// Webhook points the channel's bot at url.
func Webhook(log *zap.Logger, store Store, bot Bot, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.telegram.Webhook"

		id := chi.URLParam(r, "id")
		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("channel_id", id),
		)

		var req WebhookRequest

		err := render.DecodeJSON(r.Body, &req)
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("empty request"))
			return
		}
		if err != nil {
			log.Error("failed to decode request body", zap.Error(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("failed to decode request"))
			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))
			return
		}

		ch, ok := telegramChannel(w, r, log, store, id)
		if !ok {
			return
		}

		if err := bot.SetWebhook(r.Context(), ch.Token, req.URL); err != nil {
			log.Warn("failed to set webhook", zap.Error(err))
			appendLog(r.Context(), log, store, ch.ID, models.ActionWebhook, models.StatusFailed, err.Error())

			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, resp.Error(err.Error()))
			return
		}

		appendLog(r.Context(), log, store, ch.ID, models.ActionWebhook, models.StatusSuccess,
			fmt.Sprintf("Webhook set to %s", req.URL))

		render.JSON(w, r, WebhookResponse{
			Response: resp.OK(),
			Message:  "Webhook configured",
		})
	}
}

func telegramChannel(w http.ResponseWriter, r *http.Request, log *zap.Logger, store Store, id string) (*models.Channel, bool) {
	ch, err := store.GetChannel(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, resp.Error("Channel not found"))
		return nil, false
	}
	if err != nil {
		log.Error("failed to load channel", zap.Error(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, resp.Error("Internal error"))
		return nil, false
	}
	if ch.Type != models.ChannelTelegram {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.Error("Channel is not a Telegram channel"))
		return nil, false
	}
	return ch, true
}

func appendLog(ctx context.Context, log *zap.Logger, store Store, channelID string, action models.LogAction, status models.LogStatus, msg string) {
	err := store.AppendLog(context.WithoutCancel(ctx), models.SyncLogEntry{
		NetworkID: &channelID,
		Type:      models.LogTelegram,
		Action:    action,
		Status:    status,
		Message:   msg,
	})
	if err != nil {
		log.Warn("failed to write telegram log", zap.Error(err))
	}
}
