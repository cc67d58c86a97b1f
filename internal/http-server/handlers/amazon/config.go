package amazon

import (
	"context"
	"errors"
	"io"
	"net/http"

	"bachatlist/internal/database"
	resp "bachatlist/internal/lib/api/response"
	"bachatlist/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ConfigStore interface {
	LatestAmazonConfig(ctx context.Context) (*models.AmazonConfig, error)
	SaveAmazonConfig(ctx context.Context, c *models.AmazonConfig) error
	DeleteAmazonConfigs(ctx context.Context) (int64, error)
}

type ConfigRequest struct {
	AssociateTag string `json:"associateTag" validate:"required"`
	AccessKey    string `json:"accessKey" validate:"required"`
	SecretKey    string `json:"secretKey" validate:"required"`
	Region       string `json:"region,omitempty" validate:"omitempty,len=2"`
	Marketplace  string `json:"marketplace,omitempty"`
	IsActive     *bool  `json:"isActive,omitempty"`
}

type ConfigResponse struct {
	resp.Response
	Message string  `json:"message,omitempty"`
	Config  *Config `json:"config,omitempty"`
}

// GetConfig returns the stored credential set without its keys.
func GetConfig(log *zap.Logger, store ConfigStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.amazon.GetConfig"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		cfg, err := store.LatestAmazonConfig(r.Context())
		if errors.Is(err, database.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("Amazon configuration not found"))
			return
		}
		if err != nil {
			log.Error("failed to load config", zap.Error(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))
			return
		}

		out := configFrom(cfg)
		render.JSON(w, r, ConfigResponse{Response: resp.OK(), Config: &out})
	}
}

// SaveConfig stores the credentials, replacing any earlier set.
func SaveConfig(log *zap.Logger, store ConfigStore, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.amazon.SaveConfig"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req ConfigRequest

		err := render.DecodeJSON(r.Body, &req)
		if errors.Is(err, io.EOF) {
			log.Error("request body is empty")

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

			log.Warn("invalid config request", zap.Error(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))
			return
		}

		cfg := &models.AmazonConfig{
			AssociateTag: req.AssociateTag,
			AccessKey:    req.AccessKey,
			SecretKey:    req.SecretKey,
			Region:       req.Region,
			Marketplace:  req.Marketplace,
			IsActive:     true,
		}
		if cfg.Region == "" {
			cfg.Region = "in"
		}
		if cfg.Marketplace == "" {
			cfg.Marketplace = "IN"
		}
		if req.IsActive != nil {
			cfg.IsActive = *req.IsActive
		}

		if err := store.SaveAmazonConfig(r.Context(), cfg); err != nil {
			log.Error("failed to save config", zap.Error(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))
			return
		}

		log.Info("amazon config saved", zap.String("id", cfg.ID), zap.Bool("active", cfg.IsActive))

		out := configFrom(cfg)
		render.JSON(w, r, ConfigResponse{
			Response: resp.OK(),
			Message:  "Amazon configuration saved successfully",
			Config:   &out,
		})
	}
}

// DeleteConfig removes the stored credentials.
func DeleteConfig(log *zap.Logger, store ConfigStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.amazon.DeleteConfig"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		n, err := store.DeleteAmazonConfigs(r.Context())
		if err != nil {
			log.Error("failed to delete config", zap.Error(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))
			return
		}
		if n == 0 {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("Amazon configuration not found"))
			return
		}

		log.Info("amazon config deleted", zap.Int64("rows", n))

		render.JSON(w, r, ConfigResponse{
			Response: resp.OK(),
			Message:  "Amazon configuration deleted",
		})
	}
}
