package router

import (
	"context"
	"net/http"

	"bachatlist/internal/http-server/handlers/amazon"
	"bachatlist/internal/http-server/handlers/cron"
	"bachatlist/internal/http-server/handlers/cuelinks"
	"bachatlist/internal/http-server/handlers/logs"
	"bachatlist/internal/http-server/handlers/telegram"
	"bachatlist/internal/http-server/middleware/auth"
	"bachatlist/internal/lib/jwt"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Store is the persistence the admin API reads directly.
type Store interface {
	amazon.ConfigStore
	logs.Lister
	telegram.Store
	Ping(ctx context.Context) error
}

type Catalog interface {
	amazon.StatusProvider
	amazon.Searcher
	amazon.ProductGetter
	amazon.Importer
	amazon.Linker
}

type Deps struct {
	Store      Store
	Syncer     amazon.PriceSyncer
	Catalog    Catalog
	Cuelinks   cuelinks.Syncer
	Digest     cron.Digester
	Bot        telegram.Bot
	JWT        *jwt.Parser
	CronSecret string
}

// New mounts the health, metrics, cron and admin routes.
func New(log *zap.Logger, deps Deps) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", health(log, deps.Store))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/cron", func(r chi.Router) {
		r.Use(auth.CronSecret(deps.CronSecret))

		r.Post("/sync-prices", cron.SyncPrices(log, deps.Syncer, deps.Store))
		r.Post("/cuelinks", cron.Cuelinks(log, deps.Cuelinks))
		r.Post("/notifications", cron.Notifications(log, deps.Digest, deps.Store))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.New(log, deps.JWT))

		r.Route("/amazon", func(r chi.Router) {
			r.Post("/sync-prices", amazon.SyncPrices(log, deps.Syncer))
			r.Get("/sync-prices", amazon.SyncStatus(log, deps.Catalog))
			r.Get("/search", amazon.Search(log, deps.Catalog, validate))
			r.Get("/product/{asin}", amazon.GetProduct(log, deps.Catalog))
			r.Post("/import", amazon.Import(log, deps.Catalog, validate))
			r.Post("/link", amazon.Link(log, deps.Catalog))

			r.Get("/config", amazon.GetConfig(log, deps.Store))
			r.Post("/config", amazon.SaveConfig(log, deps.Store, validate))
			r.Delete("/config", amazon.DeleteConfig(log, deps.Store))
		})

		r.Post("/cuelinks/sync", cuelinks.New(log, deps.Cuelinks))
		r.Get("/logs", logs.New(log, deps.Store))

		r.Post("/telegram/{id}/test", telegram.Test(log, deps.Store, deps.Bot))
		r.Post("/telegram/{id}/webhook", telegram.Webhook(log, deps.Store, deps.Bot, validate))
	})

	return r
}

func health(log *zap.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			log.Error("health check failed", zap.Error(err))

			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{"status": "unavailable"})
			return
		}
		render.JSON(w, r, map[string]string{"status": "ok"})
	}
}
