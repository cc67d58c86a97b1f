package amazon

import (
	"context"
	"net/http"

	"bachatlist/internal/catalog"
	resp "bachatlist/internal/lib/api/response"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type ProductGetter interface {
	GetProduct(ctx context.Context, asin string) (*catalog.ProductView, error)
}

type ProductResponse struct {
	resp.Response
	Product Product `json:"product"`
}

// GetProduct serves /api/amazon/product/{asin}.
func GetProduct(log *zap.Logger, getter ProductGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.amazon.GetProduct"

		asin := chi.URLParam(r, "asin")
		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("asin", asin),
		)

		view, err := getter.GetProduct(r.Context(), asin)
		if err != nil {
			status, msg := StatusFor(err)
			log.Error("failed to get product", zap.Error(err))

			render.Status(r, status)
			render.JSON(w, r, resp.Error(msg))
			return
		}

		if view.Cached {
			w.Header().Set("Cache-Control", "private, max-age=60")
		}

		render.JSON(w, r, ProductResponse{
			Response: resp.OK(),
			Product:  productFrom(*view),
		})
	}
}
