package amazon

import (
	"context"
	"errors"
	"io"
	"net/http"

	"bachatlist/internal/catalog"
	resp "bachatlist/internal/lib/api/response"
	"bachatlist/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Importer interface {
	ImportAsDeal(ctx context.Context, req catalog.ImportRequest) (*models.Deal, *models.CatalogProduct, error)
}

type ImportRequest struct {
	ASIN          string              `json:"asin" validate:"required"`
	CategoryID    string              `json:"categoryId,omitempty"`
	Title         string              `json:"title,omitempty"`
	Description   string              `json:"description,omitempty"`
	ShortDesc     string              `json:"shortDesc,omitempty"`
	CurrentPrice  decimal.NullDecimal `json:"currentPrice"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
}

type ImportResponse struct {
	resp.Response
	Deal    Deal    `json:"deal"`
	Product Product `json:"product"`
}

// Import turns a catalog product into a draft deal.
func Import(log *zap.Logger, importer Importer, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.amazon.Import"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req ImportRequest

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

			log.Warn("invalid import request", zap.Error(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))
			return
		}

		deal, product, err := importer.ImportAsDeal(r.Context(), catalog.ImportRequest{
			ASIN:          req.ASIN,
			CategoryID:    req.CategoryID,
			Title:         req.Title,
			Description:   req.Description,
			ShortDesc:     req.ShortDesc,
			CurrentPrice:  req.CurrentPrice,
			OriginalPrice: req.OriginalPrice,
		})
		if err != nil {
			status, msg := StatusFor(err)
			log.Error("import failed", zap.String("asin", req.ASIN), zap.Error(err))

			render.Status(r, status)
			render.JSON(w, r, resp.Error(msg))
			return
		}

		log.Info("product imported", zap.String("asin", req.ASIN), zap.String("deal_id", deal.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, ImportResponse{
			Response: resp.OK(),
			Deal:     dealFrom(deal),
			Product: productFrom(catalog.ProductView{
				CatalogProduct: *product,
				AffiliateURL:   deal.AffiliateURL,
			}),
		})
	}
}
