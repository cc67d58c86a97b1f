package amazon

import (
	"context"
	"net/http"
	"strconv"

	"bachatlist/internal/amazon"
	"bachatlist/internal/catalog"
	resp "bachatlist/internal/lib/api/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Searcher interface {
	Search(ctx context.Context, params amazon.SearchParams) (*catalog.SearchView, error)
}

type SearchRequest struct {
	Keywords string `validate:"required"`
	Category string
	Page     int    `validate:"gte=0,lte=10"`
	SortBy   string `validate:"omitempty,oneof=Relevance Price:HighToLow Price:LowToHigh AvgCustomerReviews NewestArrivals Featured"`
	MinPrice string `validate:"omitempty,numeric"`
	MaxPrice string `validate:"omitempty,numeric"`
}

type SearchResponse struct {
	resp.Response
	Items        []Product `json:"items"`
	TotalResults int       `json:"totalResults"`
	Page         int       `json:"page"`
	Region       string    `json:"region"`
}

// Search runs a keyword search from query parameters.
func Search(log *zap.Logger, searcher Searcher, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.amazon.Search"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()
		req := SearchRequest{
			Keywords: q.Get("keywords"),
			Category: q.Get("category"),
			SortBy:   q.Get("sortBy"),
			MinPrice: q.Get("minPrice"),
			MaxPrice: q.Get("maxPrice"),
		}
		if page := q.Get("page"); page != "" {
			n, err := strconv.Atoi(page)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Invalid page"))
				return
			}
			req.Page = n
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Warn("invalid search request", zap.Error(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))
			return
		}

		params := amazon.SearchParams{
			Keywords: req.Keywords,
			Category: req.Category,
			Page:     req.Page,
			SortBy:   amazon.SortBy(req.SortBy),
			MinPrice: optionalDecimal(req.MinPrice),
			MaxPrice: optionalDecimal(req.MaxPrice),
		}

		view, err := searcher.Search(r.Context(), params)
		if err != nil {
			status, msg := StatusFor(err)
			log.Error("search failed", zap.Error(err))

			render.Status(r, status)
			render.JSON(w, r, resp.Error(msg))
			return
		}

		items := make([]Product, 0, len(view.Items))
		for _, v := range view.Items {
			items = append(items, productFrom(v))
		}

		render.JSON(w, r, SearchResponse{
			Response:     resp.OK(),
			Items:        items,
			TotalResults: view.TotalResults,
			Page:         view.Page,
			Region:       view.Region,
		})
	}
}

func optionalDecimal(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
