package amazon

import (
	"context"
	"io"
	"net/http"

	"bachatlist/internal/catalog"
	resp "bachatlist/internal/lib/api/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

const maxUploadSize = 10 << 20

type Linker interface {
	BulkLink(ctx context.Context, r io.Reader) (*catalog.LinkResult, error)
}

type LinkResponse struct {
	resp.Response
	Requested int      `json:"requested"`
	Cached    []string `json:"cached"`
	Missing   []string `json:"missing"`
	Linked    int      `json:"linked"`
}

// Link caches every ASIN listed in an uploaded xlsx sheet.
func Link(log *zap.Logger, linker Linker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.amazon.Link"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			log.Error("failed to parse upload", zap.Error(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid upload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			log.Error("file field is missing", zap.Error(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("field file is a required field"))
			return
		}
		defer file.Close()

		result, err := linker.BulkLink(r.Context(), file)
		if err != nil {
			status, msg := StatusFor(err)
			log.Error("bulk link failed", zap.String("filename", header.Filename), zap.Error(err))

			render.Status(r, status)
			render.JSON(w, r, resp.Error(msg))
			return
		}

		log.Info("bulk link finished",
			zap.String("filename", header.Filename),
			zap.Int("requested", result.Requested),
			zap.Int("missing", len(result.Missing)),
		)

		render.JSON(w, r, LinkResponse{
			Response:  resp.OK(),
			Requested: result.Requested,
			Cached:    nonNil(result.Cached),
			Missing:   nonNil(result.Missing),
			Linked:    result.Linked,
		})
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
