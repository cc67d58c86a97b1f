package logs

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	resp "bachatlist/internal/lib/api/response"
	"bachatlist/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type Lister interface {
	ListLogs(ctx context.Context, typ models.LogType, limit int) ([]models.SyncLogEntry, error)
}

type Entry struct {
	ID        string           `json:"id"`
	NetworkID *string          `json:"networkId"`
	Type      models.LogType   `json:"type"`
	Action    models.LogAction `json:"action"`
	Status    models.LogStatus `json:"status"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
}

type Response struct {
	resp.Response
	Logs []Entry `json:"logs"`
}

// New lists sync log entries, newest first. ?type filters by subsystem.
func New(log *zap.Logger, lister Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		typ := models.LogType(strings.ToUpper(r.URL.Query().Get("type")))

		limit, ok := parseLimit(r.URL.Query().Get("limit"))
		if !ok {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid limit"))
			return
		}

		entries, err := lister.ListLogs(r.Context(), typ, limit)
		if err != nil {
			log.Error("failed to list logs", zap.Error(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))
			return
		}

		out := make([]Entry, 0, len(entries))
		for _, e := range entries {
			out = append(out, Entry{
				ID:        e.ID,
				NetworkID: e.NetworkID,
				Type:      e.Type,
				Action:    e.Action,
				Status:    e.Status,
				Message:   e.Message,
				CreatedAt: e.CreatedAt,
			})
		}

		render.JSON(w, r, Response{Response: resp.OK(), Logs: out})
	}
}

func parseLimit(s string) (int, bool) {
	if s == "" {
		return defaultLimit, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, true
}
