package auth

import (
	"context"
	"crypto/subtle"
	"net/http"

	resp "bachatlist/internal/lib/api/response"
	"bachatlist/internal/lib/jwt"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type contextKey string

const AdminIDKey contextKey = "admin_id"

// New admits requests carrying a valid admin token. Without a configured
// secret every request is rejected.
func New(log *zap.Logger, parser *jwt.Parser) func(next http.Handler) http.Handler {
	log = log.With(zap.String("component", "middleware/auth"))

	if parser == nil || parser.Secret == "" {
		log.Warn("JWT_SECRET is empty, admin API is disabled")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if parser == nil || parser.Secret == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Unauthorized"))
				return
			}

			claims, err := parser.ParseToken(r.Header.Get("Authorization"))
			if err != nil {
				log.Warn("rejected request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Error(err),
				)

				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Unauthorized"))
				return
			}

			if claims.Role != jwt.RoleAdmin {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("Forbidden"))
				return
			}

			ctx := context.WithValue(r.Context(), AdminIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CronSecret admits requests with "Authorization: Bearer <secret>". An empty
// secret rejects everything.
func CronSecret(secret string) func(next http.Handler) http.Handler {
	expected := []byte("Bearer " + secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("Authorization"))
			if secret == "" || subtle.ConstantTimeCompare(got, expected) != 1 {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminID returns the authenticated admin, if any.
func AdminID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AdminIDKey).(string)
	return id, ok
}
