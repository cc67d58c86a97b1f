package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bachatlist/internal/lib/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := AdminID(r.Context())
		if ok {
			w.Header().Set("X-Admin", id)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestNew(t *testing.T) {
	parser := jwt.New("secret")
	admin, err := parser.Issue("admin-1", jwt.RoleAdmin, time.Hour)
	require.NoError(t, err)
	editor, err := parser.Issue("editor-1", "EDITOR", time.Hour)
	require.NoError(t, err)

	h := New(zaptest.NewLogger(t), parser)(okHandler(t))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "admin", header: "Bearer " + admin, want: http.StatusOK},
		{name: "other role", header: "Bearer " + editor, want: http.StatusForbidden},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def.ghi", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "admin-1", rec.Header().Get("X-Admin"))
			} else {
				assert.Contains(t, rec.Body.String(), `"status":"Error"`)
			}
		})
	}
}

func TestNew_EmptySecretRejectsAll(t *testing.T) {
	forged, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, jwt.Claims{
		Role:             jwt.RoleAdmin,
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "intruder"},
	}).SignedString([]byte(""))
	require.NoError(t, err)

	h := New(zaptest.NewLogger(t), jwt.New(""))(okHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/api/amazon/config", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Admin"))
}

func TestCronSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{name: "match", secret: "s3cret", header: "Bearer s3cret", want: http.StatusOK},
		{name: "mismatch", secret: "s3cret", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "no header", secret: "s3cret", want: http.StatusUnauthorized},
		{name: "unset secret", secret: "", header: "Bearer ", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/cron/sync-prices", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			CronSecret(tt.secret)(okHandler(t)).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
