package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"bachatlist/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type botAPI struct {
	mu       sync.Mutex
	calls    map[string]int
	messages []map[string]string
	webhook  string
}

func newBotAPI(t *testing.T) (*botAPI, *httptest.Server) {
	t.Helper()

	api := &botAPI{calls: make(map[string]int)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()

		// /bot<token>/<method>
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
		token := strings.TrimPrefix(parts[0], "bot")
		method := parts[len(parts)-1]

		api.mu.Lock()
		api.calls[method]++
		api.mu.Unlock()

		if token == "revoked" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
			return
		}

		switch method {
		case "getMe":
			_, _ = io.WriteString(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"BachatList","username":"bachatlist_bot"}}`)
		case "sendMessage":
			api.mu.Lock()
			api.messages = append(api.messages, map[string]string{
				"chat_id":    r.FormValue("chat_id"),
				"text":       r.FormValue("text"),
				"parse_mode": r.FormValue("parse_mode"),
			})
			api.mu.Unlock()
			if r.FormValue("chat_id") == "@missing" {
				_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
				return
			}
			_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":7,"date":1700000000,"chat":{"id":-100123,"type":"channel"},"text":"ok"}}`)
		case "setWebhook":
			api.mu.Lock()
			api.webhook = r.FormValue("url")
			api.mu.Unlock()
			_, _ = io.WriteString(w, `{"ok":true,"result":true,"description":"Webhook was set"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
		}
	}))
	t.Cleanup(srv.Close)

	return api, srv
}

func TestTelegram_Send(t *testing.T) {
	api, srv := newBotAPI(t)
	tg := NewTelegram(srv.URL+"/bot%s/%s", srv.Client(), zaptest.NewLogger(t))

	ch := models.Channel{ID: "tg-1", Type: models.ChannelTelegram, Token: "123:abc", Target: "-100123"}
	msg := Message{Text: "*Echo Dot* ₹2999.00", ParseMode: "Markdown"}

	require.NoError(t, tg.Send(context.Background(), ch, msg))
	require.NoError(t, tg.Send(context.Background(), ch, msg))

	assert.Equal(t, 1, api.calls["getMe"], "bot is authorised once per token")
	require.Len(t, api.messages, 2)
	assert.Equal(t, "-100123", api.messages[0]["chat_id"])
	assert.Equal(t, "*Echo Dot* ₹2999.00", api.messages[0]["text"])
	assert.Equal(t, "Markdown", api.messages[0]["parse_mode"])
}

func TestTelegram_SendToChannelUsername(t *testing.T) {
	api, srv := newBotAPI(t)
	tg := NewTelegram(srv.URL+"/bot%s/%s", srv.Client(), zaptest.NewLogger(t))

	err := tg.Send(context.Background(), models.Channel{Token: "123:abc", Target: "@missing"}, Message{Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
	assert.Equal(t, "@missing", api.messages[0]["chat_id"])
}

func TestTelegram_Errors(t *testing.T) {
	_, srv := newBotAPI(t)
	tg := NewTelegram(srv.URL+"/bot%s/%s", srv.Client(), zaptest.NewLogger(t))

	err := tg.Send(context.Background(), models.Channel{Target: "-1"}, Message{Text: "x"})
	assert.ErrorIs(t, err, ErrMissingToken)

	err = tg.Send(context.Background(), models.Channel{Token: "revoked", Target: "-1"}, Message{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or revoked")

	err = tg.Send(context.Background(), models.Channel{Token: "123:abc"}, Message{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat id is not configured")
}

func TestTelegram_TestConnectionAndWebhook(t *testing.T) {
	api, srv := newBotAPI(t)
	tg := NewTelegram(srv.URL+"/bot%s/%s", srv.Client(), zaptest.NewLogger(t))

	me, err := tg.TestConnection(context.Background(), "123:abc")
	require.NoError(t, err)
	assert.Equal(t, "bachatlist_bot", me.UserName)

	require.NoError(t, tg.SetWebhook(context.Background(), "123:abc", "https://bachatlist.in/api/telegram/webhook"))
	assert.Equal(t, "https://bachatlist.in/api/telegram/webhook", api.webhook)
}
