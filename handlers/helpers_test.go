package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vybsync/config"
	"vybsync/handlers"
	"vybsync/routes"
	"vybsync/store"
	"vybsync/websocket"
)

type testEnv struct {
	router   *gin.Engine
	hub      *websocket.Hub
	users    *store.MemoryUserStore
	chats    *store.MemoryChatStore
	messages *store.MemoryMessageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:   "test-secret",
		FrontendURL: "http://localhost:5173",
		CORSOrigin:  "http://localhost:5173",
	}
	env := &testEnv{
		hub:      websocket.NewHub(zap.NewNop().Sugar()),
		users:    store.NewMemoryUserStore(),
		chats:    store.NewMemoryChatStore(),
		messages: store.NewMemoryMessageStore(),
	}
	api := handlers.New(cfg, zap.NewNop().Sugar(), env.hub, env.users, env.chats, env.messages)
	env.router = routes.Setup(api, env.hub, cfg, env.users)
	return env
}

type testUser struct {
	ID    string
	Token string
}

func (e *testEnv) register(t *testing.T, name, email string) testUser {
	t.Helper()
	w := e.do(t, http.MethodPost, "/users", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "pass1234",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	return testUser{ID: body["_id"].(string), Token: body["token"].(string)}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func memberIDs(t *testing.T, chat map[string]any) []string {
	t.Helper()
	raw, ok := chat["users"].([]any)
	require.True(t, ok, "chat has no users array")
	ids := make([]string, 0, len(raw))
	for _, u := range raw {
		ids = append(ids, u.(map[string]any)["_id"].(string))
	}
	return ids
}
