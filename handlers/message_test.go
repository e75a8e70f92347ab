package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (e *testEnv) oneOnOneChat(t *testing.T, a, b testUser) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/chats", a.Token, gin.H{"userId": b.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["_id"].(string)
}

func (e *testEnv) sendMessage(t *testing.T, sender testUser, chatID, content string) map[string]any {
	t.Helper()
	w := e.do(t, http.MethodPost, "/messages", sender.Token, gin.H{
		"chatId":  chatID,
		"content": content,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)
}

func (e *testEnv) latestMessageID(t *testing.T, chatID string) *primitive.ObjectID {
	t.Helper()
	oid, err := primitive.ObjectIDFromHex(chatID)
	require.NoError(t, err)
	chat, err := e.chats.ByID(context.Background(), oid)
	require.NoError(t, err)
	return chat.LatestMessage
}

func TestSendMessageValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")
	chatID := env.oneOnOneChat(t, alice, bob)

	w := env.do(t, http.MethodPost, "/messages", alice.Token, gin.H{"chatId": chatID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/messages", alice.Token, gin.H{"content": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessageUpdatesLatestPointer(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")
	chatID := env.oneOnOneChat(t, alice, bob)

	msg := env.sendMessage(t, alice, chatID, "hi")
	assert.Equal(t, false, msg["seen"])
	assert.Equal(t, "Alice", msg["sender"].(map[string]any)["name"])
	assert.Equal(t, "alice@example.com", msg["sender"].(map[string]any)["email"])

	latest := env.latestMessageID(t, chatID)
	require.NotNil(t, latest)
	assert.Equal(t, msg["_id"].(string), latest.Hex())

	msg2 := env.sendMessage(t, bob, chatID, "hello")
	latest = env.latestMessageID(t, chatID)
	require.NotNil(t, latest)
	assert.Equal(t, msg2["_id"].(string), latest.Hex())
}

func TestFetchMessagesMarksSeenIdempotently(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")
	chatID := env.oneOnOneChat(t, alice, bob)

	env.sendMessage(t, alice, chatID, "one")
	env.sendMessage(t, alice, chatID, "two")

	// first fetch returns the pre-flip state and marks everything seen
	w := env.do(t, http.MethodGet, "/messages/"+chatID, bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	messages := decodeList(t, w)
	require.Len(t, messages, 2)
	assert.Equal(t, "one", messages[0]["content"])
	assert.Equal(t, "two", messages[1]["content"])
	for _, m := range messages {
		assert.Equal(t, false, m["seen"])
	}

	// second fetch observes the flip; fetching again changes nothing
	for i := 0; i < 2; i++ {
		w = env.do(t, http.MethodGet, "/messages/"+chatID, bob.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		for _, m := range decodeList(t, w) {
			assert.Equal(t, true, m["seen"])
		}
	}
}

func TestDeleteMessageSenderOnly(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")
	chatID := env.oneOnOneChat(t, alice, bob)

	msg := env.sendMessage(t, alice, chatID, "mine")
	msgID := msg["_id"].(string)

	w := env.do(t, http.MethodDelete, "/messages/"+msgID, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// still there
	w = env.do(t, http.MethodGet, "/messages/"+chatID, alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)

	w = env.do(t, http.MethodDelete, "/messages/"+msgID, alice.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/messages/"+primitive.NewObjectID().Hex(), alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteLatestMessageRecomputesPointer(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")
	chatID := env.oneOnOneChat(t, alice, bob)

	first := env.sendMessage(t, alice, chatID, "first")
	time.Sleep(2 * time.Millisecond)
	second := env.sendMessage(t, alice, chatID, "second")

	w := env.do(t, http.MethodDelete, "/messages/"+second["_id"].(string), alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	latest := env.latestMessageID(t, chatID)
	require.NotNil(t, latest)
	assert.Equal(t, first["_id"].(string), latest.Hex())

	// deleting a non-latest message leaves the pointer alone
	third := env.sendMessage(t, alice, chatID, "third")
	w = env.do(t, http.MethodDelete, "/messages/"+first["_id"].(string), alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	latest = env.latestMessageID(t, chatID)
	require.NotNil(t, latest)
	assert.Equal(t, third["_id"].(string), latest.Hex())

	// deleting the last remaining message clears the pointer
	w = env.do(t, http.MethodDelete, "/messages/"+third["_id"].(string), alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, env.latestMessageID(t, chatID))
}

func TestSendMessageReachesJoinedSocket(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")
	chatID := env.oneOnOneChat(t, alice, bob)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn, _, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(gin.H{"event": "joinChat", "payload": chatID}))

	deadline := time.Now().Add(2 * time.Second)
	for env.hub.RoomSize(chatID) == 0 {
		require.True(t, time.Now().Before(deadline), "socket never joined the room")
		time.Sleep(5 * time.Millisecond)
	}

	env.sendMessage(t, alice, chatID, "hi")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev struct {
		Event   string         `json:"event"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "messageReceived", ev.Event)
	assert.Equal(t, "hi", ev.Payload["content"])
	assert.Equal(t, chatID, ev.Payload["chat"])

	sender, ok := ev.Payload["sender"].(map[string]any)
	require.True(t, ok, "broadcast message must carry a populated sender")
	assert.Equal(t, "Alice", sender["name"])
	assert.Equal(t, "alice@example.com", sender["email"])
}

func TestDeleteMessageEmitsToRoom(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")
	chatID := env.oneOnOneChat(t, alice, bob)

	msg := env.sendMessage(t, alice, chatID, "oops")
	msgID := msg["_id"].(string)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn, _, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(gin.H{"event": "joinChat", "payload": chatID}))
	deadline := time.Now().Add(2 * time.Second)
	for env.hub.RoomSize(chatID) == 0 {
		require.True(t, time.Now().Before(deadline), "socket never joined the room")
		time.Sleep(5 * time.Millisecond)
	}

	w := env.do(t, http.MethodDelete, "/messages/"+msgID, alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev struct {
		Event   string            `json:"event"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "messageDeleted", ev.Event)
	assert.Equal(t, msgID, ev.Payload["messageId"])
}
