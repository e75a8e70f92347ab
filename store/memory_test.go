package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vybsync/models"
)

func TestMemoryChatStoreFindOneOnOne(t *testing.T) {
	ctx := context.Background()
	chats := NewMemoryChatStore()

	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	direct := &models.Chat{IsGroupChat: false, Users: []primitive.ObjectID{a, b}}
	require.NoError(t, chats.Create(ctx, direct))

	group := &models.Chat{IsGroupChat: true, Users: []primitive.ObjectID{a, b, c}}
	require.NoError(t, chats.Create(ctx, group))

	found, err := chats.FindOneOnOne(ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, direct.ID, found.ID, "group chats must never match")

	_, err = chats.FindOneOnOne(ctx, a, c)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryChatStoreForUserSortsByUpdate(t *testing.T) {
	ctx := context.Background()
	chats := NewMemoryChatStore()
	user := primitive.NewObjectID()

	older := &models.Chat{Users: []primitive.ObjectID{user, primitive.NewObjectID()}}
	require.NoError(t, chats.Create(ctx, older))
	time.Sleep(2 * time.Millisecond)

	newer := &models.Chat{Users: []primitive.ObjectID{user, primitive.NewObjectID()}}
	require.NoError(t, chats.Create(ctx, newer))

	list, err := chats.ForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	// touching the older chat moves it to the front
	time.Sleep(2 * time.Millisecond)
	_, err = chats.SetSection(ctx, older.ID, "work")
	require.NoError(t, err)

	list, err = chats.ForUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, older.ID, list[0].ID)
}

func TestMemoryMessageStoreLatestAndSeen(t *testing.T) {
	ctx := context.Background()
	messages := NewMemoryMessageStore()
	chatID := primitive.NewObjectID()

	_, err := messages.LatestInChat(ctx, chatID)
	assert.ErrorIs(t, err, ErrNotFound)

	first := &models.Message{Chat: chatID, Sender: primitive.NewObjectID(), Content: "first"}
	require.NoError(t, messages.Create(ctx, first))
	time.Sleep(2 * time.Millisecond)
	second := &models.Message{Chat: chatID, Sender: primitive.NewObjectID(), Content: "second"}
	require.NoError(t, messages.Create(ctx, second))

	latest, err := messages.LatestInChat(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	require.NoError(t, messages.MarkChatSeen(ctx, chatID))
	list, err := messages.ByChat(ctx, chatID)
	require.NoError(t, err)
	for _, m := range list {
		assert.True(t, m.Seen)
	}
}

func TestMemoryUserStoreSearch(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserStore()

	alice := &models.User{Name: "Alice", Email: "alice@example.com"}
	bob := &models.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	found, err := users.Search(ctx, "ALICE", bob.ID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, alice.ID, found[0].ID)

	// the excluded user never appears, even with an empty keyword
	found, err = users.Search(ctx, "", alice.ID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, bob.ID, found[0].ID)
}
