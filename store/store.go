// Package store holds the persistence layer: one interface per collection
// with a MongoDB implementation for production and an in-memory one used by
// tests. Handlers only ever see the interfaces.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vybsync/models"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// UserUpdate carries a partial profile update; nil fields are left untouched.
type UserUpdate struct {
	Name  *string
	Email *string
	Bio   *string
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	// Search matches name or email case-insensitively, excluding one user.
	// An empty keyword matches everyone.
	Search(ctx context.Context, keyword string, exclude primitive.ObjectID) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error)
}

type ChatStore interface {
	Create(ctx context.Context, c *models.Chat) error
	ByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	// FindOneOnOne returns the non-group chat containing both users,
	// or ErrNotFound.
	FindOneOnOne(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error)
	// ForUser lists every chat the user is a member of, most recently
	// updated first.
	ForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error)
	SetName(ctx context.Context, id primitive.ObjectID, name string) (*models.Chat, error)
	AddMember(ctx context.Context, id, userID primitive.ObjectID) (*models.Chat, error)
	RemoveMember(ctx context.Context, id, userID primitive.ObjectID) (*models.Chat, error)
	SetSection(ctx context.Context, id primitive.ObjectID, section string) (*models.Chat, error)
	// SetLatestMessage updates the chat's latest-message pointer; a nil
	// msgID clears it.
	SetLatestMessage(ctx context.Context, id primitive.ObjectID, msgID *primitive.ObjectID) error
}

type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	ByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	// ByChat lists a chat's messages oldest first.
	ByChat(ctx context.Context, chatID primitive.ObjectID) ([]models.Message, error)
	// MarkChatSeen flips every unseen message in the chat to seen.
	MarkChatSeen(ctx context.Context, chatID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// LatestInChat returns the newest message of the chat, or ErrNotFound
	// when the chat has none left.
	LatestInChat(ctx context.Context, chatID primitive.ObjectID) (*models.Message, error)
}
