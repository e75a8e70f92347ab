package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultSection is the section tag assigned to freshly created chats.
const DefaultSection = "home"

// Chat is the stored document. A one-on-one chat has exactly two users and
// no admin; a group chat has an admin who is also a member.
type Chat struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	ChatName      string               `bson:"chatName" json:"chatName"`
	IsGroupChat   bool                 `bson:"isGroupChat" json:"isGroupChat"`
	Users         []primitive.ObjectID `bson:"users" json:"-"`
	GroupAdmin    *primitive.ObjectID  `bson:"groupAdmin,omitempty" json:"-"`
	LatestMessage *primitive.ObjectID  `bson:"latestMessage,omitempty" json:"-"`
	Section       string               `bson:"section" json:"section"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ChatView is a Chat with its user and message references resolved,
// which is what the HTTP surface returns.
type ChatView struct {
	Chat
	Users         []User       `json:"users"`
	GroupAdmin    *User        `json:"groupAdmin,omitempty"`
	LatestMessage *MessageView `json:"latestMessage,omitempty"`
}
