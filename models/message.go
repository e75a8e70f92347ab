package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Sender    primitive.ObjectID `bson:"sender" json:"-"`
	Content   string             `bson:"content" json:"content"`
	Chat      primitive.ObjectID `bson:"chat" json:"chat"`
	Seen      bool               `bson:"seen" json:"seen"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// MessageSender is the slim sender profile attached to populated messages.
type MessageSender struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Pic   string             `json:"pic"`
	Email string             `json:"email"`
}

// MessageView is a Message with its sender resolved.
type MessageView struct {
	Message
	Sender MessageSender `json:"sender"`
}
