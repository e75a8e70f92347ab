package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FallbackPic is used when a user registers without a profile picture.
const FallbackPic = "https://icon-library.com/images/anonymous-avatar-icon/anonymous-avatar-icon-25.jpg"

// GoogleAuthSentinel marks accounts created through Google sign-in;
// such accounts carry no usable password hash.
const GoogleAuthSentinel = "google-auth"

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Pic       string             `bson:"pic" json:"pic"`
	Bio       string             `bson:"bio,omitempty" json:"bio,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
