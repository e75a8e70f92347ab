package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vybsync/models"
)

type MongoUserStore struct {
	col *mongo.Collection
}

func NewMongoUserStore(col *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{col: col}
}

func (s *MongoUserStore) Create(ctx context.Context, u *models.User) error {
	now := time.Now()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.col.InsertOne(ctx, u)
	return err
}

func (s *MongoUserStore) ByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoUserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoUserStore) ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoUserStore) Search(ctx context.Context, keyword string, exclude primitive.ObjectID) ([]models.User, error) {
	filter := bson.M{"_id": bson.M{"$ne": exclude}}
	if keyword != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": keyword, "$options": "i"}},
			{"email": bson.M{"$regex": keyword, "$options": "i"}},
		}
	}

	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoUserStore) Update(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type MongoChatStore struct {
	col *mongo.Collection
}

func NewMongoChatStore(col *mongo.Collection) *MongoChatStore {
	return &MongoChatStore{col: col}
}

func (s *MongoChatStore) Create(ctx context.Context, c *models.Chat) error {
	now := time.Now()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := s.col.InsertOne(ctx, c)
	return err
}

func (s *MongoChatStore) ByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var c models.Chat
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoChatStore) FindOneOnOne(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	filter := bson.M{
		"isGroupChat": false,
		"users":       bson.M{"$all": bson.A{a, b}},
	}

	var c models.Chat
	err := s.col.FindOne(ctx, filter).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoChatStore) ForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.M{"users": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chats []models.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *MongoChatStore) SetName(ctx context.Context, id primitive.ObjectID, name string) (*models.Chat, error) {
	return s.update(ctx, id, bson.M{"$set": bson.M{"chatName": name, "updatedAt": time.Now()}})
}

func (s *MongoChatStore) AddMember(ctx context.Context, id, userID primitive.ObjectID) (*models.Chat, error) {
	return s.update(ctx, id, bson.M{
		"$addToSet": bson.M{"users": userID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

func (s *MongoChatStore) RemoveMember(ctx context.Context, id, userID primitive.ObjectID) (*models.Chat, error) {
	return s.update(ctx, id, bson.M{
		"$pull": bson.M{"users": userID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

func (s *MongoChatStore) SetSection(ctx context.Context, id primitive.ObjectID, section string) (*models.Chat, error) {
	return s.update(ctx, id, bson.M{"$set": bson.M{"section": section, "updatedAt": time.Now()}})
}

func (s *MongoChatStore) SetLatestMessage(ctx context.Context, id primitive.ObjectID, msgID *primitive.ObjectID) error {
	set := bson.M{"latestMessage": msgID, "updatedAt": time.Now()}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoChatStore) update(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Chat, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Chat
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type MongoMessageStore struct {
	col *mongo.Collection
}

func NewMongoMessageStore(col *mongo.Collection) *MongoMessageStore {
	return &MongoMessageStore{col: col}
}

func (s *MongoMessageStore) Create(ctx context.Context, m *models.Message) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt = time.Now()
	_, err := s.col.InsertOne(ctx, m)
	return err
}

func (s *MongoMessageStore) ByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var m models.Message
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MongoMessageStore) ByChat(ctx context.Context, chatID primitive.ObjectID) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.col.Find(ctx, bson.M{"chat": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MongoMessageStore) MarkChatSeen(ctx context.Context, chatID primitive.ObjectID) error {
	_, err := s.col.UpdateMany(ctx,
		bson.M{"chat": chatID, "seen": false},
		bson.M{"$set": bson.M{"seen": true}},
	)
	return err
}

func (s *MongoMessageStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoMessageStore) LatestInChat(ctx context.Context, chatID primitive.ObjectID) (*models.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var m models.Message
	err := s.col.FindOne(ctx, bson.M{"chat": chatID}, opts).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
