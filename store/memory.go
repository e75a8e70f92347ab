package store

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vybsync/models"
)

// MemoryUserStore is a map-backed UserStore with the same contract as the
// Mongo one. It backs the handler tests.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryUserStore) ByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) ByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) ByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *MemoryUserStore) Search(_ context.Context, keyword string, exclude primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kw := strings.ToLower(keyword)
	var users []models.User
	for _, u := range s.users {
		if u.ID == exclude {
			continue
		}
		if kw == "" ||
			strings.Contains(strings.ToLower(u.Name), kw) ||
			strings.Contains(strings.ToLower(u.Email), kw) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return lessID(users[i].ID, users[j].ID) })
	return users, nil
}

func (s *MemoryUserStore) Update(_ context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return &u, nil
}

type MemoryChatStore struct {
	mu    sync.RWMutex
	chats map[primitive.ObjectID]models.Chat
}

func NewMemoryChatStore() *MemoryChatStore {
	return &MemoryChatStore{chats: make(map[primitive.ObjectID]models.Chat)}
}

func (s *MemoryChatStore) Create(_ context.Context, c *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	s.chats[c.ID] = cloneChat(*c)
	return nil
}

func (s *MemoryChatStore) ByID(_ context.Context, id primitive.ObjectID) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	c = cloneChat(c)
	return &c, nil
}

func (s *MemoryChatStore) FindOneOnOne(_ context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.chats {
		if c.IsGroupChat {
			continue
		}
		if containsID(c.Users, a) && containsID(c.Users, b) {
			c = cloneChat(c)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryChatStore) ForUser(_ context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chats []models.Chat
	for _, c := range s.chats {
		if containsID(c.Users, userID) {
			chats = append(chats, cloneChat(c))
		}
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].UpdatedAt.After(chats[j].UpdatedAt) })
	return chats, nil
}

func (s *MemoryChatStore) SetName(ctx context.Context, id primitive.ObjectID, name string) (*models.Chat, error) {
	return s.update(id, func(c *models.Chat) { c.ChatName = name })
}

func (s *MemoryChatStore) AddMember(ctx context.Context, id, userID primitive.ObjectID) (*models.Chat, error) {
	return s.update(id, func(c *models.Chat) {
		if !containsID(c.Users, userID) {
			c.Users = append(c.Users, userID)
		}
	})
}

func (s *MemoryChatStore) RemoveMember(ctx context.Context, id, userID primitive.ObjectID) (*models.Chat, error) {
	return s.update(id, func(c *models.Chat) {
		users := c.Users[:0]
		for _, u := range c.Users {
			if u != userID {
				users = append(users, u)
			}
		}
		c.Users = users
	})
}

func (s *MemoryChatStore) SetSection(ctx context.Context, id primitive.ObjectID, section string) (*models.Chat, error) {
	return s.update(id, func(c *models.Chat) { c.Section = section })
}

func (s *MemoryChatStore) SetLatestMessage(_ context.Context, id primitive.ObjectID, msgID *primitive.ObjectID) error {
	_, err := s.update(id, func(c *models.Chat) {
		if msgID == nil {
			c.LatestMessage = nil
			return
		}
		m := *msgID
		c.LatestMessage = &m
	})
	return err
}

func (s *MemoryChatStore) update(id primitive.ObjectID, mutate func(*models.Chat)) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	c = cloneChat(c)
	mutate(&c)
	c.UpdatedAt = time.Now()
	s.chats[id] = cloneChat(c)
	return &c, nil
}

type MemoryMessageStore struct {
	mu       sync.RWMutex
	messages map[primitive.ObjectID]models.Message
}

func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{messages: make(map[primitive.ObjectID]models.Message)}
}

func (s *MemoryMessageStore) Create(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt = time.Now()
	s.messages[m.ID] = *m
	return nil
}

func (s *MemoryMessageStore) ByID(_ context.Context, id primitive.ObjectID) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryMessageStore) ByChat(_ context.Context, chatID primitive.ObjectID) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var messages []models.Message
	for _, m := range s.messages {
		if m.Chat == chatID {
			messages = append(messages, m)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return lessID(messages[i].ID, messages[j].ID)
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

func (s *MemoryMessageStore) MarkChatSeen(_ context.Context, chatID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, m := range s.messages {
		if m.Chat == chatID && !m.Seen {
			m.Seen = true
			s.messages[id] = m
		}
	}
	return nil
}

func (s *MemoryMessageStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[id]; !ok {
		return ErrNotFound
	}
	delete(s.messages, id)
	return nil
}

func (s *MemoryMessageStore) LatestInChat(ctx context.Context, chatID primitive.ObjectID) (*models.Message, error) {
	messages, err := s.ByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, ErrNotFound
	}
	latest := messages[len(messages)-1]
	return &latest, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func lessID(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func cloneChat(c models.Chat) models.Chat {
	c.Users = append([]primitive.ObjectID(nil), c.Users...)
	if c.GroupAdmin != nil {
		admin := *c.GroupAdmin
		c.GroupAdmin = &admin
	}
	if c.LatestMessage != nil {
		latest := *c.LatestMessage
		c.LatestMessage = &latest
	}
	return c
}
