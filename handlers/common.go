package handlers

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"vybsync/config"
	"vybsync/models"
	"vybsync/store"
	"vybsync/websocket"
)

// API bundles the dependencies every handler needs. The hub is injected here
// so message handlers can emit room events without ambient globals.
type API struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	hub      *websocket.Hub
	users    store.UserStore
	chats    store.ChatStore
	messages store.MessageStore

	oauth *oauth2.Config
}

func New(cfg *config.Config, log *zap.SugaredLogger, hub *websocket.Hub, users store.UserStore, chats store.ChatStore, messages store.MessageStore) *API {
	api := &API{
		cfg:      cfg,
		log:      log,
		hub:      hub,
		users:    users,
		chats:    chats,
		messages: messages,
	}

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		api.oauth = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}

	return api
}

// populateMessage resolves the sender reference into the slim profile the
// clients render.
func (a *API) populateMessage(ctx context.Context, m *models.Message) *models.MessageView {
	view := &models.MessageView{Message: *m}
	view.Sender = models.MessageSender{ID: m.Sender, Name: "Unknown"}

	if sender, err := a.users.ByID(ctx, m.Sender); err == nil {
		view.Sender = models.MessageSender{
			ID:    sender.ID,
			Name:  sender.Name,
			Pic:   sender.Pic,
			Email: sender.Email,
		}
	}
	return view
}

// populateChat resolves members, admin and the latest message of a chat.
func (a *API) populateChat(ctx context.Context, c *models.Chat) (*models.ChatView, error) {
	view := &models.ChatView{Chat: *c}

	users, err := a.users.ByIDs(ctx, c.Users)
	if err != nil {
		return nil, err
	}
	view.Users = users

	if c.GroupAdmin != nil {
		if admin, err := a.users.ByID(ctx, *c.GroupAdmin); err == nil {
			view.GroupAdmin = admin
		}
	}

	if c.LatestMessage != nil {
		if latest, err := a.messages.ByID(ctx, *c.LatestMessage); err == nil {
			view.LatestMessage = a.populateMessage(ctx, latest)
		}
	}

	return view, nil
}

func (a *API) populateChats(ctx context.Context, chats []models.Chat) ([]*models.ChatView, error) {
	views := make([]*models.ChatView, 0, len(chats))
	for i := range chats {
		view, err := a.populateChat(ctx, &chats[i])
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
