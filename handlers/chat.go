package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vybsync/middleware"
	"vybsync/models"
	"vybsync/store"
)

type accessChatRequest struct {
	UserID string `json:"userId"`
}

type groupChatRequest struct {
	Name  string   `json:"name"`
	Users []string `json:"users"`
}

type renameGroupRequest struct {
	ChatID   string `json:"chatId"`
	ChatName string `json:"chatName"`
}

type groupMemberRequest struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type updateSectionRequest struct {
	ChatID  string `json:"chatId"`
	Section string `json:"section"`
}

// AccessChat returns the caller's one-on-one chat with another user,
// creating it on first access. Concurrent first accesses can race and
// create duplicates; that is accepted.
func (a *API) AccessChat(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	var req accessChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "UserId not provided"})
		return
	}

	otherID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	ctx := c.Request.Context()

	chat, err := a.chats.FindOneOnOne(ctx, caller.ID, otherID)
	if err == nil {
		view, err := a.populateChat(ctx, chat)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error accessing chat"})
			return
		}
		c.JSON(http.StatusOK, view)
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error accessing chat"})
		return
	}

	chat = &models.Chat{
		ChatName:    "sender",
		IsGroupChat: false,
		Users:       []primitive.ObjectID{caller.ID, otherID},
		Section:     models.DefaultSection,
	}
	if err := a.chats.Create(ctx, chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error accessing chat"})
		return
	}

	view, err := a.populateChat(ctx, chat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error accessing chat"})
		return
	}
	c.JSON(http.StatusCreated, view)
}

// FetchChats lists the caller's chats, most recently active first.
func (a *API) FetchChats(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	chats, err := a.chats.ForUser(ctx, caller.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching chats"})
		return
	}

	views, err := a.populateChats(ctx, chats)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching chats"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// CreateGroupChat creates a group with the caller appended as member and
// designated admin.
func (a *API) CreateGroupChat(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	var req groupChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide a name and users"})
		return
	}
	if req.Name == "" || len(req.Users) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide a name and users"})
		return
	}
	if len(req.Users) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "At least 2 users are required for a group chat"})
		return
	}

	members := make([]primitive.ObjectID, 0, len(req.Users)+1)
	for _, raw := range req.Users {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
			return
		}
		members = append(members, id)
	}
	members = append(members, caller.ID)

	admin := caller.ID
	chat := &models.Chat{
		ChatName:    req.Name,
		IsGroupChat: true,
		Users:       members,
		GroupAdmin:  &admin,
		Section:     models.DefaultSection,
	}

	ctx := c.Request.Context()
	if err := a.chats.Create(ctx, chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error creating group chat"})
		return
	}

	view, err := a.populateChat(ctx, chat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error creating group chat"})
		return
	}
	c.JSON(http.StatusCreated, view)
}

// RenameGroup updates a chat's display name. Rename is not admin gated,
// unlike membership edits.
func (a *API) RenameGroup(c *gin.Context) {
	var req renameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	chatID, err := primitive.ObjectIDFromHex(req.ChatID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid chat ID"})
		return
	}

	ctx := c.Request.Context()
	chat, err := a.chats.SetName(ctx, chatID, req.ChatName)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error renaming group"})
		return
	}

	view, err := a.populateChat(ctx, chat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error renaming group"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddToGroup adds a member; only the group admin may do this.
func (a *API) AddToGroup(c *gin.Context) {
	a.editMembership(c, true)
}

// RemoveFromGroup removes a member; only the group admin may do this.
func (a *API) RemoveFromGroup(c *gin.Context) {
	a.editMembership(c, false)
}

func (a *API) editMembership(c *gin.Context, add bool) {
	caller := middleware.CurrentUser(c)

	var req groupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	chatID, err := primitive.ObjectIDFromHex(req.ChatID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid chat ID"})
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
		return
	}

	ctx := c.Request.Context()
	chat, err := a.chats.ByID(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating group"})
		return
	}

	if chat.GroupAdmin == nil || *chat.GroupAdmin != caller.ID {
		if add {
			c.JSON(http.StatusForbidden, gin.H{"message": "Only admins can add users"})
		} else {
			c.JSON(http.StatusForbidden, gin.H{"message": "Only admins can remove users"})
		}
		return
	}

	if add {
		chat, err = a.chats.AddMember(ctx, chatID, userID)
	} else {
		chat, err = a.chats.RemoveMember(ctx, chatID, userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating group"})
		return
	}

	view, err := a.populateChat(ctx, chat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating group"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateChatSection sets the free-text section tag used by clients to group
// chats; no validation on allowed values.
func (a *API) UpdateChatSection(c *gin.Context) {
	var req updateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	chatID, err := primitive.ObjectIDFromHex(req.ChatID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid chat ID"})
		return
	}

	ctx := c.Request.Context()
	chat, err := a.chats.SetSection(ctx, chatID, req.Section)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating section"})
		return
	}

	view, err := a.populateChat(ctx, chat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating section"})
		return
	}
	c.JSON(http.StatusOK, view)
}
