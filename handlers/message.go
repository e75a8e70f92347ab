package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vybsync/middleware"
	"vybsync/models"
	"vybsync/store"
	"vybsync/websocket"
)

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

// AllMessages lists a chat's messages oldest first and, as a side effect,
// marks every unseen message in the chat seen. The flip is global to the
// chat, not per viewer.
func (a *API) AllMessages(c *gin.Context) {
	chatID, err := primitive.ObjectIDFromHex(c.Param("chatId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Chat ID is required"})
		return
	}

	ctx := c.Request.Context()
	messages, err := a.messages.ByChat(ctx, chatID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to fetch messages"})
		return
	}

	views := make([]*models.MessageView, 0, len(messages))
	for i := range messages {
		views = append(views, a.populateMessage(ctx, &messages[i]))
	}

	if err := a.messages.MarkChatSeen(ctx, chatID); err != nil {
		a.log.Errorw("mark chat seen", "chatId", chatID.Hex(), "error", err)
	}

	c.JSON(http.StatusOK, views)
}

// SendMessage persists a message, moves the chat's latest-message pointer
// and emits messageReceived to the chat's room. Socket delivery is
// best-effort and unordered relative to the HTTP response.
func (a *API) SendMessage(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" || req.ChatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid data"})
		return
	}

	chatID, err := primitive.ObjectIDFromHex(req.ChatID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid chat ID"})
		return
	}

	ctx := c.Request.Context()
	message := &models.Message{
		Sender:  caller.ID,
		Content: req.Content,
		Chat:    chatID,
		Seen:    false,
	}
	if err := a.messages.Create(ctx, message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send message"})
		return
	}

	if err := a.chats.SetLatestMessage(ctx, chatID, &message.ID); err != nil {
		// message is already stored, the stale pointer is tolerable
		a.log.Errorw("update latest message", "chatId", req.ChatID, "error", err)
	}

	view := a.populateMessage(ctx, message)
	a.hub.Broadcast(req.ChatID, websocket.EventMessageNew, view)

	c.JSON(http.StatusOK, view)
}

// DeleteMessage removes a sender's own message. If it was the chat's latest,
// the pointer is recomputed to the newest remaining message or cleared.
func (a *API) DeleteMessage(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	messageID, err := primitive.ObjectIDFromHex(c.Param("messageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid message ID"})
		return
	}

	ctx := c.Request.Context()
	message, err := a.messages.ByID(ctx, messageID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete message"})
		return
	}

	if message.Sender != caller.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only delete your own messages"})
		return
	}

	if err := a.messages.Delete(ctx, messageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete message"})
		return
	}

	chat, err := a.chats.ByID(ctx, message.Chat)
	if err == nil && chat.LatestMessage != nil && *chat.LatestMessage == messageID {
		var latestID *primitive.ObjectID
		latest, err := a.messages.LatestInChat(ctx, chat.ID)
		if err == nil {
			latestID = &latest.ID
		} else if !errors.Is(err, store.ErrNotFound) {
			a.log.Errorw("recompute latest message", "chatId", chat.ID.Hex(), "error", err)
		}
		if err := a.chats.SetLatestMessage(ctx, chat.ID, latestID); err != nil {
			a.log.Errorw("update latest message", "chatId", chat.ID.Hex(), "error", err)
		}
	}

	a.hub.Broadcast(message.Chat.Hex(), websocket.EventMessageDeleted, gin.H{"messageId": messageID.Hex()})

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}
