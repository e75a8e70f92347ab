package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"

	"vybsync/middleware"
	"vybsync/models"
	"vybsync/store"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleLogin redirects the browser to the Google consent screen.
func (a *API) GoogleLogin(c *gin.Context) {
	if a.oauth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Google OAuth not configured"})
		return
	}

	state := primitive.NewObjectID().Hex()
	c.Redirect(http.StatusTemporaryRedirect, a.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline))
}

// GoogleCallback exchanges the authorization code, finds or creates the user
// by email and redirects to the frontend with a freshly minted token.
func (a *API) GoogleCallback(c *gin.Context) {
	if a.oauth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Google OAuth not configured"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Authorization code missing"})
		return
	}

	ctx := c.Request.Context()
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		a.log.Errorw("google token exchange failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to exchange authorization code"})
		return
	}

	resp, err := a.oauth.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		a.log.Errorw("google userinfo fetch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get user information"})
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read user information"})
		return
	}

	var info googleUserInfo
	if err := json.Unmarshal(data, &info); err != nil || info.Email == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to parse user information"})
		return
	}

	user, err := a.users.ByEmail(ctx, info.Email)
	if errors.Is(err, store.ErrNotFound) {
		user = &models.User{
			Name:     info.Name,
			Email:    info.Email,
			Password: models.GoogleAuthSentinel,
			Pic:      info.Picture,
		}
		if user.Pic == "" {
			user.Pic = models.FallbackPic
		}
		if err := a.users.Create(ctx, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
			return
		}
		a.log.Infow("new google user", "email", info.Email)
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Database error"})
		return
	}

	jwtToken, err := middleware.GenerateToken(user.ID, a.cfg.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.Redirect(http.StatusFound, a.cfg.FrontendURL+"/Chathome?token="+jwtToken)
}
