package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vybsync/config"
	"vybsync/handlers"
	"vybsync/middleware"
	"vybsync/store"
	"vybsync/websocket"
)

// Setup wires the full HTTP surface: public auth routes, the protected API
// and the websocket upgrade endpoint.
func Setup(api *handlers.API, hub *websocket.Hub, cfg *config.Config, users store.UserStore) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "VybSync backend running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	protect := middleware.Protect(cfg.JWTSecret, users)
	limiter := middleware.NewIPRateLimiter(60, time.Minute)

	user := router.Group("/users")
	{
		user.POST("", limiter.Middleware(), api.Register)
		user.POST("/login", limiter.Middleware(), api.Login)
		user.GET("/auth/google", limiter.Middleware(), api.GoogleLogin)
		user.GET("/auth/google/callback", limiter.Middleware(), api.GoogleCallback)

		user.GET("", protect, api.SearchUsers)
		user.PUT("/update", protect, api.UpdateProfile)
		user.GET("/:id", protect, api.GetProfile)
	}

	chats := router.Group("/chats", protect)
	{
		chats.GET("", api.FetchChats)
		chats.POST("", api.AccessChat)
		chats.POST("/group", api.CreateGroupChat)
		chats.PUT("/rename", api.RenameGroup)
		chats.PUT("/groupadd", api.AddToGroup)
		chats.PUT("/groupremove", api.RemoveFromGroup)
		chats.PUT("/updateSection", api.UpdateChatSection)
	}

	messages := router.Group("/messages", protect)
	{
		messages.GET("/:chatId", api.AllMessages)
		messages.POST("", api.SendMessage)
		messages.DELETE("/:messageId", api.DeleteMessage)
	}

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWS(hub, c.Writer, c.Request)
	})

	return router
}
