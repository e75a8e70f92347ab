package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"vybsync/config"
	"vybsync/database"
	"vybsync/handlers"
	"vybsync/logger"
	"vybsync/routes"
	"vybsync/store"
	"vybsync/websocket"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.GinMode != "release")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("connecting to MongoDB")
	var dbErr error
	for i := 1; i <= 3; i++ {
		if dbErr = database.Connect(cfg.MongoURI, cfg.MongoDB); dbErr != nil {
			log.Warnw("MongoDB connection attempt failed", "attempt", i, "error", dbErr)
			time.Sleep(2 * time.Second)
			continue
		}
		break
	}
	if dbErr != nil {
		log.Fatalw("failed to connect to MongoDB", "error", dbErr)
	}
	defer database.Disconnect()
	log.Info("MongoDB connected")

	users := store.NewMongoUserStore(database.Users)
	chats := store.NewMongoChatStore(database.Chats)
	messages := store.NewMongoMessageStore(database.Messages)

	hub := websocket.NewHub(log)
	api := handlers.New(cfg, log, hub, users, chats, messages)
	router := routes.Setup(api, hub, cfg, users)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server running", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("forced shutdown", "error", err)
	}
	log.Info("server stopped")
}
