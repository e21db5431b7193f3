package main

import (
	"database/sql"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/redis/go-redis/v9"

	"realtyBack/internal/config"
	"realtyBack/internal/geo"
	"realtyBack/internal/handlers"
	"realtyBack/internal/models"
	"realtyBack/internal/repositories"
	"realtyBack/internal/services"
	"realtyBack/internal/storage"
	"realtyBack/utils"
)

type application struct {
	errorLog       *log.Logger
	infoLog        *log.Logger
	db             *sql.DB
	signingKey     string
	wsManager      *WebSocketManager
	userHandler    *handlers.UserHandler
	userRepo       *repositories.UserRepository
	listingHandler *handlers.ListingHandler
	listingRepo    *repositories.ListingRepository
}

func initializeApp(db *sql.DB, fsClient *firestore.Client, rdb *redis.Client, geocoder *geo.Client, uploader *storage.S3Uploader, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := repositories.UserRepository{DB: db}
	listingRepo := repositories.ListingRepository{Client: fsClient, Collection: cfg.Firebase.ListingCollection}
	offersCache := repositories.OffersCache{Client: rdb, TTL: time.Minute}

	// Services
	tokenManager, err := utils.NewManager(cfg.Auth.SigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}
	userService := &services.UserService{UserRepo: &userRepo, TokenManager: tokenManager, SigningKey: cfg.Auth.SigningKey}
	listingService := &services.ListingService{
		ListingRepo: &listingRepo,
		Geocoder:    geocoder,
		Uploader:    uploader,
		OffersCache: &offersCache,
		ErrorLog:    errorLog,
	}

	// Handlers
	userHandler := &handlers.UserHandler{Service: userService}
	listingHandler := &handlers.ListingHandler{Service: listingService}

	app := &application{
		errorLog:       errorLog,
		infoLog:        infoLog,
		db:             db,
		signingKey:     cfg.Auth.SigningKey,
		wsManager:      NewWebSocketManager(),
		userHandler:    userHandler,
		userRepo:       &userRepo,
		listingHandler: listingHandler,
		listingRepo:    &listingRepo,
	}

	// Upload progress events go to the submitting user's websocket.
	listingHandler.Progress = func(userID int, event models.UploadProgressEvent) {
		app.wsManager.PublishProgress(userID, event)
	}

	return app
}
