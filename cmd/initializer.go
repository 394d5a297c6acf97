package main

import (
	"database/sql"
	"log"

	"firebase.google.com/go/messaging"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"liminmarket/internal/handlers"
	"liminmarket/internal/moderation"
	"liminmarket/internal/repositories"
	"liminmarket/internal/services"
	"liminmarket/utils"

	img "liminmarket/internal/imaging"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB

	tokenManager *utils.Manager

	userRepo      *repositories.UserRepository
	listingRepo   *repositories.ListingRepository
	storyRepo     *repositories.StoryRepository
	reviewRepo    *repositories.ReviewRepository
	chatRepo      *repositories.ChatRepository
	messageRepo   *repositories.MessageRepository
	favoriteRepo  *repositories.FavoriteRepository
	complaintRepo *repositories.ComplaintRepository

	messageService *services.MessageService

	userHandler      *handlers.UserHandler
	listingHandler   *handlers.ListingHandler
	reviewHandler    *handlers.ReviewHandler
	favoriteHandler  *handlers.FavoriteHandler
	chatHandler      *handlers.ChatHandler
	messageHandler   *handlers.MessageHandler
	storyHandler     *handlers.StoryHandler
	complaintHandler *handlers.ComplaintHandler

	wsManager *WebSocketManager
}

func initializeApp(db *sql.DB, rdb *redis.Client, storage *utils.S3Storage, fcmClient *messaging.Client, tokenManager *utils.Manager, imageModerator *moderation.ImageModerator, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := &repositories.UserRepository{DB: db}
	listingRepo := &repositories.ListingRepository{DB: db}
	storyRepo := &repositories.StoryRepository{DB: db}
	reviewRepo := &repositories.ReviewRepository{DB: db}
	chatRepo := &repositories.ChatRepository{DB: db}
	messageRepo := &repositories.MessageRepository{DB: db}
	favoriteRepo := &repositories.FavoriteRepository{DB: db}
	complaintRepo := &repositories.ComplaintRepository{DB: db}

	// Services
	variants := &img.Generator{Uploader: storage, Folder: "listings"}
	analyticsService := &services.AnalyticsService{RDB: rdb}
	userService := &services.UserService{UserRepo: userRepo, TokenManager: tokenManager}
	listingService := &services.ListingService{
		ListingRepo:    listingRepo,
		ImageModerator: imageModerator,
		Variants:       variants,
		Sellers:        userRepo,
	}
	reviewService := &services.ReviewService{ReviewRepo: reviewRepo}
	favoriteService := &services.FavoriteService{FavoriteRepo: favoriteRepo}
	chatService := &services.ChatService{ChatRepo: chatRepo, ListingRepo: listingRepo}
	pushService := &services.PushService{Client: fcmClient, UserRepo: userRepo}
	messageService := &services.MessageService{MessageRepo: messageRepo, ChatRepo: chatRepo, Push: pushService}
	storyService := &services.StoryService{StoryRepo: storyRepo}
	complaintService := &services.ComplaintService{ComplaintRepo: complaintRepo, Listings: listingService}

	// Handlers
	userHandler := &handlers.UserHandler{Service: userService}
	listingHandler := &handlers.ListingHandler{Service: listingService, Analytics: analyticsService}
	reviewHandler := &handlers.ReviewHandler{Service: reviewService}
	favoriteHandler := &handlers.FavoriteHandler{Service: favoriteService}
	chatHandler := &handlers.ChatHandler{Service: chatService}
	messageHandler := &handlers.MessageHandler{Service: messageService}
	storyHandler := &handlers.StoryHandler{Service: storyService}
	complaintHandler := &handlers.ComplaintHandler{Service: complaintService}

	return &application{
		errorLog:         errorLog,
		infoLog:          infoLog,
		db:               db,
		tokenManager:     tokenManager,
		userRepo:         userRepo,
		listingRepo:      listingRepo,
		storyRepo:        storyRepo,
		reviewRepo:       reviewRepo,
		chatRepo:         chatRepo,
		messageRepo:      messageRepo,
		favoriteRepo:     favoriteRepo,
		complaintRepo:    complaintRepo,
		messageService:   messageService,
		userHandler:      userHandler,
		listingHandler:   listingHandler,
		reviewHandler:    reviewHandler,
		favoriteHandler:  favoriteHandler,
		chatHandler:      chatHandler,
		messageHandler:   messageHandler,
		storyHandler:     storyHandler,
		complaintHandler: complaintHandler,
	}
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	return db, nil
}
