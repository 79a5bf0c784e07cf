package main

import (
	"net/http"

	"github.com/Adilet2201/giftcircle/internal/config"
	"github.com/Adilet2201/giftcircle/internal/database"
	"github.com/Adilet2201/giftcircle/internal/handlers"
	"github.com/Adilet2201/giftcircle/internal/repository"
	"github.com/Adilet2201/giftcircle/internal/services"
	"github.com/Adilet2201/giftcircle/pkg/logger"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

func main() {
	logger.InitLogger()

	cfg := config.LoadConfig()

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Could not connect to the database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	friendRepo := repository.NewFriendRepository(db)

	userService := services.NewUserService(userRepo)
	contactService := services.NewContactService(contactRepo, friendRepo, userRepo)
	wishlistService := services.NewWishlistService(wishlistRepo, userRepo)
	friendService := services.NewFriendService(friendRepo, userRepo)

	userHandler := handlers.NewUserHandler(userService, cfg)
	contactHandler := handlers.NewContactHandler(contactService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	friendHandler := handlers.NewFriendHandler(friendService)

	router := handlers.NewRouter(cfg, userHandler, contactHandler, friendHandler, wishlistHandler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	log.Infof("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, corsHandler); err != nil {
		log.Fatalf("Could not start server: %v", err)
	}
}
