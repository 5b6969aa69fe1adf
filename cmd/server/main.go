package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/database"
	"github.com/iliyamo/user-account-service/internal/handler"
	"github.com/iliyamo/user-account-service/internal/middleware"
	"github.com/iliyamo/user-account-service/internal/queue"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/router"
	"github.com/iliyamo/user-account-service/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}

	users := repository.NewUserRepo(db)
	keys := repository.NewKeyRecordRepo(db)
	auth := service.NewAuthService(users, keys, service.NewAMQPPublisher(), cfg)

	authHandler := handler.NewAuthHandler(auth)
	userHandler := handler.NewUserHandler(auth)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), config.NewRedisClient())

	// Mail worker consumes user.registered events; it reconnects on its
	// own and never takes the server down.
	go func() {
		if err := queue.StartMailConsumer(); err != nil {
			log.Printf("mail consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, userHandler, keys, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
