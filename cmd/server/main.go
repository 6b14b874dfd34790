package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/alexampersandria/ephemeride/internal/config"
	"github.com/alexampersandria/ephemeride/internal/database"
	"github.com/alexampersandria/ephemeride/internal/handler"
	"github.com/alexampersandria/ephemeride/internal/repository"
	"github.com/alexampersandria/ephemeride/internal/router"
	"github.com/alexampersandria/ephemeride/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable, rate limiting and metrics cache disabled")
	}

	users := repository.NewUserRepo(db, cfg.BcryptCost)
	sessions := repository.NewSessionRepo(db, users, cfg.SessionTTL)
	invites := repository.NewInviteRepo(db)
	categories := repository.NewCategoryRepo(db)
	tags := repository.NewTagRepo(db, categories)
	entries := repository.NewEntryRepo(db)
	publisher := service.NewPublisher(cfg.AmqpURL)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Health:     handler.NewHealthHandler(db),
		Auth:       handler.NewAuthHandler(cfg, sessions),
		Users:      handler.NewUserHandler(cfg, users, sessions, invites, categories, tags, publisher),
		Sessions:   handler.NewSessionHandler(sessions),
		Categories: handler.NewCategoryHandler(categories),
		Tags:       handler.NewTagHandler(tags),
		Entries:    handler.NewEntryHandler(entries, publisher),
		Metrics:    handler.NewMetricsHandler(users, rdb),
	}, sessions, rdb, config.LoadRateLimitConfig())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
