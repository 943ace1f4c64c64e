package main

import (
	"context"

	"tour-booking-server/config"
	"tour-booking-server/repository"
	"tour-booking-server/routes"
	"tour-booking-server/services"
	"tour-booking-server/storage"
	"tour-booking-server/utils"

	"github.com/kataras/golog"
)

func main() {
	cfg := config.Load()
	golog.SetLevel(cfg.LogLevel)

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		golog.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}

	db, err := storage.InitializeDB(cfg.Database)
	if err != nil {
		golog.Fatalf("database: %v", err)
	}
	redisClient := storage.InitializeRedis(cfg.RedisURL)
	images, err := storage.InitializeImageStore(cfg.Cloudinary)
	if err != nil {
		golog.Fatalf("image store: %v", err)
	}

	store := repository.NewStore(db)
	auth := services.NewAuthService(store)

	if cfg.Admin.Username != "" && cfg.Admin.Password != "" {
		err := auth.EnsureAdmin(context.Background(), services.RegisterInput{
			Username: cfg.Admin.Username,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		})
		if err != nil {
			golog.Fatalf("admin account: %v", err)
		}
	}

	handler := &routes.Handler{
		Bookings:  services.NewBookingService(store),
		Tours:     services.NewTourService(store, images),
		Search:    services.NewSearchService(store),
		Ratings:   services.NewRatingService(store),
		Approvals: services.NewApprovalService(store),
		Auth:      auth,
		Tokens: utils.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
			storage.NewRedisRefreshStore(redisClient)),
	}

	app := routes.NewApp(handler, routes.Options{
		AccessTokenSecret: cfg.AccessTokenSecret,
		AllowedOrigin:     cfg.AllowedOrigin,
		RemoteAddrHeaders: cfg.RemoteAddrHeaders,
		LogLevel:          cfg.LogLevel,
		RequestLog:        true,
	})

	if err := app.Listen(":" + cfg.Port); err != nil {
		golog.Fatalf("server stopped: %v", err)
	}
}
