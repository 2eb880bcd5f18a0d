// Command seed fills the configured database with demo data.
//
//	go run ./cmd/seed -users 10 -articles 5
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Ly-yang/wechat-editor/internal/auth"
	"github.com/Ly-yang/wechat-editor/internal/config"
	sqliteRepo "github.com/Ly-yang/wechat-editor/internal/repository/sqlite"
	"github.com/Ly-yang/wechat-editor/internal/seed"
	"github.com/Ly-yang/wechat-editor/internal/service"
)

func main() {
	users := flag.Int("users", 5, "number of users to create")
	articles := flag.Int("articles", 8, "articles per user")
	templates := flag.Int("templates", 1, "custom templates per user")
	seedValue := flag.Int64("seed", 0, "random seed (0 = random)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg, err := config.Load(".")
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Error("failed to create database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("invalid token configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	renderer := service.NewRenderService(db, logger)
	s := seed.NewSeeder(
		service.NewAuthService(db, tokens, auth.NewPasswordService(cfg.BcryptCost), logger),
		service.NewArticleService(db, renderer, logger),
		service.NewTemplateService(db, logger),
		logger,
	)

	sum, err := s.Run(context.Background(), seed.Options{
		Users:            *users,
		ArticlesPerUser:  *articles,
		TemplatesPerUser: *templates,
		Seed:             *seedValue,
	})
	if err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seeding complete",
		slog.Int("users", sum.Users),
		slog.Int("articles", sum.Articles),
		slog.Int("templates", sum.Templates),
		slog.String("password", seed.DefaultPassword),
	)
}
