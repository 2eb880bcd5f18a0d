// Command server runs the article editor API.
//
// Configuration comes from config.yml in the working directory (optional)
// and environment variables; see internal/config for every key.
//
//	go run ./cmd/server            # serve on PORT (default 3001)
//	go run ./cmd/server -routes    # print the route table as markdown and exit
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/docgen"

	"github.com/Ly-yang/wechat-editor/internal/config"
	sqliteRepo "github.com/Ly-yang/wechat-editor/internal/repository/sqlite"
	"github.com/Ly-yang/wechat-editor/internal/server"
)

func main() {
	routes := flag.Bool("routes", false, "print the route documentation and exit")
	routesJSON := flag.Bool("routes-json", false, "print the route documentation as JSON and exit")
	flag.Parse()

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("JWT_SECRET is the development default; set it before deploying")
	}

	// Route docs need the router but not a real database.
	dbPath := cfg.DBPath
	if *routes || *routesJSON {
		dbPath = ":memory:"
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	db, err := sqliteRepo.New(dbPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(cfg, db, logger)
	if err != nil {
		db.Close()
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	switch {
	case *routesJSON:
		fmt.Println(docgen.JSONRoutesDoc(srv.Router()))
		db.Close()
		return
	case *routes:
		fmt.Println(docgen.MarkdownRoutesDoc(srv.Router(), docgen.MarkdownOpts{
			ProjectPath: "github.com/Ly-yang/wechat-editor",
			Intro:       "Routes of the WeChat article editor API.",
		}))
		db.Close()
		return
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLogger writes JSON in production and readable text elsewhere.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
