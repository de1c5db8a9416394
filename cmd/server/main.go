package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/christopherjohns/chatserv/internal/config"
	"github.com/christopherjohns/chatserv/internal/directory"
	"github.com/christopherjohns/chatserv/internal/ratelimit"
	"github.com/christopherjohns/chatserv/internal/seed"
	"github.com/christopherjohns/chatserv/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dir := directory.New()
	data, err := loadSeed(cfg)
	if err != nil {
		log.Fatalf("Failed to load seed data: %v", err)
	}
	if err := data.Apply(dir); err != nil {
		log.Fatalf("Failed to seed directory: %v", err)
	}
	log.Printf("Seeded %d users in room %q", len(dir.Root().Members()), directory.RootRoomName)

	opts := []server.Option{
		server.WithMaxConns(cfg.MaxConns),
		server.WithRateLimiter(ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow)),
	}
	if cfg.HTTPAddr != "" {
		opts = append(opts, server.WithHTTPAddr(cfg.HTTPAddr))
	}
	srv := server.New(cfg.ListenAddr, dir, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting chatserv on %s", cfg.ListenAddr)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Print("Shutdown complete")
}

// loadSeed picks the seed source: a YAML file when configured, then
// Redis, then the built-in defaults.
func loadSeed(cfg config.Config) (*seed.Seed, error) {
	if cfg.SeedFile != "" {
		log.Printf("Loading seed data from %s", cfg.SeedFile)
		return seed.LoadFile(cfg.SeedFile)
	}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		log.Printf("Loading seed data from Redis at %s", cfg.RedisAddr)
		return seed.FromRedis(ctx, rdb)
	}
	return seed.Default(), nil
}
