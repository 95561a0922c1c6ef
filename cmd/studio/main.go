package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"redesignstudio/internal/collab"
	"redesignstudio/internal/designstore"
	"redesignstudio/internal/gateway/config"
	"redesignstudio/internal/gateway/handler"
	"redesignstudio/internal/gateway/server"
	"redesignstudio/internal/kvstore"
	"redesignstudio/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	kv, err := openKV(cfg.Storage)
	if err != nil {
		log.Fatalf("open storage backend %q: %v", cfg.Storage.Backend, err)
	}
	log.Printf("design storage backend: %s", cfg.Storage.Backend)

	// No real analyzer/generator ships with this core; the collaborators
	// are wired in by whoever embeds the session. The binary runs against
	// the deterministic fakes.
	sess := session.New(
		collab.NewFakeAnalyzer(""),
		collab.NewFakeGenerator(),
		designstore.New(kv),
	)

	srv := server.New(cfg.Port, server.NewMux(handler.NewStudioHandler(sess)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}

func openKV(cfg config.StorageConfig) (kvstore.KV, error) {
	switch cfg.Backend {
	case "memory":
		return kvstore.NewMemory(), nil
	case "file", "":
		return kvstore.NewFile(cfg.DataDir)
	case "sqlite":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return kvstore.NewSQLite(filepath.Join(cfg.DataDir, "studio.db"))
	case "postgres":
		return kvstore.NewPostgres(cfg.DSN)
	case "s3":
		return kvstore.NewS3(kvstore.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			UseSSL:    cfg.S3.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
