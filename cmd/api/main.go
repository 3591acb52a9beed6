package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/tiendalibre/marketplace-backend/internal/config"
	"github.com/tiendalibre/marketplace-backend/internal/db"
	"github.com/tiendalibre/marketplace-backend/internal/model"
	"github.com/tiendalibre/marketplace-backend/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	srv := server.New(nil, cfg.JWTSecret, os.Getenv("GIT_SHA"), os.Getenv("BUILD_TIME"))

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)

	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	// Connect and migrate in the background so the server can start
	// serving health checks before the database is reachable.
	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Printf("db connect error: %v", err)
			return
		}
		srv.SetDB(conn)
		if err := conn.AutoMigrate(
			&model.User{},
			&model.Product{},
			&model.Conversation{},
			&model.Message{},
		); err != nil {
			log.Printf("auto migrate error: %v", err)
		}
	}()

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
