package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/hurmain7/devconnect/adapters/persistence"
	"github.com/hurmain7/devconnect/internal/config"
	"github.com/hurmain7/devconnect/internal/domain/user"
	"github.com/hurmain7/devconnect/pkg/auth"
	"github.com/hurmain7/devconnect/pkg/logger"
)

// Creates a user straight in Postgres and prints a token for it, so the
// profile endpoints can be exercised without a registration flow.
func main() {
	fmt.Println("adding user into database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	name := os.Getenv("SEED_NAME")
	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	if name == "" || email == "" || password == "" {
		log.Fatal("SEED_NAME, SEED_EMAIL and SEED_PASSWORD must be set")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Avatar:       os.Getenv("SEED_AVATAR"),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := persistence.NewPostgresUserRepo(pool, appLogger).Save(ctx, u); err != nil {
		log.Fatalf("cannot add user: %v", err)
	}

	token, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan).GenerateToken(u.ID)
	if err != nil {
		log.Fatalf("cannot issue token: %v", err)
	}

	fmt.Printf("added user '%s' (%s)\n", email, u.ID)
	fmt.Printf("token: %s\n", token)
}
