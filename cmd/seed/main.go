package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-hexagonal-users/config"
	"github.com/oksasatya/go-hexagonal-users/internal/application"
	"github.com/oksasatya/go-hexagonal-users/internal/container"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/command"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/messaging"
	"github.com/oksasatya/go-hexagonal-users/pkg/apperror"
	"github.com/oksasatya/go-hexagonal-users/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	email := flag.String("email", "demo@users.local", "email address of the demo user")
	name := flag.String("name", "Demo User", "full name of the demo user")
	age := flag.Int("age", 30, "age of the demo user")
	password := flag.String("password", "password123", "password of the demo user")
	flag.Parse()

	ctx := context.Background()
	storage, err := container.OpenStorage(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer storage.Close()

	cmd, err := command.NewRegisterUser(*email, *name, *age, *password)
	if err != nil {
		log.Fatalf("invalid demo user: %v", err)
	}

	reg := application.NewRegistrationService(storage.Users, storage.Credentials, messaging.NewLogPublisher(logger), logger)
	u, err := reg.Register(ctx, cmd)
	switch {
	case errors.Is(err, apperror.ErrConflict):
		fmt.Printf("user %s already exists; nothing to do\n", *email)
		return
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", u.ID(), u.EmailAddress(), u.FullName(), *password)
}
