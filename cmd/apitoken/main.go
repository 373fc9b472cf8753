package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/prodataworld/prodata-backend/internal/users"
	"github.com/prodataworld/prodata-backend/pkg/auth"
	"github.com/prodataworld/prodata-backend/pkg/config"
	"github.com/prodataworld/prodata-backend/pkg/db"
	"github.com/prodataworld/prodata-backend/pkg/logger"
)

// apitoken mints a long-lived bearer token for an agent's programmatic access.
func main() {
	_ = godotenv.Load()

	userID := flag.Uint("user", 0, "id of the user the token is issued to")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "apitoken"})
	ctx := context.Background()

	if *userID == 0 {
		fmt.Fprintln(os.Stderr, "-user is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	user, err := users.NewRepository(dbClient.DB()).FindByID(ctx, uint(*userID))
	if err != nil {
		logg.Error(logg.WithUserID(ctx, uint(*userID)), "user lookup failed", err)
		os.Exit(1)
	}

	token, err := auth.MintAPIToken(cfg.JWT, time.Now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		logg.Error(ctx, "failed to mint api token", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
