// seeduser creates or resets the first admin account.
// Usage: SEED_USERNAME=owner SEED_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"os"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/config"
	"github.com/cellkom/poscellkom-sub000/internal/infra"
	"github.com/cellkom/poscellkom-sub000/internal/middleware"
	"github.com/cellkom/poscellkom-sub000/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := envOr("SEED_USERNAME", "admin")
	password := os.Getenv("SEED_PASSWORD")
	if len(password) < 8 {
		log.Fatal().Msg("SEED_PASSWORD must be at least 8 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	u := model.User{
		Username:     username,
		Name:         envOr("SEED_NAME", "Administrator"),
		PasswordHash: string(hash),
		Role:         middleware.RoleAdmin,
		Active:       true,
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "role", "active", "updated_at"}),
	}).Create(&u).Error
	if err != nil {
		log.Fatal().Err(err).Msg("upsert user")
	}
	log.Info().Str("username", username).Msg("admin user created or reset")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
