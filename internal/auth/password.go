package auth

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/prodline/internal/model"
)

const bcryptCost = 12

// Hash returns a bcrypt hash of the password.
func Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(b), err
}

// Verify reports whether password matches the stored bcrypt hash.
func Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UserSeeder is the minimal store surface needed for seeding the first admin.
type UserSeeder interface {
	CountAll(ctx context.Context) (int, error)
	Create(ctx context.Context, username, passwordHash, station, operator string, role model.Role) (int64, error)
}

// SeedFirstAdmin creates the initial admin account from env vars if the
// users table is empty.
func SeedFirstAdmin(ctx context.Context, users UserSeeder) {
	username := os.Getenv("SEED_ADMIN_USERNAME")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}

	count, err := users.CountAll(ctx)
	if err != nil {
		slog.Error("seed: failed to count users", "err", err)
		return
	}
	if count > 0 {
		return
	}

	hash, err := Hash(password)
	if err != nil {
		slog.Error("seed: failed to hash password", "err", err)
		return
	}

	if _, err := users.Create(ctx, username, hash, "", "", model.RoleAdmin); err != nil {
		slog.Error("seed: failed to create admin user", "err", err)
		return
	}
	slog.Info("seed: created first admin", "username", username)
}
