// seed inserts development accounts for local testing.
// Idempotent: skips inserts if the admin account (admin@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"biblio/backend/internal/config"
	"biblio/backend/internal/db"
	"biblio/backend/internal/platformsettings/repository"
	"biblio/backend/internal/security"
	userdomain "biblio/backend/internal/user/domain"
	userrepo "biblio/backend/internal/user/repository"
)

const (
	adminEmail     = "admin@example.com"
	librarianEmail = "librarian@example.com"
	memberEmail    = "member@example.com"
	devPassword    = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (admin@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	accounts := []*userdomain.User{
		{
			ID:           uuid.New().String(),
			Email:        adminEmail,
			Name:         "Dev Admin",
			PasswordHash: passwordHash,
			Roles:        []userdomain.Role{userdomain.RoleMember, userdomain.RoleAdmin},
			Verified:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           uuid.New().String(),
			Email:        librarianEmail,
			Name:         "Dev Librarian",
			PasswordHash: passwordHash,
			Roles:        []userdomain.Role{userdomain.RoleMember, userdomain.RoleLibrarian},
			Verified:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           uuid.New().String(),
			Email:        memberEmail,
			Name:         "Dev Member",
			PasswordHash: passwordHash,
			Roles:        []userdomain.Role{userdomain.RoleMember},
			Verified:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
	for _, u := range accounts {
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("create %s: %v", u.Email, err)
		}
	}

	settings := repository.NewPostgresRepository(conn)
	if err := settings.SetSetting(ctx, "maintenance_mode", "false"); err != nil {
		log.Fatalf("set maintenance_mode: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Admin login: %s / %s\n", adminEmail, devPassword)
	fmt.Printf("Librarian login: %s / %s\n", librarianEmail, devPassword)
	fmt.Printf("Member login: %s / %s\n", memberEmail, devPassword)
}
