package main

import (
	"context"
	"log"
	"os"

	"github.com/yamdb/yamdb/internal/config"
	"github.com/yamdb/yamdb/internal/database"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/internal/repository"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// seed creates the superuser named by ADMIN_USERNAME / ADMIN_EMAIL, or
// promotes the existing account. The admin then signs in through the normal
// signup + token flow.
func main() {
	cfg := config.Load()
	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminUsername == "" || adminEmail == "" {
		logger.Log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_EMAIL")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	admin, err := users.GetByUsername(ctx, adminUsername)
	if err != nil {
		logger.Log.Fatal("Failed to look up admin", zap.Error(err))
	}

	if admin != nil {
		if admin.Email != adminEmail {
			logger.Log.Fatal("Username exists with a different email",
				zap.String("username", adminUsername),
				zap.String("email", admin.Email),
			)
		}
		admin.Role = models.RoleAdmin
		admin.IsStaff = true
		admin.IsSuperuser = true
		if err := users.Update(ctx, admin); err != nil {
			logger.Log.Fatal("Failed to promote admin", zap.Error(err))
		}
		logger.Log.Info("Existing user promoted to superuser", zap.String("username", admin.Username))
		return
	}

	admin = &models.User{
		Username:    adminUsername,
		Email:       adminEmail,
		Role:        models.RoleAdmin,
		IsStaff:     true,
		IsSuperuser: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		logger.Log.Fatal("Failed to create admin", zap.Error(err))
	}

	logger.Log.Info("Superuser created",
		zap.String("user_id", admin.ID.String()),
		zap.String("username", admin.Username),
		zap.String("email", admin.Email),
	)
}
