package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/task_manager/internal/config"
	"github.com/Skotchmaster/task_manager/internal/db"
	"github.com/Skotchmaster/task_manager/internal/hash"
	"github.com/Skotchmaster/task_manager/internal/models"
)

// Seeds a demo admin, a demo user and a few tasks. Safe to run repeatedly:
// existing accounts are left untouched.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	gormDB, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("database migrate error: %v", err)
	}

	admin := upsertUser(gormDB, "admin", "admin@example.com", "admin123", models.RoleAdmin)
	user := upsertUser(gormDB, "john_doe", "user@example.com", "user123", models.RoleUser)

	due := time.Now().Add(72 * time.Hour)
	overdue := time.Now().Add(-24 * time.Hour)
	tasks := []models.Task{
		{
			ID:          uuid.NewString(),
			Title:       "Complete project documentation",
			Description: "Write the API reference and deployment notes",
			Status:      models.StatusInProgress,
			Priority:    models.PriorityHigh,
			DueDate:     &due,
			UserID:      user.ID,
		},
		{
			ID:       uuid.NewString(),
			Title:    "Review pull requests",
			Status:   models.StatusPending,
			Priority: models.PriorityMedium,
			DueDate:  &overdue,
			UserID:   user.ID,
		},
		{
			ID:       uuid.NewString(),
			Title:    "Plan sprint retrospective",
			Status:   models.StatusPending,
			Priority: models.PriorityLow,
			UserID:   user.ID,
		},
	}

	for _, t := range tasks {
		result := gormDB.Where("title = ? AND user_id = ?", t.Title, t.UserID).FirstOrCreate(&t)
		if result.Error != nil {
			log.Fatalf("seed task %q: %v", t.Title, result.Error)
		}
	}

	log.Printf("seeded admin=%s user=%s tasks=%d", admin.Email, user.Email, len(tasks))
}

func upsertUser(gormDB *gorm.DB, username, email, password, role string) *models.User {
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
	}

	result := gormDB.Where("email = ?", email).FirstOrCreate(&user)
	if result.Error != nil {
		log.Fatalf("seed user %s: %v", email, result.Error)
	}
	return &user
}
