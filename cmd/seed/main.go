package main

import (
	"context"
	"log"
	"time"

	"neuro-chat-be/internal/config"
	"neuro-chat-be/internal/entity"
	"neuro-chat-be/internal/repository/unitofwork"
	"neuro-chat-be/pkg/database"

	"github.com/google/uuid"
)

// Seeds a demo user so the chat endpoints can be exercised locally. User
// management itself belongs to an external identity subsystem.
func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}

	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(context.Background())

	now := time.Now()
	user := &entity.User{
		Id:        uuid.New(),
		Email:     "demo@neurochat.local",
		FullName:  "Demo User",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.UserRepository().Create(context.Background(), user); err != nil {
		log.Fatalf("Failed to seed user: %v", err)
	}

	log.Printf("Seeded user %s (%s)", user.Id, user.Email)
}
