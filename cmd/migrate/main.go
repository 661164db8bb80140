package main

import (
	"log"

	"neuro-chat-be/internal/config"
	"neuro-chat-be/internal/model"
	"neuro-chat-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}

	log.Println("Running migrations...")

	// message_embeddings needs the pgvector extension before AutoMigrate can
	// create its vector column.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		log.Fatalf("Failed to enable pgvector extension: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.ChatMessage{},
		&model.MessageEmbedding{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Done.")
}
