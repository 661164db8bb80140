package main

import (
	"context"
	"log"

	"neuro-chat-be/internal/bootstrap"
	"neuro-chat-be/internal/config"
	"neuro-chat-be/internal/server"
	"neuro-chat-be/internal/tracer"
	"neuro-chat-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer("neuro-chat-rest")
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. With the in-process queue driver there is no separate worker
	// process, so consume tasks here too.
	if cfg.Queue.Driver != "jetstream" {
		log.Println("Background: Starting in-process worker...")
		if err := container.WorkerService.Run(context.Background()); err != nil {
			log.Panicf("Unable to start in-process worker: %v", err)
		}
	}

	// 5. Initialize and Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
