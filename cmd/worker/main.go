package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"neuro-chat-be/internal/bootstrap"
	"neuro-chat-be/internal/config"
	"neuro-chat-be/internal/tracer"
	"neuro-chat-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer("neuro-chat-worker")
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Printf("✅ Worker is consuming tasks (concurrency=%d)", cfg.Queue.WorkerConcurrency)
	if err := container.WorkerService.Run(ctx); err != nil {
		log.Panicf("Unable to start worker: %v", err)
	}

	// Block until interrupted; in-flight tasks are Nak'd on hard exit and
	// redelivered by the queue.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Println("Worker shutting down")
}
