package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	config "github.com/zyzzzz-123/TECHIN510-project/app/configs"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/ai"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/auth"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/httpapi"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/intent"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/store"
	"github.com/zyzzzz-123/TECHIN510-project/app/pkg/logger"
)

func main() {
	if err := logger.Init("output/logs"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()
	logger.Info("Goal Achiever backend starting...")

	cfgManager, err := config.NewManager(config.DefaultPath())
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()

	database, err := store.NewSQLiteDB("output/db")
	if err != nil {
		logger.Error("Failed to initialize DB: %v", err)
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("Database initialized successfully")

	users := store.NewUserStore(database)
	tasks := store.NewTaskStore(database)
	chats := store.NewChatStore(database)

	gateway := ai.NewGateway(func() config.AIConfig { return cfgManager.Get().AI })
	parser := intent.NewParser(gateway.Chat)
	resolver := intent.NewResolver(gateway.Chat, tasks)
	executor := intent.NewExecutor(tasks)
	authService := auth.NewService(users, func() config.AuthConfig { return cfgManager.Get().Auth })

	server := httpapi.NewServer(cfg.Server.Port, httpapi.Deps{
		Auth:     authService,
		Users:    users,
		Tasks:    tasks,
		Chats:    chats,
		Chat:     gateway.Chat,
		Parser:   parser,
		Resolver: resolver,
		Executor: executor,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()
	logger.Info("HTTP API listening on port %d", cfg.Server.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal: %v. Shutting down...", sig)
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed: %v", err)
			os.Exit(1)
		}
	}
}
