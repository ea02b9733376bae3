// Package httpapi exposes the REST surface: auth, task CRUD, the intent
// endpoints, chat and chat history.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zyzzzz-123/TECHIN510-project/app/core/ai"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/auth"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/intent"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/store"
	"github.com/zyzzzz-123/TECHIN510-project/app/pkg/logger"
)

type Server struct {
	engine          *gin.Engine
	port            int
	shutdownTimeout time.Duration

	auth     *auth.Service
	users    *store.UserStore
	tasks    *store.TaskStore
	chats    *store.ChatStore
	chat     ai.ChatFunc
	parser   *intent.Parser
	resolver *intent.Resolver
	executor *intent.Executor
}

type Deps struct {
	Auth     *auth.Service
	Users    *store.UserStore
	Tasks    *store.TaskStore
	Chats    *store.ChatStore
	Chat     ai.ChatFunc
	Parser   *intent.Parser
	Resolver *intent.Resolver
	Executor *intent.Executor
}

func NewServer(port int, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		engine:          engine,
		port:            port,
		shutdownTimeout: 5 * time.Second,
		auth:            deps.Auth,
		users:           deps.Users,
		tasks:           deps.Tasks,
		chats:           deps.Chats,
		chat:            deps.Chat,
		parser:          deps.Parser,
		resolver:        deps.Resolver,
		executor:        deps.Executor,
	}

	engine.Use(requestID(), requestLogger(), recovery(), corsMiddleware())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := s.engine.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.handleRegister)
	authGroup.POST("/login", s.handleLogin)

	api.GET("/user/profile", s.handleUserProfile)

	tasks := api.Group("/tasks")
	tasks.POST("/", s.optionalUser, s.handleCreateTask)
	tasks.PATCH("/:id", s.optionalUser, s.handleUpdateTask)
	tasks.DELETE("/:id", s.optionalUser, s.handleDeleteTask)
	tasks.GET("/user/:id", s.handleListUserTasks)
	tasks.POST("/intent", s.requireActiveUser, s.handleTaskIntent)
	tasks.POST("/execute_intent", s.requireActiveUser, s.handleExecuteIntent)

	api.POST("/chat", s.optionalUser, s.handleChat)

	history := api.Group("/chat-history", s.requireActiveUser)
	history.GET("", s.handleChatHistory)
	history.DELETE("/:id", s.handleDeleteChatMessage)
	history.DELETE("", s.handleClearChatHistory)
}

// Handler exposes the engine for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error: %v", err)
		}
	}()

	logger.Info("HTTP listening on port %d", s.port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
