package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zyzzzz-123/TECHIN510-project/app/core/auth"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/intent"
	"github.com/zyzzzz-123/TECHIN510-project/app/core/store"
	"github.com/zyzzzz-123/TECHIN510-project/app/pkg/logger"
)

const (
	ctxUserKey      = "current_user"
	ctxRequestIDKey = "request_id"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(ctxRequestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	log := logger.With("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("request_id", c.GetString(ctxRequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

// recovery catches panics and reports a generic server error without leaking
// anything beyond the recovered message.
func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic in handler %s: %v", c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	})
}

func corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	return cors.New(cfg)
}

// optionalUser attaches the authenticated user when a valid bearer token is
// present and stays silent otherwise.
func (s *Server) optionalUser(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.Next()
		return
	}
	user, err := s.auth.ResolveUser(c.Request.Context(), token)
	if err == nil {
		c.Set(ctxUserKey, user)
	}
	c.Next()
}

func (s *Server) requireActiveUser(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	user, err := s.auth.ResolveUser(c.Request.Context(), token)
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	if !user.IsActive {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Inactive user"})
		return
	}
	c.Set(ctxUserKey, user)
	c.Next()
}

func currentUser(c *gin.Context) (store.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return store.User{}, false
	}
	user, ok := v.(store.User)
	return user, ok
}

// currentUserID returns 0 for anonymous requests, which the store treats as
// an unscoped lookup.
func currentUserID(c *gin.Context) int64 {
	user, ok := currentUser(c)
	if !ok {
		return 0
	}
	return user.ID
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// writeError maps pipeline errors to client-facing statuses; anything
// unrecognized becomes a generic 500 carrying only the error message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrMessageNotFound),
		errors.Is(err, store.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, store.ErrValidation),
		errors.Is(err, store.ErrEmailTaken),
		errors.Is(err, intent.ErrEmptyIntent),
		errors.Is(err, intent.ErrMissingTaskID):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
	default:
		logger.Error("Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}
