// Package api wires the HTTP server: middleware, sessions and routes.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/recipebox/internal/api/handler"
	"github.com/jon4hz/recipebox/internal/auth"
	"github.com/jon4hz/recipebox/internal/config"
	"github.com/jon4hz/recipebox/internal/database"
)

const (
	sessionName     = "recipebox_session"
	adminLoginPath  = "/admin/login/"
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	db        database.DB
	tokens    *auth.TokenProvider
	sessions  *auth.SessionProvider
}

// New creates the server and registers all routes.
func New(cfg *config.Config, db database.DB) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	s := &Server{
		cfg:       cfg,
		ginEngine: gin.New(),
		db:        db,
		tokens:    auth.NewTokenProvider(db, cfg.SecretKey),
		sessions:  auth.NewSessionProvider(db, adminLoginPath),
	}

	s.ginEngine.Use(gin.Recovery(), requestLogger(), gzip.Gzip(gzip.DefaultCompression))
	s.ginEngine.SetHTMLTemplate(handler.Templates())

	s.setupRoutes()
	s.setupAdminRoutes()

	return s, nil
}

func (s *Server) sessionMiddleware() gin.HandlerFunc {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/admin",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(sessionName, store)
}

func (s *Server) setupRoutes() {
	users := handler.NewUser(s.db, s.cfg.SecretKey, s.cfg.TokenTTL)
	tags := handler.NewTagHandler(s.db)
	ingredients := handler.NewIngredientHandler(s.db)

	api := s.ginEngine.Group("/api")

	userGroup := api.Group("/user")
	userGroup.POST("/create/", users.Create)
	userGroup.POST("/token/", users.Token)
	userGroup.GET("/me/", s.tokens.RequireAuth(), users.Me)
	userGroup.PATCH("/me/", s.tokens.RequireAuth(), users.UpdateMe)

	recipe := api.Group("/recipe")
	recipe.Use(s.tokens.RequireAuth())
	recipe.GET("/tags/", tags.List)
	recipe.POST("/tags/", tags.Create)
	recipe.GET("/ingredients/", ingredients.List)
	recipe.POST("/ingredients/", ingredients.Create)
}

func (s *Server) setupAdminRoutes() {
	h := handler.NewAdmin(s.db, s.sessions, s.cfg)

	adminGroup := s.ginEngine.Group("/admin")
	adminGroup.Use(s.sessionMiddleware())

	adminGroup.GET("/login/", h.LoginPage)
	adminGroup.POST("/login/", h.Login)
	adminGroup.POST("/logout/", h.Logout)

	protected := adminGroup.Group("/")
	protected.Use(s.sessions.RequireStaff())
	protected.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/admin/users/") })
	protected.GET("/users/", h.Users)
	protected.GET("/users/add/", h.AddUserPage)
	protected.POST("/users/add/", h.AddUser)
	protected.GET("/users/:id/", h.EditUserPage)
	protected.POST("/users/:id/", h.EditUser)
	protected.GET("/tags/", h.Tags)
	protected.GET("/ingredients/", h.Ingredients)
}

// Handler returns the http.Handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server", "listen", s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// requestLogger logs every request through the "http" sub-logger.
func requestLogger() gin.HandlerFunc {
	logger := log.Default().WithPrefix("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client", c.ClientIP(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}
