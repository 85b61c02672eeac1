package app

import (
	"github.com/idilsaglam/tada/internal/auth"
	"github.com/idilsaglam/tada/internal/cache"
	"github.com/idilsaglam/tada/internal/handlers"
	"github.com/idilsaglam/tada/internal/repo"
	"github.com/idilsaglam/tada/internal/service"

	"github.com/gin-gonic/gin"
)

// setup registers all routes on the given engine.
func (a *App) setup(r *gin.Engine) {
	r.GET("/health", a.healthHandler)
	r.GET("/version", a.versionHandler)

	api := r.Group("/api/v1")

	var (
		todoRepo repo.TodoRepo
		userRepo repo.UserRepo
	)
	if a.pool != nil {
		todoRepo = repo.NewPGTodoRepo(a.pool)
		userRepo = repo.NewPGUserRepo(a.pool)
	} else {
		todoRepo = repo.NewSQLiteTodoRepo(a.db)
		userRepo = repo.NewSQLiteUserRepo(a.db)
	}

	var todoCache *cache.TodoCache
	if a.redis != nil {
		todoCache = cache.NewTodoCache(a.redis, a.cfg.Redis.DefaultTTL.Duration())
	}

	issuer := auth.NewIssuer(a.cfg.Auth.Secret, a.cfg.Auth.TokenTTL.Duration())
	requireSession := auth.RequireSession(issuer)

	authHandler := handlers.NewAuthHandler(issuer, service.NewUserService(userRepo))
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)
	api.GET("/auth/session", requireSession, authHandler.Session)

	protected := api.Group("", requireSession)
	todoHandler := handlers.NewTodoHandler(service.NewTodoService(todoRepo, todoCache, a.logger))
	protected.GET("/todos", todoHandler.List)
	protected.POST("/todos", todoHandler.Create)
	protected.PATCH("/todos/:id", todoHandler.Update)
	protected.DELETE("/todos/:id", todoHandler.Delete)
}

func (a *App) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{"ok": true, "env": a.cfg.App.Env})
}

func (a *App) versionHandler(c *gin.Context) {
	c.JSON(200, gin.H{"version": a.cfg.App.Version})
}
