package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/migrations"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg    config.Config
	logger *log.Logger
	pool   *pgxpool.Pool // nil on SQLite
	db     *sql.DB
	redis  *redis.Client // nil when caching is off
	router *gin.Engine
}

// New opens the database named by cfg.DB.DSN, migrates it, connects Redis if
// configured and builds the router.
func New(cfg config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Default()
	}
	a := &App{cfg: cfg, logger: logger}

	if err := a.openDB(); err != nil {
		return nil, err
	}
	if err := migrations.Up(a.db, a.dialect()); err != nil {
		a.closeDB()
		return nil, err
	}

	if cfg.Redis.Enabled() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			a.closeDB()
			return nil, err
		}
		a.redis = rdb
	} else {
		logger.Printf("redis not configured, list cache disabled")
	}

	a.router = a.newRouter()
	return a, nil
}

// Migrate applies pending migrations and reports the resulting version.
func Migrate(cfg config.Config, logger *log.Logger) (int64, error) {
	a := &App{cfg: cfg, logger: logger}
	if err := a.openDB(); err != nil {
		return 0, err
	}
	defer a.closeDB()
	if err := migrations.Up(a.db, a.dialect()); err != nil {
		return 0, err
	}
	return migrations.Version(a.db, a.dialect())
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.redis != nil {
		_ = a.redis.Close()
	}
	a.closeDB()
	return nil
}

func (a *App) dialect() string {
	if a.pool != nil {
		return migrations.Postgres
	}
	return migrations.SQLite
}

func (a *App) openDB() error {
	if a.cfg.DB.IsPostgres() {
		pool, err := newPostgres(a.cfg.DB.DSN)
		if err != nil {
			return err
		}
		a.pool = pool
		a.db = stdlib.OpenDBFromPool(pool)
		return nil
	}
	db, err := newSQLite(a.cfg.DB.DSN)
	if err != nil {
		return err
	}
	a.db = db
	return nil
}

func (a *App) closeDB() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// single writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	return db, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func (a *App) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(a.logger.Writer()), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	a.setup(r)
	return r
}
