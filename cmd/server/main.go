package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/blackhouse/forum/internal/config"
	"github.com/blackhouse/forum/internal/database"
	"github.com/blackhouse/forum/internal/forum"
	"github.com/blackhouse/forum/internal/handler"
	"github.com/blackhouse/forum/internal/middleware"
	"github.com/blackhouse/forum/internal/queue"
	"github.com/blackhouse/forum/internal/repository"
	"github.com/blackhouse/forum/internal/router"
	queue_publisher "github.com/blackhouse/forum/internal/service"
	"github.com/blackhouse/forum/internal/store"
	"github.com/blackhouse/forum/internal/store/memory"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	var st store.Store
	switch cfg.StoreBackend {
	case config.BackendMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		st = repository.NewStore(db)
		log.Printf("store: mysql %s/%s", cfg.DBHost, cfg.DBName)
	case config.BackendMemory:
		mem, err := memory.Open(cfg.SnapshotPath)
		if err != nil {
			log.Fatalf("snapshot: %v", err)
		}
		stop := mem.AutoSave(time.Duration(cfg.SnapshotInterval) * time.Second)
		defer stop()
		st = mem
		log.Printf("store: memory, snapshot=%s every %ds", cfg.SnapshotPath, cfg.SnapshotInterval)
	}

	engine := forum.New(st,
		forum.NewLevelTable(forum.DefaultLevels()),
		forum.NewCatalog(forum.DefaultCatalog()),
		forum.WithNotifier(queue_publisher.NewNotifier()),
	)

	go func() {
		if err := queue.StartAchievementConsumer(); err != nil {
			log.Printf("achievement consumer stopped: %v", err)
		}
	}()

	var cache echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
		log.Printf("redis response cache enabled")
	}

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, st),
		Category:      handler.NewCategoryHandler(st),
		Topic:         handler.NewTopicHandler(st, engine),
		Message:       handler.NewMessageHandler(engine),
		Profile:       handler.NewProfileHandler(st, engine),
		Leaderboard:   handler.NewLeaderboardHandler(st),
		Search:        handler.NewSearchHandler(st),
		Notifications: handler.NewNotificationHandler(st),
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, h.Auth, cfg.JWTSecret)
	router.RegisterPublic(e, h, cache)
	router.RegisterForum(e, h, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
