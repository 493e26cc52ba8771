package router

import (
	banksvc "swarna-backend/internal/application/banks"
	dashsvc "swarna-backend/internal/application/dashboard"
	repsvc "swarna-backend/internal/application/repledge"
	"swarna-backend/internal/config"
	"swarna-backend/internal/infrastructure/database"
	bankhandler "swarna-backend/internal/interfaces/handlers/banks"
	cwhandler "swarna-backend/internal/interfaces/handlers/closeworkflow"
	dashhandler "swarna-backend/internal/interfaces/handlers/dashboard"
	healthhandler "swarna-backend/internal/interfaces/handlers/health"
	rephandler "swarna-backend/internal/interfaces/handlers/repledge"
	"swarna-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
		app.Use(middleware.HealthMarker(rdb))
	}

	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Root)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	if db != nil {
		repledgeService := &repsvc.Service{DB: db}
		rh := &rephandler.Handlers{Service: repledgeService}
		repGroup := app.Group("/api/v1/repledges")
		repGroup.Get("/view-repledge/:id", rh.ViewRepledge)
		repGroup.Get("/list-open-repledges", rh.ListOpenRepledges)
		repGroup.Post("/create-repledge", rh.CreateRepledge)
		repGroup.Post("/quote", rh.Quote)
		repGroup.Post("/close-repledge", rh.CloseRepledge)

		cwh := &cwhandler.Handlers{Registry: cwhandler.NewRegistry(repledgeService)}
		cwGroup := app.Group("/api/v1/close-workflow")
		cwGroup.Post("/start", cwh.Start)
		cwGroup.Post("/:id/load", cwh.Load)
		cwGroup.Post("/:id/params", cwh.SetParams)
		cwGroup.Post("/:id/commit", cwh.Commit)
		cwGroup.Get("/:id/state", cwh.State)

		bankService := &banksvc.Service{DB: db}
		bh := &bankhandler.Handlers{Service: bankService}
		bankGroup := app.Group("/api/v1/banks")
		bankGroup.Get("/list-banks", bh.ListBanks)
		bankGroup.Post("/create-bank", bh.CreateBank)

		dashService := &dashsvc.Service{DB: db}
		dh := &dashhandler.Handlers{Service: dashService}
		app.Get("/api/v1/dashboard/summary", dh.Summary)
	}

	return app, db, rdb, nil
}
