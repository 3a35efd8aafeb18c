// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"floorly/internal/broadcast"
	"floorly/internal/floor"
	"floorly/internal/guests"
	"floorly/internal/reservations"
	"floorly/internal/shared/config"
	"floorly/internal/shared/database"
	"floorly/internal/shared/middleware"
	"floorly/internal/tables"
	"floorly/internal/waitlist"
	"floorly/pkg/locker"
	"floorly/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher broadcast.Publisher
	service   floor.Service
	promoter  *floor.Promoter
}

// NewRouter builds the full dependency graph: repositories, the lock
// backend, the event publisher, the floor engine and its promoter.
func NewRouter(cfg *config.Config, db *database.DB) (*Router, error) {
	if err := floor.RegisterValidations(); err != nil {
		return nil, err
	}

	guestRepo := guests.NewRepository(db.GetPostgreSQL())
	tableRepo := tables.NewRepository(db.GetPostgreSQL())
	resRepo := reservations.NewRepository(db.GetPostgreSQL())
	wlRepo := waitlist.NewRepository(db.GetPostgreSQL())

	var locks locker.Locker
	if db.Redis != nil {
		locks = locker.NewRedisLocker(db.Redis, cfg.Floor.LockTimeout)
	} else {
		locks = locker.NewLocalLocker(cfg.Floor.LockTimeout)
	}

	var publisher broadcast.Publisher
	if cfg.Kafka.Enabled {
		kafkaConfig := broadcast.DefaultKafkaConfig()
		kafkaConfig.Brokers = cfg.Kafka.Brokers
		kafkaConfig.Topic = cfg.Kafka.Topic
		kafkaPublisher, err := broadcast.NewKafkaPublisher(kafkaConfig)
		if err != nil {
			return nil, err
		}
		publisher = kafkaPublisher
	} else {
		publisher = broadcast.NewLogPublisher(logger.GetDefault())
	}

	service := floor.NewService(tableRepo, resRepo, wlRepo, guestRepo, locks, publisher, cfg)
	promoter := floor.NewPromoter(service, wlRepo, &floor.PromoterConfig{
		SweepInterval: cfg.Floor.PromoteInterval,
		TriggerBuffer: 64,
	})

	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
		service:   service,
		promoter:  promoter,
	}, nil
}

// Promoter exposes the waitlist promoter for lifecycle management
func (r *Router) Promoter() *floor.Promoter {
	return r.promoter
}

// Publisher exposes the event publisher so main can close it on shutdown
func (r *Router) Publisher() broadcast.Publisher {
	return r.publisher
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	api.Use(middleware.OrgScope())
	{
		guestRepo := guests.NewRepository(r.db.GetPostgreSQL())
		guests.SetupGuestRoutes(api, guests.NewController(guestRepo))

		tableRepo := tables.NewRepository(r.db.GetPostgreSQL())
		tables.SetupTableRoutes(api, tables.NewController(tableRepo))

		floor.SetupFloorRoutes(api, floor.NewController(r.service))
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "floorly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "floorly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"promoter":    r.promoter.GetStatus(),
			"timestamp":   time.Now(),
		})
	})
}
