package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"carrental/internal/config"
	"carrental/internal/middleware"
	"carrental/internal/modules/auth"
	"carrental/internal/modules/car"
	"carrental/internal/modules/catalog"
	"carrental/internal/modules/dispute"
	"carrental/internal/modules/favorite"
	"carrental/internal/modules/notification"
	"carrental/internal/modules/payment"
	"carrental/internal/modules/rental"
	"carrental/internal/modules/review"
	"carrental/internal/pkg/cache"
	"carrental/internal/pkg/jwt"
	"carrental/internal/pkg/logger"
	"carrental/internal/pkg/response"
	"carrental/internal/repository"
	"carrental/internal/repository/cached"
)

type Deps struct {
	DB     *gorm.DB
	Cache  *cache.Client
	Config *config.Config
	Log    logger.Logger
	// Now overrides the clock used for rental calendar rules.
	Now func() time.Time
}

// App is the wired HTTP application plus the services background jobs need.
type App struct {
	Engine        *gin.Engine
	Hub           *notification.Hub
	Rentals       *rental.Service
	Notifications *notification.Service
}

func New(d Deps) *App {
	cfg := d.Config

	userRepo := repository.NewUserRepository(d.DB)
	catalogRepo := repository.NewCatalogRepository(d.DB)
	carRepo := repository.NewCarRepository(d.DB)
	rentalRepo := repository.NewRentalRepository(d.DB)
	paymentRepo := repository.NewPaymentRepository(d.DB)
	reviewRepo := repository.NewReviewRepository(d.DB)
	disputeRepo := repository.NewDisputeRepository(d.DB)
	favoriteRepo := repository.NewFavoriteRepository(d.DB)
	notificationRepo := repository.NewNotificationRepository(d.DB)
	cachedCatalog := cached.NewCatalogRepository(catalogRepo, d.Cache, cfg.Redis.CacheTTL, d.Log)

	jwtService := jwt.New(cfg.JWT.Secret, cfg.JWT.TTL)
	hub := notification.NewHub()

	notificationService := notification.NewService(notificationRepo, hub, d.Log)
	var rentalOpts []rental.Option
	if d.Now != nil {
		rentalOpts = append(rentalOpts, rental.WithClock(d.Now))
	}
	rentalService := rental.NewService(d.DB, rentalRepo, carRepo, paymentRepo, notificationService, d.Log, rentalOpts...)
	paymentService := payment.NewService(d.DB, paymentRepo, rentalRepo, carRepo, rentalService, notificationService, d.Log)

	authHandler := auth.NewHandler(auth.NewService(userRepo, jwtService, d.Log))
	catalogHandler := catalog.NewHandler(catalog.NewService(cachedCatalog, d.Log))
	carHandler := car.NewHandler(car.NewService(d.DB, carRepo, rentalRepo, catalogRepo, d.Log))
	rentalHandler := rental.NewHandler(rentalService)
	paymentHandler := payment.NewHandler(paymentService, rentalService)
	reviewHandler := review.NewHandler(review.NewService(reviewRepo, rentalService, carRepo, notificationService, d.Log))
	disputeHandler := dispute.NewHandler(dispute.NewService(disputeRepo, rentalService, carRepo, notificationService, d.Log))
	favoriteHandler := favorite.NewHandler(favorite.NewService(favoriteRepo, carRepo))
	notificationHandler := notification.NewHandler(notificationService, hub, jwtService, d.Log, cfg.CORS.AllowedOrigins)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(d.Log), middleware.CORS(cfg.CORS.AllowedOrigins))

	r.GET("/health", health(d))
	notificationHandler.RegisterWebSocket(r)

	v1 := r.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(jwtService))
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())

	authHandler.RegisterPublicRoutes(v1)
	authHandler.RegisterProtectedRoutes(protected)
	catalogHandler.RegisterRoutes(v1, admin)
	carHandler.RegisterRoutes(v1, protected)
	rentalHandler.RegisterPublicRoutes(v1)
	rentalHandler.RegisterRoutes(protected)
	paymentHandler.RegisterRoutes(protected)
	reviewHandler.RegisterRoutes(v1, protected)
	disputeHandler.RegisterRoutes(protected, admin)
	favoriteHandler.RegisterRoutes(protected)
	notificationHandler.RegisterRoutes(protected)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "ROUTE_NOT_FOUND", "Route not found")
	})

	return &App{
		Engine:        r,
		Hub:           hub,
		Rentals:       rentalService,
		Notifications: notificationService,
	}
}

func health(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"database": "ok", "cache": "disabled"}
		code := http.StatusOK

		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if d.Cache.Enabled() {
			status["cache"] = "ok"
			if err := d.Cache.Ping(ctx); err != nil {
				status["cache"] = "unavailable"
			}
		}

		c.JSON(code, gin.H{"success": code == http.StatusOK, "data": status})
	}
}
