package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ddhiman-alt/nearpaws/internal/api/handlers"
	"github.com/ddhiman-alt/nearpaws/internal/api/middleware"
	"github.com/ddhiman-alt/nearpaws/internal/config"
	"github.com/ddhiman-alt/nearpaws/internal/services"
)

// Services are the dependencies of the public router.
type Services struct {
	Pets      services.IPetService
	Adoptions services.IAdoptionService
	Users     services.IUserService
}

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, svc Services, rateLimiter *middleware.RateLimiterMiddleware, logger *slog.Logger) *gin.Engine {
	r := gin.New()

	// Order matters: the request logger needs the request id, recovery must
	// wrap everything after it.
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORSMiddleware(cfg.CorsAllowedOrigin))
	if rateLimiter != nil {
		r.Use(rateLimiter.Limit())
	}

	petHandler := handlers.NewPetHandler(svc.Pets)
	adoptionHandler := handlers.NewAdoptionHandler(svc.Adoptions)
	protect := middleware.AuthMiddleware(cfg.JwtSecret, svc.Users)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "NearPaws API is running"})
		})

		pets := apiGroup.Group("/pets")
		{
			// Specific paths before /:id.
			pets.GET("/user/my-pets", protect, petHandler.MyPets)
			pets.GET("", petHandler.List)
			pets.GET("/nearby", petHandler.Nearby)
			pets.GET("/:id", petHandler.Get)

			pets.POST("", protect, petHandler.Create)
			pets.PUT("/:id", protect, petHandler.Update)
			pets.PATCH("/:id/status", protect, petHandler.UpdateStatus)
			pets.DELETE("/:id", protect, petHandler.Delete)
		}

		adoptions := apiGroup.Group("/adoptions", protect)
		{
			adoptions.POST("", adoptionHandler.Create)
			adoptions.GET("/received", adoptionHandler.Received)
			adoptions.GET("/sent", adoptionHandler.Sent)
			adoptions.PATCH("/:id/status", adoptionHandler.UpdateStatus)
			adoptions.DELETE("/:id", adoptionHandler.Withdraw)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	return r
}

// SetupServiceRouter configures the internal service engine. rdb may be nil
// when Redis is unavailable; getTestEmail then reports 503.
func SetupServiceRouter(rdb handlers.MockEmailReader, shutdownChan chan<- struct{}, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(logger), middleware.RequestLogger(), middleware.Recovery())

	serviceApiHandler := handlers.NewServiceApiHandler(rdb, shutdownChan)
	r.POST("/api", serviceApiHandler.HandleRequest)
	return r
}
