package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Brownie44l1/image-classifier/internal/classifier"
	"github.com/Brownie44l1/image-classifier/internal/handlers"
	"github.com/Brownie44l1/image-classifier/internal/middleware"
)

// PredictTimeout bounds a single predict request, including any wait for the
// model to finish loading.
const PredictTimeout = 30 * time.Second

// Setup creates and configures the Gin router
func Setup(session *classifier.Session, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	handler := handlers.NewHandler(session, logger, PredictTimeout)
	router.GET("/health", handler.Health)
	router.GET("/ready", handler.Ready)

	v1 := router.Group("/api/v1")
	{
		predict := v1.Group("/predict")
		{
			predict.POST("/image", handler.PredictFromImage)
			predict.POST("/frame", handler.PredictFromVideo)
		}
	}

	return router
}
