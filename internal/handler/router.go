package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/student-roster/api/swagger"
	"github.com/noah-isme/student-roster/internal/middleware"
	"github.com/noah-isme/student-roster/internal/service"
	"github.com/noah-isme/student-roster/pkg/config"
	"github.com/noah-isme/student-roster/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-roster/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-roster/pkg/middleware/requestid"
)

// RouterDeps bundles what the HTTP surface needs.
type RouterDeps struct {
	Students studentService
	Exports  rosterExporter
	Metrics  *service.MetricsService
	Ready    func() error
}

// NewRouter builds the gin engine with middleware and all routes mounted.
func NewRouter(cfg *config.Config, logr *zap.Logger, deps RouterDeps) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics, "/metrics", "/health", "/ready"))

	metricsHandler := NewMetricsHandler(deps.Metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)
	api.GET("/metrics/summary", metricsHandler.Snapshot)

	students := NewStudentHandler(deps.Students, deps.Exports, logr)
	group := api.Group("/students")
	group.GET("", students.List)
	group.POST("", middleware.Audit(logr, "student.create"), students.Create)
	group.GET("/export", students.Export)
	group.POST("/bulk-delete", middleware.Audit(logr, "student.bulk_delete"), students.BulkDelete)
	group.GET("/:id", students.Get)
	group.GET("/:id/form", students.Form)
	group.PUT("/:id", middleware.Audit(logr, "student.update"), students.Update)

	return r
}
