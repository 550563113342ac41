package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/tanpawarit/omnidim-call-relay/pkg/metrics"
)

// RegisterRoutes mounts the relay endpoints under rg.
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	rg.POST("/dispatch_call", handlers.HandleDispatchCall)
	rg.GET("/call_status/:call_id", handlers.HandleCallStatus)
	rg.GET("/health", handlers.HandleHealth)
}

// NewRouter builds the full engine: middleware, /api routes and /metrics.
func NewRouter(handlers *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware(), AccessLogMiddleware(), RecoveryMiddleware())

	RegisterRoutes(r.Group("/api"), handlers)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}
