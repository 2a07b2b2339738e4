package server

import (
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/importer"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/store"
	enginesync "github.com/aimanagement-dev/archipielago-production-sub001/pkg/sync"
	"github.com/gin-gonic/gin"
)

// Server exposes the sync engine's operations to the dashboard's API
// layer.
type Server struct {
	engine     *enginesync.Engine
	reconciler *importer.Reconciler
	store      store.TaskStore
}

func New(engine *enginesync.Engine, reconciler *importer.Reconciler, s store.TaskStore) *Server {
	return &Server{engine: engine, reconciler: reconciler, store: s}
}

// Router mounts the exposed operations.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.Use(corsMiddleware())

	router.POST("/sync/outbound", s.syncOutbound)
	router.GET("/sync/inbound", s.syncInbound)
	router.POST("/import", s.importBatch)
	router.POST("/attendee-response", s.attendeeResponse)

	return router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
