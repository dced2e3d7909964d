package http_init

import (
	"log"
	"log/slog"

	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

// Controller is one route bundle mounted under the shared prefix.
type Controller interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// ControllerPool collects route bundles during wiring and mounts them on
// a single gin engine. The websocket gateway registers here like any
// other controller, so the whole coordinator listens on one port.
type ControllerPool struct {
	controllers []Controller
	engine      *gin.Engine
}

func NewControllerPool() *ControllerPool {
	return &ControllerPool{engine: gin.Default()}
}

func (p *ControllerPool) Add(c Controller) {
	p.controllers = append(p.controllers, c)
}

func (p *ControllerPool) Register() {
	group := p.engine.Group(apiPrefix)
	for _, c := range p.controllers {
		c.RegisterRoutes(group)
	}
	slog.Info("routes registered",
		slog.Int("controllers", len(p.controllers)),
		slog.String("prefix", apiPrefix))
}

func (p *ControllerPool) RunAll(port string) {
	slog.Info("http server starting", slog.String("port", port))
	if err := p.engine.Run(":" + port); err != nil {
		log.Fatalf("failed to run HTTP server: %v", err)
	}
}
