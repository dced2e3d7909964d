package ws_session

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	usecase_room "github.com/ashchv/grubswipe/internal/usecase/room"
	usecase_vote "github.com/ashchv/grubswipe/internal/usecase/vote"
)

type Controller struct {
	hub    *Hub
	rooms  *usecase_room.Usecase
	votes  *usecase_vote.Usecase
	logger *slog.Logger

	upgrader websocket.Upgrader
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func NewController(hub *Hub, rooms *usecase_room.Usecase, votes *usecase_vote.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		hub:    hub,
		rooms:  rooms,
		votes:  votes,
		logger: slog.Default(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws", c.serve)
}

func (c *Controller) serve(ctx *gin.Context) {
	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := &Client{
		hub:      c.hub,
		conn:     conn,
		send:     make(chan Event, writeSendBuffer),
		logger:   c.logger,
		rooms:    c.rooms,
		votes:    c.votes,
		memberID: uuid.NewString(),
	}

	c.logger.Info("client connected", "member", client.memberID)

	go client.writePump()
	go client.readPump()
}
