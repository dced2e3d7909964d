package http_room

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	http_common "github.com/ashchv/grubswipe/internal/delivery/http/common"
	usecase_room "github.com/ashchv/grubswipe/internal/usecase/room"
	usecase_vote "github.com/ashchv/grubswipe/internal/usecase/vote"
)

type Controller struct {
	rooms  *usecase_room.Usecase
	votes  *usecase_vote.Usecase
	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(rooms *usecase_room.Usecase, votes *usecase_vote.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		rooms:  rooms,
		votes:  votes,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms")
	{
		rooms.POST("", c.allocate)
		rooms.GET("/:room_id", c.check)
		rooms.GET("/:room_id/matches", c.matches)
	}
}

type AllocateResponseDTO struct {
	RoomID string `json:"room_id"`
}

// allocate hands out a fresh room code for the client to share before
// anyone connects to it.
func (c *Controller) allocate(ctx *gin.Context) {
	id, err := c.rooms.AllocateCode(ctx)
	if err != nil {
		c.logger.Error("failed to allocate room code", slog.String("error", err.Error()))
		if errors.Is(err, usecase_room.ErrNoFreeCodes) {
			ctx.JSON(http.StatusServiceUnavailable, http_common.ErrorResponse{
				Message: "unavailable",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusCreated, AllocateResponseDTO{
		RoomID: string(id),
	})
}

type CheckResponseDTO struct {
	Message string `json:"message"`
}

// check is the pre-join validation used by the join form.
func (c *Controller) check(ctx *gin.Context) {
	if !c.rooms.CheckCode(ctx, ctx.Param("room_id")) {
		ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
			Message: "invalid",
		})
		return
	}

	ctx.JSON(http.StatusOK, CheckResponseDTO{
		Message: "valid",
	})
}

type MatchDTO struct {
	PlaceID   string    `json:"place_id"`
	Name      string    `json:"name"`
	Members   int       `json:"members"`
	MatchedAt time.Time `json:"matched_at"`
}

type MatchesResponseDTO struct {
	Matches []MatchDTO `json:"matches"`
}

func (c *Controller) matches(ctx *gin.Context) {
	roomID := ctx.Param("room_id")

	matches, err := c.votes.History(ctx, roomID)
	if err != nil {
		c.logger.Error("failed to load match history",
			slog.String("room_id", roomID),
			slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	dtos := make([]MatchDTO, 0, len(matches))
	for _, m := range matches {
		dtos = append(dtos, MatchDTO{
			PlaceID:   m.Restaurant.PlaceID,
			Name:      m.Restaurant.Name,
			Members:   m.Members,
			MatchedAt: m.MatchedAt,
		})
	}

	ctx.JSON(http.StatusOK, MatchesResponseDTO{Matches: dtos})
}
