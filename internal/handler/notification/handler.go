package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/probook/probook-api/internal/handler"
	"github.com/probook/probook-api/internal/notifier"
)

// Feeder is the slice of the notifier service the handler needs.
type Feeder interface {
	Feed(userID uuid.UUID) notifier.Feed
	Refresh(userID uuid.UUID)
	Dismiss(userID uuid.UUID, id string)
	DismissAll(userID uuid.UUID)
}

type Handler struct {
	service Feeder
}

func NewHandler(service Feeder) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.GetFeed)
		notifications.POST("/refresh", h.Refresh)
		notifications.POST("/:id/dismiss", h.Dismiss)
		notifications.POST("/dismiss-all", h.DismissAll)
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.Feed(userID)))
}

func (h *Handler) Refresh(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	h.service.Refresh(userID)
	c.JSON(http.StatusAccepted, handler.NewSuccessResponse(nil))
}

func (h *Handler) Dismiss(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid notification ID"))
		return
	}

	h.service.Dismiss(userID, id)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.Feed(userID)))
}

func (h *Handler) DismissAll(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	h.service.DismissAll(userID)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.Feed(userID)))
}
