package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"repowatch.app/watcher/internal/domain"
	"repowatch.app/watcher/internal/http/dto"
	"repowatch.app/watcher/internal/service"
)

const invalidRepoURLMessage = "Invalid GitHub repo URL. Format: https://github.com/user/repo"

type WatchHandler struct {
	service service.WatchService
}

func NewWatchHandler(service service.WatchService) *WatchHandler {
	return &WatchHandler{service: service}
}

func (h *WatchHandler) Subscribe(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidRepoURLMessage})
		return
	}

	result, err := h.service.Subscribe(ctx, req.RepoURL)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRepoURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidRepoURLMessage})
			return
		}
		slog.ErrorContext(ctx, "failed to subscribe repo", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}

	status := dto.StatusSubscribed
	if result.AlreadySubscribed {
		status = dto.StatusAlreadySubscribed
	}
	c.JSON(http.StatusOK, dto.SubscribeResponse{
		Status: status,
		Repo:   result.Key.String(),
	})
}

func (h *WatchHandler) Inspect(c *gin.Context) {
	result := h.service.Inspect(c.Request.Context())

	// data is never null in the response, even for an empty log
	data := result.Events
	if data == nil {
		data = []domain.ClassifiedEvent{}
	}
	c.JSON(http.StatusOK, dto.InspectResponse{
		Count: result.Count,
		Data:  data,
	})
}

func (h *WatchHandler) Clear(c *gin.Context) {
	h.service.Clear(c.Request.Context())
	c.JSON(http.StatusOK, dto.ClearResponse{Status: dto.StatusCleared})
}
