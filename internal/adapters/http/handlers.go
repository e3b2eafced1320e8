package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/dkeye/callroom/internal/adapters/ai"
	"github.com/dkeye/callroom/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const cacheExampleTTL = 10 * time.Minute

type handlers struct {
	svc Services
}

type askRequest struct {
	Prompt string `json:"prompt"`
	Agent  string `json:"agent"`
}

func (h *handlers) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.svc.Orch.Rooms.List()})
}

func (h *handlers) getRoom(c *gin.Context) {
	name, err := domain.ParseRoomName(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	info, ok := h.svc.Orch.Rooms.Room(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handlers) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}
	agent, err := ai.ParseAgent(req.Agent)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.svc.Assistant.Ask(c.Request.Context(), agent, req.Prompt)
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Str("agent", agent.String()).Msg("ask failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": answer})
}

func (h *handlers) cacheExample(c *gin.Context) {
	if h.svc.Cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not configured"})
		return
	}
	ctx := c.Request.Context()
	if err := h.svc.Cache.Set(ctx, "hello", "world", cacheExampleTTL); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("cache set")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	value, err := h.svc.Cache.Get(ctx, "hello")
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("cache get")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": value})
}
