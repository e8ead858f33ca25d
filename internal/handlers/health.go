package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse describes a running gateway
type HealthResponse struct {
	Status    string   `json:"status"`
	Hostname  string   `json:"hostname"`
	Function  string   `json:"function"`
	Handlers  []string `json:"handlers"`
	Schemas   []string `json:"schemas"`
	Telemetry bool     `json:"telemetry"`
}

// HealthHandler reports readiness and what the function has registered
type HealthHandler struct {
	info HealthResponse
}

// NewHealthHandler creates a health handler. The response is fixed at startup.
func NewHealthHandler(hostname, function string, handlers, schemas []string, telemetry bool) *HealthHandler {
	if handlers == nil {
		handlers = []string{}
	}
	if schemas == nil {
		schemas = []string{}
	}
	return &HealthHandler{
		info: HealthResponse{
			Status:    "healthy",
			Hostname:  hostname,
			Function:  function,
			Handlers:  handlers,
			Schemas:   schemas,
			Telemetry: telemetry,
		},
	}
}

// @Summary Health check
// @Description Reports the gateway as healthy with its registered handlers and schemas
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /_/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.info)
}
