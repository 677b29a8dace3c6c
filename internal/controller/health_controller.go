package controller

import (
	"context"
	"designhub_backend/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	DB         *gorm.DB
	Components map[string]Pinger
}

func NewHealthController(db *gorm.DB, components map[string]Pinger) *HealthController {
	return &HealthController{DB: db, Components: components}
}

// @Summary Health check
// @Description Reports the database and every other dependency
// @Tags System
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx.Request.Context())
	}
	if err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	components := gin.H{"database": "up"}
	degraded := false
	for name, p := range c.Components {
		pctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		err := p.Ping(pctx)
		cancel()
		if err != nil {
			components[name] = "down"
			degraded = true
			continue
		}
		components[name] = "up"
	}

	status := "ok"
	if degraded {
		status = "degraded"
	}
	util.Success(ctx, gin.H{
		"status":     status,
		"components": components,
	})
}
