package handler

import (
	"net/http"

	"github.com/chaos-io/passport-photo/model"
	"github.com/chaos-io/passport-photo/rembg"
	"github.com/gin-gonic/gin"
)

type StatusReporter interface {
	Status() rembg.Status
}

type SystemHandler struct {
	build  model.VersionResponse
	health StatusReporter
}

func NewSystemHandler(build model.VersionResponse, health StatusReporter) *SystemHandler {
	return &SystemHandler{build: build, health: health}
}

// Health 进程存活即返回 200，抠图服务状态单独给出
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "ok",
		Version:   h.build.Version,
		Segmenter: string(h.health.Status()),
	})
}

func (h *SystemHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, h.build)
}
