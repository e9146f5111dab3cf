package handler

import (
	"github.com/gin-gonic/gin"

	statService "talib.app/backend/internal/modules/stat/service"
	"talib.app/backend/pkg/response"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{statService: statService}
}

func (h *StatHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.statService.GetDashboard(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, dashboard, "dashboard retrieved successfully")
}
