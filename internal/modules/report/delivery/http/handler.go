package handler

import (
	"github.com/gin-gonic/gin"

	"talib.app/backend/internal/middleware"
	"talib.app/backend/internal/modules/report/dto"
	report "talib.app/backend/internal/modules/report/service"
	commonDto "talib.app/backend/pkg/dto"
	"talib.app/backend/pkg/response"
)

type ReportHandler struct {
	service report.ReportService
}

func NewReportHandler(service report.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) FileReport(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.FileReport(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, res, "report submitted successfully")
}

func (h *ReportHandler) MyReports(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query commonDto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	page, err := h.service.MyReports(c.Request.Context(), actor, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "reports retrieved successfully")
}

// ListReports is mounted under /admin.
func (h *ReportHandler) ListReports(c *gin.Context) {
	var query dto.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	page, err := h.service.ListReports(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "reports retrieved successfully")
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	res, err := h.service.GetReport(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "report retrieved successfully")
}

func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.service.UpdateStatus(c.Request.Context(), actor.ID, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "report updated successfully")
}
