package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"talib.app/backend/internal/middleware"
	"talib.app/backend/internal/modules/student/dto"
	student "talib.app/backend/internal/modules/student/service"
	"talib.app/backend/pkg/response"
)

type StudentHandler struct {
	service student.StudentService
}

func NewStudentHandler(service student.StudentService) *StudentHandler {
	return &StudentHandler{service: service}
}

func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), middleware.OptionalActor(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, profile, "student retrieved successfully")
}

func (h *StudentHandler) GetMe(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), actor, actor.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, profile, "profile retrieved successfully")
}

func (h *StudentHandler) UpdateMe(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	var avatar io.Reader
	if file, err := c.FormFile("avatar"); err == nil {
		f, err := file.Open()
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "could not read avatar file")
			return
		}
		defer f.Close()
		avatar = f
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), actor.ID, req, avatar)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, profile, "profile updated successfully")
}

func (h *StudentHandler) ListStudents(c *gin.Context) {
	var filter dto.StudentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ValidationError(c, err)
		return
	}

	page, err := h.service.ListStudents(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Page(c, page, "students retrieved successfully")
}

func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteStudent(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "student deleted successfully")
}

func (h *StudentHandler) GetContact(c *gin.Context) {
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	contact, err := h.service.GetContact(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, contact, "contact retrieved successfully")
}
