package response

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"talib.app/backend/pkg/apperror"
	"talib.app/backend/pkg/dto"
	"talib.app/backend/pkg/validator"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

var production atomic.Bool

// SetProduction hides internal error messages from clients when enabled.
func SetProduction(enabled bool) {
	production.Store(enabled)
}

// Envelope is the uniform body of every API response.
type Envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data"`
	Message string              `json:"message"`
	Meta    *dto.PaginationMeta `json:"meta,omitempty"`
	Errors  map[string]string   `json:"errors,omitempty"`
}

func OK(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

func Created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

func Page[T any](c *gin.Context, page *dto.Paginated[T], message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: page.Data, Message: message, Meta: &page.Meta})
}

// Fail writes an error envelope with an explicit status.
func Fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Envelope{Success: false, Message: message})
}

// ResponseError maps err to a status code and writes the error envelope.
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	message := err.Error()
	if code == http.StatusInternalServerError {
		zap.L().Error("internal error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		if production.Load() {
			message = apperror.ErrInternal.Error()
		}
	}

	Fail(c, code, message)
}

// ValidationError writes a 400 envelope with a field-keyed message map.
func ValidationError(c *gin.Context, err error) {
	errs := validator.FormatValidationErrors(err)
	message := "validation failed"
	if len(errs) == 0 {
		message = "invalid request body"
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	str, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// GetRole returns the role carried by the bearer token, or "" if anonymous.
func GetRole(c *gin.Context) string {
	return c.GetString(ContextRole)
}

// ParamUUID parses a uuid path parameter.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		Fail(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
