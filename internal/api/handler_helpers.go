package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/response"
)

func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	if status >= http.StatusInternalServerError {
		logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	} else {
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
	}
	var resp response.APIResponse
	switch status {
	case http.StatusBadRequest:
		resp = response.BadRequest(msg + ": " + err.Error())
	case http.StatusNotFound:
		resp = response.NotFound(msg + ": " + err.Error())
	case http.StatusInternalServerError:
		resp = response.InternalError(msg + ": " + err.Error())
	default:
		resp = response.NewAppError(status, msg+": "+err.Error())
	}
	c.AbortWithStatusJSON(status, resp)
}

// HandleServiceError maps the error taxonomy onto a status: validation
// failures are 400, missing rows 404, backend failures and anything
// unclassified 500.
func HandleServiceError(c *gin.Context, logger internal.Logger, err error, msg string) {
	switch {
	case internal.IsValidation(err):
		HandleError(c, logger, err, http.StatusBadRequest, "Validation failed")
	case errors.Is(err, internal.ErrNotFound):
		HandleError(c, logger, err, http.StatusNotFound, "Not found")
	case internal.IsStorage(err):
		HandleError(c, logger, err, http.StatusInternalServerError, msg)
	default:
		HandleError(c, logger, err, http.StatusInternalServerError, "Unexpected error")
	}
}

// bindJSON decodes the body into dst. A decoding failure that is already a
// ValidationError (for example a bad duration) is reported as such.
func bindJSON(c *gin.Context, logger internal.Logger, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if internal.IsValidation(err) {
			HandleError(c, logger, err, http.StatusBadRequest, "Validation failed")
		} else {
			HandleError(c, logger, err, http.StatusBadRequest, "Invalid JSON")
		}
		return false
	}
	return true
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(http.StatusOK, response.Success(data, meta))
}

func HandleCreated(c *gin.Context, logger internal.Logger, data interface{}) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Created", requestID)
	c.JSON(http.StatusCreated, response.Success(data, nil))
}
