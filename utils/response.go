package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hibiki/errs"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// Fail maps a service error onto the response envelope using its kind.
// Errors outside the taxonomy are internal; their details stay in the logs.
func Fail(ctx *gin.Context, err error) {
	if errs.KindOf(err) == 0 {
		if Sugar != nil {
			Sugar.Errorw("internal error", "path", ctx.FullPath(), "error", err)
		}
		Error(ctx, http.StatusInternalServerError, http.StatusInternalServerError, "internal server error")
		return
	}
	status := statusOf(err)
	Error(ctx, status, status, err.Error())
}

func statusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindNotAllowed:
		return http.StatusMethodNotAllowed
	case errs.KindBadRequest:
		return http.StatusBadRequest
	case errs.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
