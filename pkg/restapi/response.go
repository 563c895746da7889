package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"video-pipeline/pkg/errno"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Accepted 已受理响应，用于异步处理的请求
func Accepted(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusAccepted, Response{
		Code:    errno.OK.Code,
		Message: "Accepted",
		Data:    data,
	})
}

// Failed 失败响应，按错误类型映射HTTP状态码
func Failed(ctx *gin.Context, err error) {
	var e *errno.Errno
	if !errors.As(err, &e) {
		e = &errno.Errno{Code: errno.ErrInternalServer.Code, Message: err.Error()}
	}

	ctx.JSON(httpStatus(e.Code), Response{
		Code:    e.Code,
		Message: e.Message,
	})
}

func httpStatus(code int) int {
	switch {
	case code >= 400 && code < 500:
		return code
	case code >= 500 && code < 600:
		return http.StatusInternalServerError
	case code == errno.ErrJobNotFound.Code || code == errno.ErrTaskNotFound.Code || code == errno.ErrWorkerNotFound.Code:
		return http.StatusNotFound
	case code == errno.ErrQueueFull.Code:
		return http.StatusTooManyRequests
	case code >= 20000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
