package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResponseSuccess 返回成功响应
func ResponseSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessResponse(data))
}

// ResponseSuccessMessage 返回成功响应（带消息）
func ResponseSuccessMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, SuccessMessageResponse(message, data))
}

// ResponseCreated 返回创建成功响应（201）
func ResponseCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, SuccessResponse(data))
}

// ResponseList 返回分页列表响应
func ResponseList(c *gin.Context, items any, total int64, req *PaginationRequest) {
	if req == nil {
		defaultReq := DefaultPagination()
		req = &defaultReq
	}

	page := req.Page
	if page < 1 {
		page = 1
	}

	c.JSON(http.StatusOK, SuccessResponse(NewListResponse(items, page, req.GetPageSize(), total)))
}

// ResponseError 返回错误响应
func ResponseError(c *gin.Context, code int, message string) {
	c.JSON(httpStatusForCode(code), ErrorResponse(code, message))
}

// httpStatusForCode 业务状态码到HTTP状态码的映射
func httpStatusForCode(code int) int {
	switch {
	case code == CodeUnauthorized, code == CodeInvalidCredentials:
		return http.StatusUnauthorized
	case code == CodeForbidden:
		return http.StatusForbidden
	case code == CodeInvalidRequest, code == CodeScoreOutOfRange:
		return http.StatusBadRequest
	case code == CodeInternalError:
		return http.StatusInternalServerError
	}

	// 按错误类别映射
	switch {
	case isNotFoundCode(code):
		return http.StatusNotFound
	case isConflictCode(code):
		return http.StatusConflict
	}
	return http.StatusOK
}

func isNotFoundCode(code int) bool {
	switch code {
	case CodeNotFound, CodeUserNotFound, CodePromptNotFound,
		CodeVersionNotFound, CodeEvaluationNotFound, CodeTagNotFound,
		CodeTagNotAttached:
		return true
	}
	return false
}

func isConflictCode(code int) bool {
	switch code {
	case CodeConflict, CodeUserAlreadyExists, CodeVersionConflict,
		CodeInitialVersionExists, CodeSoleVersionDelete, CodeTagAlreadyExists:
		return true
	}
	return false
}

// AsBusinessError 提取错误链中的业务错误
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// ResponseFromError 根据错误类型返回响应
// 业务错误按其错误码映射HTTP状态，其余一律视为内部错误
func ResponseFromError(c *gin.Context, err error) {
	if be, ok := AsBusinessError(err); ok {
		ResponseError(c, be.Code, be.Message)
		return
	}
	ResponseError(c, CodeInternalError, err.Error())
}

// ResponseBadRequest 返回参数错误响应
func ResponseBadRequest(c *gin.Context, message string) {
	ResponseError(c, CodeInvalidRequest, message)
}

// ResponseUnauthorized 返回未认证响应
func ResponseUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "未认证，请先登录"
	}
	ResponseError(c, CodeUnauthorized, message)
}

// ResponseNotFound 返回资源不存在响应
func ResponseNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "资源不存在"
	}
	ResponseError(c, CodeNotFound, message)
}

// ResponseServerError 返回服务器错误响应
func ResponseServerError(c *gin.Context, message string) {
	if message == "" {
		message = "服务器内部错误"
	}
	ResponseError(c, CodeInternalError, message)
}

// AbortWithError 中断并返回错误
func AbortWithError(c *gin.Context, code int, message string) {
	ResponseError(c, code, message)
	c.Abort()
}
