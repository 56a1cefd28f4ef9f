package common

// ============================================================================
// 通用请求类型
// ============================================================================

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `json:"page" form:"page" binding:"omitempty,min=1"`           // 页码，从1开始
	PageSize int `json:"page_size" form:"page_size" binding:"omitempty,min=1"` // 每页数量
}

// DefaultPagination 返回默认分页参数
func DefaultPagination() PaginationRequest {
	return PaginationRequest{
		Page:     1,
		PageSize: 10,
	}
}

// GetOffset 计算数据库查询的偏移量
func (p PaginationRequest) GetOffset() int {
	if p.Page < 1 {
		p.Page = 1
	}
	return (p.Page - 1) * p.GetPageSize()
}

// GetPageSize 获取每页数量，提供默认值
func (p PaginationRequest) GetPageSize() int {
	if p.PageSize < 1 {
		return 10
	}
	if p.PageSize > 50 {
		return 50
	}
	return p.PageSize
}

// IDRequest 通过ID查询的请求
type IDRequest struct {
	ID string `json:"id" uri:"id" binding:"required"` // 资源ID
}

// ============================================================================
// 通用响应类型
// ============================================================================

// APIResponse 统一API响应格式
type APIResponse struct {
	Success bool   `json:"success"`           // 是否成功
	Data    any    `json:"data,omitempty"`    // 响应数据
	Message string `json:"message,omitempty"` // 提示信息
	Code    int    `json:"code"`              // 业务状态码
}

// SuccessResponse 成功响应
func SuccessResponse(data any) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
		Code:    0,
	}
}

// SuccessMessageResponse 成功响应（带消息）
func SuccessMessageResponse(message string, data any) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
		Message: message,
		Code:    0,
	}
}

// ErrorResponse 错误响应
func ErrorResponse(code int, message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Code:    code,
	}
}

// PaginationMeta 分页元信息
type PaginationMeta struct {
	Page       int   `json:"page"`        // 当前页码
	PageSize   int   `json:"page_size"`   // 每页数量
	Total      int64 `json:"total"`       // 总记录数
	TotalPages int   `json:"total_pages"` // 总页数
}

// NewPaginationMeta 创建分页元信息
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	meta := PaginationMeta{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
	if pageSize > 0 {
		meta.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return meta
}

// ListResponse 列表响应（包含分页信息）
type ListResponse struct {
	Items      any            `json:"items"`      // 数据列表
	Pagination PaginationMeta `json:"pagination"` // 分页信息
}

// NewListResponse 创建列表响应
func NewListResponse(items any, page, pageSize int, total int64) ListResponse {
	return ListResponse{
		Items:      items,
		Pagination: NewPaginationMeta(page, pageSize, total),
	}
}

// ============================================================================
// 业务状态码定义
// ============================================================================

const (
	// 成功状态码
	CodeSuccess = 0

	// 通用错误码 (1000-1999)
	CodeInvalidRequest = 1000 // 请求参数错误
	CodeUnauthorized   = 1001 // 未授权
	CodeForbidden      = 1002 // 禁止访问
	CodeNotFound       = 1003 // 资源不存在
	CodeConflict       = 1004 // 资源冲突
	CodeInternalError  = 1005 // 内部错误

	// 用户相关错误码 (2000-2099)
	CodeUserNotFound       = 2000 // 用户不存在
	CodeUserDisabled       = 2001 // 用户已禁用
	CodeInvalidCredentials = 2002 // 凭证无效
	CodeUserAlreadyExists  = 2003 // 用户名或邮箱已存在

	// Prompt 相关错误码 (3000-3099)
	CodePromptNotFound = 3000 // Prompt 不存在

	// 版本相关错误码 (3100-3199)
	CodeVersionNotFound      = 3100 // 版本不存在
	CodeVersionConflict      = 3101 // 版本号冲突（并发写入）
	CodeInitialVersionExists = 3102 // 初始版本已存在
	CodeSoleVersionDelete    = 3103 // 不能删除唯一版本
	CodeVersionCrossPrompt   = 3104 // 版本不属于同一个 Prompt

	// 评估相关错误码 (3200-3299)
	CodeEvaluationNotFound = 3200 // 评估记录不存在
	CodeScoreOutOfRange    = 3201 // 分数超出范围

	// 标签相关错误码 (3300-3399)
	CodeTagNotFound      = 3300 // 标签不存在
	CodeTagAlreadyExists = 3301 // 标签名已存在
	CodeTagNotAttached   = 3302 // 标签未关联该 Prompt
)

// ErrorMessages 错误码对应的默认消息
var ErrorMessages = map[int]string{
	CodeSuccess:        "操作成功",
	CodeInvalidRequest: "请求参数错误",
	CodeUnauthorized:   "未授权，请先登录",
	CodeForbidden:      "无权限访问",
	CodeNotFound:       "资源不存在",
	CodeConflict:       "资源冲突",
	CodeInternalError:  "系统内部错误",

	CodeUserNotFound:       "用户不存在",
	CodeUserDisabled:       "用户已禁用",
	CodeInvalidCredentials: "用户名或密码错误",
	CodeUserAlreadyExists:  "用户名或邮箱已被注册",

	CodePromptNotFound: "Prompt 不存在",

	CodeVersionNotFound:      "版本不存在",
	CodeVersionConflict:      "版本号冲突，请重试",
	CodeInitialVersionExists: "初始版本已存在",
	CodeSoleVersionDelete:    "不能删除唯一版本，请直接删除 Prompt",
	CodeVersionCrossPrompt:   "两个版本必须属于同一个 Prompt",

	CodeEvaluationNotFound: "该版本尚无评估记录",
	CodeScoreOutOfRange:    "分数超出有效范围",

	CodeTagNotFound:      "标签不存在",
	CodeTagAlreadyExists: "标签名已存在",
	CodeTagNotAttached:   "标签未关联该 Prompt",
}

// GetErrorMessage 获取错误码对应的消息
func GetErrorMessage(code int) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return "未知错误"
}

// ============================================================================
// 通用业务错误类型
// ============================================================================

// BusinessError 业务错误
type BusinessError struct {
	Code    int    // 错误码
	Message string // 错误信息
}

// Error 实现error接口
func (e *BusinessError) Error() string {
	return e.Message
}

// NewBusinessError 创建业务错误
func NewBusinessError(code int, message string) *BusinessError {
	if message == "" {
		message = GetErrorMessage(code)
	}
	return &BusinessError{
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError 创建"资源不存在"类错误
func NewNotFoundError(code int) *BusinessError {
	return NewBusinessError(code, "")
}

// NewConflictError 创建"资源冲突"类错误
func NewConflictError(code int) *BusinessError {
	return NewBusinessError(code, "")
}

// NewValidationError 创建参数校验错误
func NewValidationError(message string) *BusinessError {
	return NewBusinessError(CodeInvalidRequest, message)
}

// IsNotFound 判断错误是否属于"资源不存在"类
func IsNotFound(err error) bool {
	be, ok := AsBusinessError(err)
	if !ok {
		return false
	}
	switch be.Code {
	case CodeNotFound, CodeUserNotFound, CodePromptNotFound,
		CodeVersionNotFound, CodeEvaluationNotFound, CodeTagNotFound,
		CodeTagNotAttached:
		return true
	}
	return false
}

// IsConflict 判断错误是否属于"资源冲突"类
func IsConflict(err error) bool {
	be, ok := AsBusinessError(err)
	if !ok {
		return false
	}
	switch be.Code {
	case CodeConflict, CodeUserAlreadyExists, CodeVersionConflict,
		CodeInitialVersionExists, CodeSoleVersionDelete, CodeTagAlreadyExists:
		return true
	}
	return false
}
