// Package types HTTP 响应结构
package types

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// 错误码
const (
	ErrNotConnected    = "NOT_CONNECTED"
	ErrJoinInProgress  = "JOIN_IN_PROGRESS"
	ErrAlreadyJoined   = "ALREADY_JOINED"
	ErrWrongNetwork    = "WRONG_NETWORK"
	ErrNoSigner        = "NO_SIGNER"
	ErrExecutionFailed = "EXECUTION_FAILED"
	ErrUpstream        = "UPSTREAM_ERROR"
	ErrInternal        = "INTERNAL"
)

// NewErrorResponse 创建错误响应
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// WithRequestID 添加请求ID
func (e *ErrorResponse) WithRequestID(requestID string) *ErrorResponse {
	e.Error.RequestID = requestID
	return e
}
