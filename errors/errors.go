// Package errors 定义 textoverlay 的结构化错误。
//
// 每个错误携带一个机器可读的 Code 与面向用户的 Message，
// CLI 与 HTTP 服务据此决定退出码 / 状态码：
//
//	err := errors.New(errors.ErrCodeValidation, "text 不能为空")
//	if errors.Is(err, errors.ErrCodeValidation) {
//	    // 调用方可修正的输入错误
//	}
//
//	err = errors.Wrap(errors.ErrCodeImageLoad, cause, "加载图片 %s 失败", url)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

const (
	// ErrCodeValidation 缺少或非法的输入（空文本、零尺寸图片、非法样式）。
	ErrCodeValidation Code = "VALIDATION"
	// ErrCodeImageLoad 源图片下载或解码失败，调用方可重试。
	ErrCodeImageLoad Code = "IMAGE_LOAD"
	// ErrCodeFontMeasurement 字体栈测量结果为 0，说明字体环境不可用。
	ErrCodeFontMeasurement Code = "FONT_MEASUREMENT"

	ErrCodeUnauthorized Code = "UNAUTHORIZED"
	ErrCodeUnsupported  Code = "UNSUPPORTED"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// HTTPStatus 将错误码映射到 HTTP 状态码。
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeImageLoad:
		return http.StatusBadGateway
	case ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
