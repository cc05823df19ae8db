package ai

import (
	"errors"
	"fmt"
)

// Kind AI 调用错误类型
type Kind string

const (
	KindConfigMissing  Kind = "config_missing"  // 未配置模型与 API Key
	KindRequestTimeout Kind = "request_timeout" // 整体调用超过配置的超时时间
	KindConnectTimeout Kind = "connect_timeout" // 建立连接超时
	KindHeadersTimeout Kind = "headers_timeout" // 已连接但等待响应头超时
	KindProviderError  Kind = "provider_error"  // 接口返回非 2xx
	KindTransport      Kind = "transport"       // 其他网络错误
)

// ErrNoSettings 设置表中没有任何 AI 配置
var ErrNoSettings = errors.New("ai: settings not configured")

const msgConfigMissing = "AI 配置未设置，请先在设置页中配置模型和 API Key"

// Error AI 调用错误，Error() 即面向用户的提示文案
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return e.Message
}

// Unwrap 返回原始错误
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable 只有连接层超时可以重试
func (e *Error) IsRetryable() bool {
	return e.Kind == KindConnectTimeout || e.Kind == KindHeadersTimeout
}

// KindOf 返回错误类型，非 *Error 返回空串
func KindOf(err error) Kind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return ""
}

func isRetryable(err error) bool {
	var aiErr *Error
	return errors.As(err, &aiErr) && aiErr.IsRetryable()
}

func newConfigMissing(err error) *Error {
	return &Error{Kind: KindConfigMissing, Message: msgConfigMissing, Err: err}
}

func newRequestTimeout(cfg CallConfig, err error) *Error {
	return &Error{
		Kind:    KindRequestTimeout,
		Message: fmt.Sprintf("调用 AI 接口超时（%sms）", FormatMs(cfg.TimeoutMs)),
		Err:     err,
	}
}

// finalize 为最后一次仍失败的连接层错误补全提示文案
func finalize(cfg CallConfig, err error) error {
	var aiErr *Error
	if !errors.As(err, &aiErr) {
		return err
	}
	switch aiErr.Kind {
	case KindConnectTimeout:
		return &Error{
			Kind:    aiErr.Kind,
			Message: fmt.Sprintf("AI 接口连接超时，请检查网络或 AI_BASE_URL（当前：%s）", cfg.BaseURL),
			Err:     aiErr.Err,
		}
	case KindHeadersTimeout:
		return &Error{
			Kind: aiErr.Kind,
			Message: fmt.Sprintf("AI 接口响应超时（等待响应头超时），请检查网关是否拥堵/限流或更换模型（当前：%s，模型：%s）",
				cfg.BaseURL, cfg.Model),
			Err: aiErr.Err,
		}
	}
	return err
}
