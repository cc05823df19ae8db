package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// Doer 发送 HTTP 请求，*http.Client 即满足
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportOptions 连接层超时
type TransportOptions struct {
	ConnectTimeout time.Duration // TCP/TLS 建连超时
	HeadersTimeout time.Duration // 等待响应头超时
}

// DefaultTransportOptions 默认值与常见 HTTP 客户端保持一致：建连 10s，响应头 300s
func DefaultTransportOptions() TransportOptions {
	return TransportOptions{
		ConnectTimeout: 10 * time.Second,
		HeadersTimeout: 300 * time.Second,
	}
}

// NewHTTPClient 创建带连接层超时的 HTTP 客户端。
// 整体超时由每次尝试的 context 控制，这里不设置 Client.Timeout。
func NewHTTPClient(opts TransportOptions) *http.Client {
	defaults := DefaultTransportOptions()
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaults.ConnectTimeout
	}
	if opts.HeadersTimeout <= 0 {
		opts.HeadersTimeout = defaults.HeadersTimeout
	}

	dialer := &net.Dialer{
		Timeout:   opts.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.HeadersTimeout,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{Transport: transport}
}

// classify 在网络边界把底层错误归类为 *Error。
// parent 是调用方 context，attempt 是本次尝试带超时的 context。
func classify(parent, attempt context.Context, cfg CallConfig, err error) error {
	if err == nil {
		return nil
	}
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return err
	}
	if parentErr := parent.Err(); parentErr != nil {
		return fmt.Errorf("ai: call cancelled: %w", parentErr)
	}
	if errors.Is(attempt.Err(), context.DeadlineExceeded) {
		return newRequestTimeout(cfg, err)
	}
	if isConnectTimeout(err) {
		return &Error{Kind: KindConnectTimeout, Message: "AI 接口连接超时", Err: err}
	}
	if isHeadersTimeout(err) {
		return &Error{Kind: KindHeadersTimeout, Message: "AI 接口响应超时（等待响应头超时）", Err: err}
	}
	return &Error{
		Kind:    KindTransport,
		Message: fmt.Sprintf("调用 AI 接口失败：%v", err),
		Err:     err,
	}
}

func isConnectTimeout(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" && opErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "TLS handshake timeout")
}

func isHeadersTimeout(err error) bool {
	return strings.Contains(err.Error(), "timeout awaiting response headers")
}
