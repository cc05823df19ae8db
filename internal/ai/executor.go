package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agentdesk/internal/metrics"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxContinuations 非流式响应因长度截断时最多续写次数
const maxContinuations = 2

// DefaultRetryDelays 三次尝试前的等待时间
var DefaultRetryDelays = []time.Duration{0, 400 * time.Millisecond, 1200 * time.Millisecond}

// SettingsProvider 读取当前生效的模型配置；没有配置时返回 ErrNoSettings
type SettingsProvider interface {
	Current(ctx context.Context) (Settings, error)
}

// SettingsFunc 函数适配器
type SettingsFunc func(ctx context.Context) (Settings, error)

// Current 实现 SettingsProvider
func (f SettingsFunc) Current(ctx context.Context) (Settings, error) {
	return f(ctx)
}

// Completer 发送提示词并返回生成文本
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Option 执行器选项
type Option func(*Executor)

// WithHTTPClient 替换 HTTP 客户端
func WithHTTPClient(client Doer) Option {
	return func(e *Executor) {
		if client != nil {
			e.client = client
		}
	}
}

// WithEnv 替换环境变量读取函数
func WithEnv(env EnvLookup) Option {
	return func(e *Executor) {
		if env != nil {
			e.env = env
		}
	}
}

// WithRetryDelays 设置每次尝试前的等待时间，长度即最大尝试次数
func WithRetryDelays(delays ...time.Duration) Option {
	return func(e *Executor) {
		if len(delays) > 0 {
			e.delays = append([]time.Duration(nil), delays...)
		}
	}
}

// WithTokenCounter 设置 Token 估算器
func WithTokenCounter(counter TokenCounter) Option {
	return func(e *Executor) {
		if counter != nil {
			e.tokens = counter
		}
	}
}

// Executor AI 调用执行器：解析配置、发送请求、重试与续写
type Executor struct {
	settings SettingsProvider
	client   Doer
	env      EnvLookup
	delays   []time.Duration
	tokens   TokenCounter
	tracer   trace.Tracer
}

// NewExecutor 创建执行器
func NewExecutor(settings SettingsProvider, opts ...Option) *Executor {
	e := &Executor{
		settings: settings,
		client:   NewHTTPClient(DefaultTransportOptions()),
		delays:   DefaultRetryDelays,
		tokens:   RuneEstimator{},
		tracer:   otel.Tracer("agentdesk/internal/ai"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Complete 调用模型生成文本。
// 只有连接层超时会重试；整体超时与接口错误立即返回。
func (e *Executor) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "Executor.Complete")
	defer span.End()

	settings, err := e.settings.Current(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSettings) {
			err = newConfigMissing(err)
		} else {
			err = fmt.Errorf("ai: load settings: %w", err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "settings unavailable")
		metrics.ObserveAICall("none", statusOf(err), time.Since(start), 0)
		return "", err
	}

	cfg := ResolveConfig(e.env, settings)
	span.SetAttributes(
		attribute.String("ai.model", cfg.Model),
		attribute.String("ai.base_url", cfg.BaseURL),
		attribute.Bool("ai.stream", cfg.Stream),
		attribute.Int("ai.max_tokens", cfg.MaxTokens),
	)

	impl := e.completerFor(cfg)
	attempts := 0
	policy := retrypolicy.NewBuilder[string]().
		HandleIf(func(_ string, err error) bool {
			return isRetryable(err)
		}).
		WithMaxRetries(len(e.delays) - 1).
		WithDelayFunc(func(failsafe.ExecutionAttempt[string]) time.Duration {
			return e.delayBefore(attempts)
		}).
		ReturnLastFailure().
		Build()

	text, err := failsafe.With[string](policy).WithContext(ctx).Get(func() (string, error) {
		attempts++
		return e.attempt(ctx, cfg, impl, prompt, attempts)
	})
	if err != nil {
		err = finalize(cfg, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.SetAttributes(attribute.Int("ai.attempts", attempts))
	metrics.ObserveAICall(cfg.Mode(), statusOf(err), time.Since(start), attempts)
	if err == nil {
		metrics.AddAITokens(e.tokens.Count(prompt), e.tokens.Count(text))
	}
	return text, err
}

// delayBefore 返回第 n 次尝试（从 0 计）之前的等待时间
func (e *Executor) delayBefore(n int) time.Duration {
	if n < 0 || n >= len(e.delays) {
		return 0
	}
	return e.delays[n]
}

func (e *Executor) completerFor(cfg CallConfig) completer {
	d := dispatcher{client: e.client}
	if cfg.Stream {
		return streamCompleter{dispatcher: d}
	}
	return plainCompleter{dispatcher: d}
}

// attempt 单次尝试，续写共用同一个超时
func (e *Executor) attempt(ctx context.Context, cfg CallConfig, impl completer, prompt string, n int) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	attemptCtx, span := e.tracer.Start(attemptCtx, "Executor.Attempt")
	defer span.End()
	span.SetAttributes(attribute.Int("ai.attempt", n))

	text, calls, err := run(attemptCtx, cfg, impl, prompt)
	span.SetAttributes(attribute.Int("ai.calls", calls))
	if err != nil {
		err = classify(ctx, attemptCtx, cfg, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(KindOf(err)))
		return "", err
	}
	return text, nil
}

// run 首次调用后，若因长度截断则顺序续写，最多 maxContinuations 次
func run(ctx context.Context, cfg CallConfig, impl completer, prompt string) (string, int, error) {
	first, err := impl.complete(ctx, cfg, buildMessages(prompt, ""))
	if err != nil {
		return "", 1, err
	}
	calls := 1
	full := first.Content
	finish := first.FinishReason
	for i := 0; i < maxContinuations; i++ {
		if finish != string(openai.FinishReasonLength) || strings.TrimSpace(full) == "" {
			break
		}
		next, err := impl.complete(ctx, cfg, buildMessages(prompt, full))
		calls++
		if err != nil {
			return "", calls, err
		}
		if next.Content == "" {
			break
		}
		full = full + "\n" + next.Content
		finish = next.FinishReason
	}
	return full, calls, nil
}

func statusOf(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
