package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticSettings(model, key string) SettingsProvider {
	return SettingsFunc(func(context.Context) (Settings, error) {
		return Settings{ModelName: model, APIKey: key}, nil
	})
}

func newTestExecutor(t *testing.T, serverURL string, env map[string]string, opts ...Option) *Executor {
	t.Helper()
	values := map[string]string{"AI_BASE_URL": serverURL, "AI_STREAM": "0"}
	for k, v := range env {
		values[k] = v
	}
	base := []Option{WithEnv(mapEnv(values)), WithRetryDelays(0, 0, 0)}
	return NewExecutor(staticSettings("m1", "k1"), append(base, opts...)...)
}

// recordedRequest 保存服务端收到的请求
type recordedRequest struct {
	Header http.Header
	Body   chatRequest
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) record(t *testing.T, req *http.Request) {
	t.Helper()
	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var body chatRequest
	require.NoError(t, json.Unmarshal(raw, &body))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{Header: req.Header.Clone(), Body: body})
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.requests...)
}

func writeCompletion(w http.ResponseWriter, content, finish string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q},"finish_reason":%q}]}`, content, finish)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

// flakyDoer 前 failures 次模拟建连超时，之后转发给真实客户端
type flakyDoer struct {
	failures int32
	calls    atomic.Int32
	next     Doer
}

func (d *flakyDoer) Do(req *http.Request) (*http.Response, error) {
	n := d.calls.Add(1)
	if n <= d.failures {
		return nil, &url.Error{
			Op:  "Post",
			URL: req.URL.String(),
			Err: &net.OpError{Op: "dial", Net: "tcp", Err: timeoutErr{}},
		}
	}
	return d.next.Do(req)
}

func TestCompleteSuccess(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		rec.record(t, r)
		writeCompletion(w, "你好", "stop")
	}))
	defer srv.Close()

	out, err := newTestExecutor(t, srv.URL, nil).Complete(context.Background(), "提示词")
	require.NoError(t, err)
	assert.Equal(t, "你好", out)

	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "k1", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "application/json", reqs[0].Header.Get("Accept"))
	assert.Equal(t, "m1", reqs[0].Body.Model)
	assert.Equal(t, 8192, reqs[0].Body.MaxTokens)
	assert.False(t, reqs[0].Body.Stream)
	require.Len(t, reqs[0].Body.Messages, 1)
	assert.Equal(t, "user", reqs[0].Body.Messages[0].Role)
	assert.Equal(t, "提示词", reqs[0].Body.Messages[0].Content)
}

func TestCompleteRetriesConnectTimeout(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeCompletion(w, "第三次成功", "stop")
	}))
	defer srv.Close()

	doer := &flakyDoer{failures: 2, next: srv.Client()}
	out, err := newTestExecutor(t, srv.URL, nil, WithHTTPClient(doer)).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "第三次成功", out)
	assert.Equal(t, int32(3), doer.calls.Load())
	assert.Equal(t, int32(1), hits.Load())
}

func TestCompleteConnectTimeoutExhausted(t *testing.T) {
	doer := &flakyDoer{failures: 10, next: http.DefaultClient}
	exec := newTestExecutor(t, "http://10.255.255.1:81/", nil, WithHTTPClient(doer))

	_, err := exec.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, KindConnectTimeout, KindOf(err))
	assert.Equal(t, "AI 接口连接超时，请检查网络或 AI_BASE_URL（当前：http://10.255.255.1:81）", err.Error())
	assert.Equal(t, int32(3), doer.calls.Load())
}

func TestCompleteRetryDelays(t *testing.T) {
	doer := &flakyDoer{failures: 10, next: http.DefaultClient}
	exec := newTestExecutor(t, "http://example.invalid", nil,
		WithHTTPClient(doer), WithRetryDelays(0, 30*time.Millisecond, 60*time.Millisecond))

	start := time.Now()
	_, err := exec.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, int32(3), doer.calls.Load())
}

func TestCompleteRequestTimeoutFailsFast(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	exec := newTestExecutor(t, srv.URL, map[string]string{"AI_TIMEOUT_MS": "50"})
	_, err := exec.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, KindRequestTimeout, KindOf(err))
	assert.Equal(t, "调用 AI 接口超时（50ms）", err.Error())
	assert.Equal(t, int32(1), hits.Load())
}

func TestCompleteHeadersTimeout(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(TransportOptions{ConnectTimeout: time.Second, HeadersTimeout: 50 * time.Millisecond})
	exec := newTestExecutor(t, srv.URL, nil, WithHTTPClient(client))

	_, err := exec.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, KindHeadersTimeout, KindOf(err))
	assert.Equal(t,
		fmt.Sprintf("AI 接口响应超时（等待响应头超时），请检查网关是否拥堵/限流或更换模型（当前：%s，模型：m1）", srv.URL),
		err.Error())
	assert.Equal(t, int32(3), hits.Load())
}

func TestCompleteProviderErrorNotRetried(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"中文字段优先", http.StatusBadRequest, `{"error":{"message_zh":" 余额不足 ","message":"insufficient"}}`, "余额不足（当前模型：m1）"},
		{"通用字段", http.StatusUnauthorized, `{"error":{"message":"invalid key"}}`, "invalid key（当前模型：m1）"},
		{"顶层字段", http.StatusBadGateway, `{"message":"upstream down"}`, "upstream down（当前模型：m1）"},
		{"非 JSON", http.StatusServiceUnavailable, "gateway busy", "调用 AI 接口失败，状态码：503（当前模型：m1）"},
		{"HTML 错误页", http.StatusBadGateway, "<html>502 Bad Gateway</html>", "调用 AI 接口失败，状态码：502（当前模型：m1）"},
		{"JSON 无消息字段", http.StatusInternalServerError, `{"code":500}`, "调用 AI 接口失败，状态码：500（当前模型：m1）"},
		{"空响应体", http.StatusInternalServerError, "", "调用 AI 接口失败，状态码：500（当前模型：m1）"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := newTestExecutor(t, srv.URL, nil).Complete(context.Background(), "p")
			require.Error(t, err)
			var aiErr *Error
			require.True(t, errors.As(err, &aiErr))
			assert.Equal(t, KindProviderError, aiErr.Kind)
			assert.Equal(t, tc.status, aiErr.StatusCode)
			assert.Equal(t, tc.want, err.Error())
			assert.Equal(t, int32(1), hits.Load())
		})
	}
}

func TestCompleteContinuesOnLength(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(t, r)
		if len(rec.all()) == 1 {
			writeCompletion(w, "第一部分", "length")
			return
		}
		writeCompletion(w, "第二部分", "stop")
	}))
	defer srv.Close()

	out, err := newTestExecutor(t, srv.URL, nil).Complete(context.Background(), "原始提示")
	require.NoError(t, err)
	assert.Equal(t, "第一部分\n第二部分", out)

	reqs := rec.all()
	require.Len(t, reqs, 2)
	msgs := reqs[1].Body.Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, "原始提示", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "第一部分", msgs[1].Content)
	assert.Equal(t, continuationInstruction, msgs[2].Content)
}

func TestCompleteContinuationLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		writeCompletion(w, fmt.Sprintf("段%d", n), "length")
	}))
	defer srv.Close()

	out, err := newTestExecutor(t, srv.URL, nil).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "段1\n段2\n段3", out)
	assert.Equal(t, int32(3), hits.Load())
}

func TestCompleteContinuationFallsBackToRawBody(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			writeCompletion(w, "前半", "length")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":null},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	out, err := newTestExecutor(t, srv.URL, nil).Complete(context.Background(), "p")
	require.NoError(t, err)
	// 续写解析不到内容时使用原始响应体
	assert.Contains(t, out, "前半\n")
	assert.Equal(t, int32(2), hits.Load())
}

func TestCompleteNonJSONBodyReturnedRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "纯文本回复")
	}))
	defer srv.Close()

	out, err := newTestExecutor(t, srv.URL, nil).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "纯文本回复", out)
}

func TestCompleteStreaming(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(t, r)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"你\"}}]}\n\n")
		_, _ = io.WriteString(w, ": keep-alive\n")
		_, _ = io.WriteString(w, "data: not-json\n")
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"好\"},\"finish_reason\":\"length\"}]}\n\n")
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"忽略\"}}]}\n")
	}))
	defer srv.Close()

	out, err := newTestExecutor(t, srv.URL, map[string]string{"AI_STREAM": "1"}).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "你好", out)

	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].Body.Stream)
	assert.Equal(t, "text/event-stream, application/json", reqs[0].Header.Get("Accept"))
}

func TestCompleteStreamingFallbacks(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			"消息字段",
			"data: {\"choices\":[{\"message\":{\"content\":\"整段\"}}]}\n",
			"整段",
		},
		{
			"末尾无换行",
			"data: {\"choices\":[{\"delta\":{\"content\":\"尾巴\"}}]}",
			"尾巴",
		},
		{
			"JSON 响应体",
			`{"choices":[{"message":{"content":"普通响应"}}]}`,
			"普通响应",
		},
		{
			"原始文本",
			"data: {\"choices\":[{\"delta\":{}}]}\ndata: [DONE]\n",
			"data: {\"choices\":[{\"delta\":{}}]}\ndata: [DONE]\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			out, err := newTestExecutor(t, srv.URL, map[string]string{"AI_STREAM": "1"}).Complete(context.Background(), "p")
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestCompleteStreamingModeNeverContinues(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeCompletion(w, "截断内容", "length")
	}))
	defer srv.Close()

	out, err := newTestExecutor(t, srv.URL, map[string]string{"AI_STREAM": "1"}).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "截断内容", out)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCompleteConfigMissing(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	provider := SettingsFunc(func(context.Context) (Settings, error) {
		return Settings{}, ErrNoSettings
	})
	exec := NewExecutor(provider, WithEnv(mapEnv(map[string]string{"AI_BASE_URL": srv.URL})))
	_, err := exec.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, KindConfigMissing, KindOf(err))
	assert.Equal(t, "AI 配置未设置，请先在设置页中配置模型和 API Key", err.Error())
	assert.True(t, errors.Is(err, ErrNoSettings))
	assert.Equal(t, int32(0), hits.Load())
}

func TestCompleteSettingsError(t *testing.T) {
	boom := errors.New("db down")
	provider := SettingsFunc(func(context.Context) (Settings, error) {
		return Settings{}, boom
	})
	_, err := NewExecutor(provider).Complete(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, Kind(""), KindOf(err))
}

func TestCompleteCallerCancelled(t *testing.T) {
	doer := &flakyDoer{failures: 10, next: http.DefaultClient}
	exec := newTestExecutor(t, "http://example.invalid", nil,
		WithHTTPClient(doer), WithRetryDelays(0, time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := exec.Complete(ctx, "p")
	require.Error(t, err)
	assert.Less(t, doer.calls.Load(), int32(3))
}
