package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// completion 单次 HTTP 调用的结果
type completion struct {
	Content      string
	FinishReason string
}

// completer 发送一组消息并返回文本。流式与非流式各有一个实现，由配置选择。
type completer interface {
	complete(ctx context.Context, cfg CallConfig, messages []openai.ChatCompletionMessage) (completion, error)
}

// chatRequest 请求体。stream 字段需始终输出，因此不直接使用 openai.ChatCompletionRequest。
type chatRequest struct {
	Model     string                         `json:"model"`
	Messages  []openai.ChatCompletionMessage `json:"messages"`
	MaxTokens int                            `json:"max_tokens"`
	Stream    bool                           `json:"stream"`
}

func buildMessages(prompt, previousAssistant string) []openai.ChatCompletionMessage {
	if strings.TrimSpace(previousAssistant) == "" {
		return []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		}
	}
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
		{Role: openai.ChatMessageRoleAssistant, Content: previousAssistant},
		{Role: openai.ChatMessageRoleUser, Content: continuationInstruction},
	}
}

// dispatcher 负责发送请求与处理非 2xx 响应，两种 completer 共用
type dispatcher struct {
	client Doer
}

func (d dispatcher) dispatch(ctx context.Context, cfg CallConfig, messages []openai.ChatCompletionMessage) (*http.Response, error) {
	payload, err := json.Marshal(chatRequest{
		Model:     cfg.Model,
		Messages:  messages,
		MaxTokens: cfg.MaxTokens,
		Stream:    cfg.Stream,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ai: build request: %w", err)
	}
	if cfg.Stream {
		req.Header.Set("Accept", "text/event-stream, application/json")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", cfg.APIKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return nil, providerError(cfg, resp.StatusCode, string(body))
}

// providerError 依次尝试 error.message_zh、error.message、message_zh、message
func providerError(cfg CallConfig, status int, body string) *Error {
	if msg := extractProviderMessage(body); msg != "" {
		return &Error{
			Kind:       KindProviderError,
			StatusCode: status,
			Message:    fmt.Sprintf("%s（当前模型：%s）", msg, cfg.Model),
		}
	}
	e := &Error{
		Kind:       KindProviderError,
		StatusCode: status,
		Message:    fmt.Sprintf("调用 AI 接口失败，状态码：%d（当前模型：%s）", status, cfg.Model),
	}
	if body = strings.TrimSpace(body); body != "" {
		e.Err = fmt.Errorf("响应体: %s", truncateRunes(body, maxBodyInError))
	}
	return e
}

// maxBodyInError 原始响应体截断后保留在 Err 中
const maxBodyInError = 500

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func extractProviderMessage(body string) string {
	var data map[string]any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return ""
	}
	nested, _ := data["error"].(map[string]any)
	candidates := []any{nested["message_zh"], nested["message"], data["message_zh"], data["message"]}
	for _, c := range candidates {
		if !truthy(c) {
			continue
		}
		if s, ok := c.(string); ok {
			return strings.TrimSpace(s)
		}
		return ""
	}
	return ""
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}

// plainCompleter 非流式：解析完整 JSON，保留 finish_reason 以便续写
type plainCompleter struct {
	dispatcher
}

func (c plainCompleter) complete(ctx context.Context, cfg CallConfig, messages []openai.ChatCompletionMessage) (completion, error) {
	resp, err := c.dispatch(ctx, cfg, messages)
	if err != nil {
		return completion{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return completion{}, err
	}
	return parseOrRaw(string(body)), nil
}

// streamCompleter 流式：解析 SSE 增量；流式模式下不返回 finish_reason，因此不会触发续写
type streamCompleter struct {
	dispatcher
}

func (c streamCompleter) complete(ctx context.Context, cfg CallConfig, messages []openai.ChatCompletionMessage) (completion, error) {
	resp, err := c.dispatch(ctx, cfg, messages)
	if err != nil {
		return completion{}, err
	}
	defer resp.Body.Close()

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return completion{}, err
		}
		return completion{Content: parseOrRaw(string(body)).Content}, nil
	}

	var buffered bytes.Buffer
	tee := io.TeeReader(resp.Body, &buffered)
	streamed, err := readEventStream(tee)
	if err != nil {
		return completion{}, err
	}
	if streamed != "" {
		return completion{Content: streamed}, nil
	}

	// 读到 [DONE] 提前返回时，把剩余内容也读进缓冲区
	if _, err := io.Copy(io.Discard, tee); err != nil {
		return completion{}, err
	}
	text := buffered.String()
	if extracted := extractEventStream(text); extracted != "" {
		return completion{Content: extracted}, nil
	}
	if parsed := parseChatCompletion(text); parsed.Content != "" {
		return completion{Content: parsed.Content}, nil
	}
	return completion{Content: text}, nil
}

// readEventStream 逐行读取 data: 帧，遇到 [DONE] 结束；末尾不完整的行不处理
func readEventStream(r io.Reader) (string, error) {
	reader := bufio.NewReader(r)
	var out strings.Builder
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return out.String(), nil
			}
			return "", err
		}
		data, ok := dataFrame(line)
		if !ok {
			continue
		}
		if data == "[DONE]" {
			return out.String(), nil
		}
		out.WriteString(frameDelta(data))
	}
}

// extractEventStream 对已缓冲的完整文本重新提取
func extractEventStream(text string) string {
	var out strings.Builder
	for _, line := range strings.Split(text, "\n") {
		data, ok := dataFrame(strings.TrimSuffix(line, "\r"))
		if !ok {
			continue
		}
		if data == "[DONE]" {
			break
		}
		out.WriteString(frameDelta(data))
	}
	return out.String()
}

func dataFrame(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "data:") {
		return "", false
	}
	data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if data == "" {
		return "", false
	}
	return data, true
}

func frameDelta(data string) string {
	var chunk struct {
		Choices []struct {
			Delta   contentHolder `json:"delta"`
			Message contentHolder `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal([]byte(data), &chunk); err != nil || len(chunk.Choices) == 0 {
		return ""
	}
	choice := chunk.Choices[0]
	return coalesce(choice.Delta.Content, choice.Message.Content)
}

// textField 区分 null/缺失 与其他取值；非字符串取值视为空串但不再回退
type textField struct {
	value string
	set   bool
}

func (t *textField) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	t.set = true
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		t.value = s
	}
	return nil
}

type contentHolder struct {
	Content textField `json:"content"`
}

func coalesce(fields ...textField) string {
	for _, f := range fields {
		if f.set {
			return f.value
		}
	}
	return ""
}

type chatResponse struct {
	Choices []struct {
		Message      contentHolder `json:"message"`
		Delta        contentHolder `json:"delta"`
		FinishReason textField     `json:"finish_reason"`
	} `json:"choices"`
	Message contentHolder `json:"message"`
}

// parseChatCompletion 依次取 choices[0].message.content、choices[0].delta.content、message.content
func parseChatCompletion(body string) completion {
	var data chatResponse
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return completion{}
	}
	if len(data.Choices) == 0 {
		return completion{Content: coalesce(data.Message.Content)}
	}
	choice := data.Choices[0]
	return completion{
		Content:      coalesce(choice.Message.Content, choice.Delta.Content, data.Message.Content),
		FinishReason: choice.FinishReason.value,
	}
}

// parseOrRaw 解析失败或内容为空时返回原始响应体
func parseOrRaw(body string) completion {
	parsed := parseChatCompletion(body)
	if parsed.Content != "" {
		return parsed
	}
	return completion{Content: body}
}
