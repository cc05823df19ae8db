package ai

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter 估算文本 Token 数，仅用于指标
type TokenCounter interface {
	Count(text string) int
}

// RuneEstimator 按字符数粗略估算，不依赖网络
type RuneEstimator struct{}

// Count 约两个字符一个 Token
func (RuneEstimator) Count(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 1) / 2
}

// TiktokenCounter 使用 cl100k_base 编码计数；编码加载失败时退回 RuneEstimator
type TiktokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewTiktokenCounter 创建计数器，编码在首次使用时加载
func NewTiktokenCounter() *TiktokenCounter {
	return &TiktokenCounter{}
}

// Count 返回 Token 数
func (c *TiktokenCounter) Count(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			c.enc = enc
		}
	})
	if c.enc == nil {
		return RuneEstimator{}.Count(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}
