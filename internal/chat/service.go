package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agentdesk/internal/agent"
	"agentdesk/internal/ai"
	"agentdesk/internal/metrics"
	"agentdesk/internal/oplog"
	"agentdesk/internal/prompt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	titleRunes        = 30
	systemNoticeLabel = "【系统提示】"
	fallbackAIError   = "调用 AI 接口失败，请稍后重试"
)

var (
	ErrNotFound           = errors.New("Not found")
	ErrForbidden          = errors.New("Forbidden")
	ErrAgentIDRequired    = errors.New("agentId is required")
	ErrContentRequired    = errors.New("content is required")
	ErrNoContent          = errors.New("No content")
	ErrNoUserMessage      = errors.New("没有可用于重新生成的用户消息")
	ErrAgentNotGenerative = errors.New("该智能体不支持重新生成")
)

// PromptBuilder 组装提示词，*prompt.Assembler 实现该接口
type PromptBuilder interface {
	Build(ctx context.Context, slug, content string) (string, error)
}

// RegenerateEnqueuer 把重新生成任务投递到队列
type RegenerateEnqueuer interface {
	EnqueueRegenerate(ctx context.Context, messageID, userID int64) error
}

// Service 会话与消息
type Service struct {
	db        *gorm.DB
	prompts   PromptBuilder
	completer ai.Completer
	queue     RegenerateEnqueuer
	oplog     oplog.Writer
	logger    *zap.Logger
}

// NewService 创建会话服务
func NewService(db *gorm.DB, prompts PromptBuilder, completer ai.Completer, writer oplog.Writer, logger *zap.Logger) *Service {
	if writer == nil {
		writer = oplog.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, prompts: prompts, completer: completer, oplog: writer, logger: logger}
}

// WithQueue 设置重新生成队列，为 nil 时重新生成在请求内同步执行
func (s *Service) WithQueue(q RegenerateEnqueuer) *Service {
	s.queue = q
	return s
}

// ListConversations 返回用户未删除的会话，最近更新的在前
func (s *Service) ListConversations(ctx context.Context, userID int64) ([]Conversation, error) {
	var rows []Conversation
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("updated_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateConversation 新建会话
func (s *Service) CreateConversation(ctx context.Context, userID, agentID int64) (*Conversation, error) {
	if agentID <= 0 {
		return nil, ErrAgentIDRequired
	}
	conv := &Conversation{UserID: userID, AgentID: agentID, Title: DefaultTitle}
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		return nil, err
	}
	s.oplog.Log(ctx, oplog.Entry{
		UserID:     oplog.Int64(userID),
		Action:     "create_conversation",
		TargetType: "conversation",
		TargetID:   oplog.Int64(conv.ID),
	})
	return conv, nil
}

// ConversationPatch 会话可修改字段，nil 表示不修改
type ConversationPatch struct {
	Title *string
	Draft *string
}

// UpdateConversation 修改标题或草稿
func (s *Service) UpdateConversation(ctx context.Context, userID, id int64, patch ConversationPatch) (*Conversation, error) {
	conv, err := s.ownedConversation(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if err := s.db.WithContext(ctx).Model(conv).Update("title", *patch.Title).Error; err != nil {
			return nil, err
		}
		s.oplog.Log(ctx, oplog.Entry{
			UserID:     oplog.Int64(userID),
			Action:     "rename_conversation",
			TargetType: "conversation",
			TargetID:   oplog.Int64(id),
			Metadata:   map[string]any{"title": *patch.Title},
		})
	}
	if patch.Draft != nil {
		if err := s.db.WithContext(ctx).Model(conv).Update("draft", *patch.Draft).Error; err != nil {
			return nil, err
		}
	}
	return s.ownedConversation(ctx, userID, id)
}

// DeleteConversation 软删除会话
func (s *Service) DeleteConversation(ctx context.Context, userID, id int64) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&Conversation{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		Updates(map[string]any{"is_deleted": true, "deleted_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.oplog.Log(ctx, oplog.Entry{
		UserID:     oplog.Int64(userID),
		Action:     "delete_conversation",
		TargetType: "conversation",
		TargetID:   oplog.Int64(id),
	})
	return nil
}

// Export 导出为纯文本，返回文件名与内容
func (s *Service) Export(ctx context.Context, userID, id int64) (string, string, error) {
	conv, err := s.ownedConversation(ctx, userID, id)
	if err != nil {
		return "", "", err
	}
	messages, err := s.messagesOf(ctx, id)
	if err != nil {
		return "", "", err
	}
	if len(messages) == 0 {
		return "", "", ErrNoContent
	}

	lines := []string{"# 对话：" + conv.Title, ""}
	for _, m := range messages {
		label := "AI"
		if m.Role == RoleUser {
			label = "用户"
		}
		lines = append(lines, "【"+label+"】", m.Content, "")
	}

	s.oplog.Log(ctx, oplog.Entry{
		UserID:     oplog.Int64(userID),
		Action:     "export_conversation",
		TargetType: "conversation",
		TargetID:   oplog.Int64(id),
	})
	return fmt.Sprintf("conversation-%d.txt", id), strings.Join(lines, "\n"), nil
}

// Clear 删除会话内全部消息
func (s *Service) Clear(ctx context.Context, userID, id int64) error {
	if _, err := s.ownedConversation(ctx, userID, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("conversation_id = ?", id).Delete(&Message{}).Error; err != nil {
		return err
	}
	s.oplog.Log(ctx, oplog.Entry{
		UserID:     oplog.Int64(userID),
		Action:     "clear_conversation",
		TargetType: "conversation",
		TargetID:   oplog.Int64(id),
	})
	return nil
}

// ListMessages 按创建顺序返回会话消息
func (s *Service) ListMessages(ctx context.Context, userID, conversationID int64) ([]Message, error) {
	if _, err := s.ownedConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.messagesOf(ctx, conversationID)
}

// Send 写入用户消息；会话绑定内置 AI 智能体时继续组装提示词并调用模型。
// 模型调用失败不会返回错误，失败原因以【系统提示】写入助手消息。
func (s *Service) Send(ctx context.Context, userID, conversationID int64, content string) (*SendResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentRequired
	}
	conv, err := s.ownedConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	slug, err := s.agentSlug(ctx, conv.AgentID)
	if err != nil {
		return nil, err
	}

	msg := &Message{ConversationID: conv.ID, Role: RoleUser, Content: content}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	metrics.MessagesTotal.WithLabelValues(RoleUser, slug).Inc()

	updates := map[string]any{"updated_at": time.Now()}
	if conv.Title == DefaultTitle {
		updates["title"] = truncateRunes(content, titleRunes)
	}
	if err := s.db.WithContext(ctx).Model(conv).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.oplog.Log(ctx, oplog.Entry{
		UserID:     oplog.Int64(userID),
		Action:     "send_message",
		TargetType: "message",
		TargetID:   oplog.Int64(msg.ID),
		Metadata:   map[string]any{"conversationId": conv.ID},
	})

	result := &SendResult{Message: msg}
	if !prompt.IsAIAgent(slug) {
		return result, nil
	}

	assembled, err := s.prompts.Build(ctx, slug, content)
	if err != nil {
		return nil, err
	}
	text, failed := s.generate(ctx, assembled, slug, conv.ID)

	reply := &Message{ConversationID: conv.ID, Role: RoleAssistant, Content: text}
	if err := s.db.WithContext(ctx).Create(reply).Error; err != nil {
		return nil, err
	}
	metrics.MessagesTotal.WithLabelValues(RoleAssistant, slug).Inc()
	s.logReply(ctx, userID, reply.ID, conv.ID, slug, assembled, failed)

	result.AIReply = reply
	result.AIPrompt = &assembled
	return result, nil
}

// EditMessage 修改自己发送的用户消息
func (s *Service) EditMessage(ctx context.Context, userID, messageID int64, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentRequired
	}
	msg, err := s.ownedMessage(ctx, userID, messageID, RoleUser)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(msg).Update("content", content).Error; err != nil {
		return nil, err
	}
	msg.Content = content
	s.oplog.Log(ctx, oplog.Entry{
		UserID:     oplog.Int64(userID),
		Action:     "edit_message",
		TargetType: "message",
		TargetID:   oplog.Int64(messageID),
	})
	return msg, nil
}

// RequestRegenerate 校验权限后投递重新生成任务。
// 配置了队列时返回 queued=true；否则在当前请求内完成并返回更新后的消息。
func (s *Service) RequestRegenerate(ctx context.Context, userID, messageID int64) (bool, *Message, error) {
	if _, err := s.ownedMessage(ctx, userID, messageID, RoleAssistant); err != nil {
		return false, nil, err
	}
	s.oplog.Log(ctx, oplog.Entry{
		UserID:     oplog.Int64(userID),
		Action:     "regenerate_message",
		TargetType: "message",
		TargetID:   oplog.Int64(messageID),
	})

	if s.queue != nil {
		if err := s.queue.EnqueueRegenerate(ctx, messageID, userID); err != nil {
			metrics.RegenerateTasksTotal.WithLabelValues("queued", "error").Inc()
			return false, nil, fmt.Errorf("投递重新生成任务失败: %w", err)
		}
		metrics.RegenerateTasksTotal.WithLabelValues("queued", "ok").Inc()
		return true, nil, nil
	}

	msg, err := s.Regenerate(ctx, userID, messageID)
	metrics.RegenerateTasksTotal.WithLabelValues("inline", statusLabel(err)).Inc()
	return false, msg, err
}

// Regenerate 以最近一条之前的用户消息重新组装提示词并覆盖助手消息。
// 供同步请求与队列 worker 共用。
func (s *Service) Regenerate(ctx context.Context, userID, messageID int64) (*Message, error) {
	var msg Message
	err := s.db.WithContext(ctx).Where("id = ? AND role = ?", messageID, RoleAssistant).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var conv Conversation
	if err := s.db.WithContext(ctx).Where("id = ?", msg.ConversationID).First(&conv).Error; err != nil {
		return nil, err
	}
	slug, err := s.agentSlug(ctx, conv.AgentID)
	if err != nil {
		return nil, err
	}
	if !prompt.IsAIAgent(slug) {
		return nil, ErrAgentNotGenerative
	}

	var source Message
	err = s.db.WithContext(ctx).
		Where("conversation_id = ? AND role = ? AND id < ?", msg.ConversationID, RoleUser, msg.ID).
		Order("id DESC").
		First(&source).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoUserMessage
	}
	if err != nil {
		return nil, err
	}

	assembled, err := s.prompts.Build(ctx, slug, source.Content)
	if err != nil {
		return nil, err
	}
	text, failed := s.generate(ctx, assembled, slug, conv.ID)
	if err := s.db.WithContext(ctx).Model(&msg).Update("content", text).Error; err != nil {
		return nil, err
	}
	msg.Content = text
	s.logReply(ctx, userID, msg.ID, conv.ID, slug, assembled, failed)
	return &msg, nil
}

// generate 调用模型，失败时返回【系统提示】文本与 failed=true
func (s *Service) generate(ctx context.Context, assembled, slug string, conversationID int64) (string, bool) {
	text, err := s.completer.Complete(ctx, assembled)
	if err == nil {
		return text, false
	}

	s.logger.Warn("AI 调用失败",
		zap.Int64("conversation_id", conversationID),
		zap.String("agent", slug),
		zap.String("kind", string(ai.KindOf(err))),
		zap.Error(err),
	)
	return systemNoticeLabel + failureNotice(err), true
}

// failureNotice 组装失败提示：文案之后追加错误类型与详细原因
func failureNotice(err error) string {
	message := err.Error()
	if message == "" {
		message = fallbackAIError
	}
	var extra []string
	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		if aiErr.Kind != "" {
			extra = append(extra, "错误类型: "+string(aiErr.Kind))
		}
		if aiErr.Err != nil && aiErr.Err.Error() != "" {
			extra = append(extra, "详细原因: "+aiErr.Err.Error())
		}
	}
	if len(extra) > 0 {
		message += "\n" + strings.Join(extra, "\n")
	}
	return message
}

func (s *Service) logReply(ctx context.Context, userID, messageID, conversationID int64, slug, assembled string, failed bool) {
	action := "ai_reply"
	if failed {
		action = "ai_error"
	}
	s.oplog.Log(ctx, oplog.Entry{
		UserID:     oplog.Int64(userID),
		Action:     action,
		TargetType: "message",
		TargetID:   oplog.Int64(messageID),
		Metadata: map[string]any{
			"conversationId": conversationID,
			"agentSlug":      slug,
			"prompt":         assembled,
		},
	})
}

func (s *Service) ownedConversation(ctx context.Context, userID, id int64) (*Conversation, error) {
	var conv Conversation
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ownedMessage 消息不存在、不属于该用户或角色不符时统一返回 ErrForbidden
func (s *Service) ownedMessage(ctx context.Context, userID, messageID int64, role string) (*Message, error) {
	var msg Message
	err := s.db.WithContext(ctx).
		Joins("JOIN conversations AS c ON c.id = messages.conversation_id").
		Where("messages.id = ? AND c.user_id = ?", messageID, userID).
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if msg.Role != role {
		return nil, ErrForbidden
	}
	return &msg, nil
}

func (s *Service) messagesOf(ctx context.Context, conversationID int64) ([]Message, error) {
	var rows []Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) agentSlug(ctx context.Context, agentID int64) (string, error) {
	var a agent.Agent
	err := s.db.WithContext(ctx).Select("slug").Where("id = ?", agentID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return a.Slug, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
