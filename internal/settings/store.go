package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"agentdesk/internal/ai"
	"agentdesk/internal/metrics"
	"agentdesk/internal/oplog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	snapshotKey = "agentdesk:ai_settings:latest"
	defaultTTL  = time.Minute
	cacheType   = "ai_settings"
	// DefaultTheme 未填写主题时使用
	DefaultTheme = "blue"
)

// ErrModelAndKeyRequired 保存配置时模型名称或 API Key 为空
var ErrModelAndKeyRequired = errors.New("模型名称和 API Key 不能为空")

// SaveParams 保存 AI 配置参数
type SaveParams struct {
	ModelName string
	APIKey    string
	Theme     string
}

// Store AI 配置存储。Current 实现 ai.SettingsProvider，
// 配置了 Redis 时缓存最新快照，保存后立即失效。
type Store struct {
	db     *gorm.DB
	redis  redis.UniversalClient
	ttl    time.Duration
	oplog  oplog.Writer
	logger *zap.Logger
}

// NewStore 创建配置存储，redisClient 可为 nil
func NewStore(db *gorm.DB, redisClient redis.UniversalClient, writer oplog.Writer, logger *zap.Logger) *Store {
	if writer == nil {
		writer = oplog.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, redis: redisClient, ttl: defaultTTL, oplog: writer, logger: logger}
}

// WithTTL 设置快照缓存时间
func (s *Store) WithTTL(ttl time.Duration) *Store {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// Latest 返回最新一行，没有配置时返回 nil
func (s *Store) Latest(ctx context.Context) (*AISetting, error) {
	var row AISetting
	err := s.db.WithContext(ctx).Order("id DESC").Limit(1).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Save 追加一行配置
func (s *Store) Save(ctx context.Context, actorID int64, params SaveParams) (*AISetting, error) {
	model := strings.TrimSpace(params.ModelName)
	key := strings.TrimSpace(params.APIKey)
	if model == "" || key == "" {
		return nil, ErrModelAndKeyRequired
	}
	theme := strings.TrimSpace(params.Theme)
	if theme == "" {
		theme = DefaultTheme
	}

	row := &AISetting{ModelName: model, APIKey: key, Theme: theme, UpdatedByUserID: oplog.Int64(actorID)}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.oplog.Log(ctx, oplog.Entry{UserID: oplog.Int64(actorID), Action: "update_ai_settings"})
	return row, nil
}

// Current 实现 ai.SettingsProvider
func (s *Store) Current(ctx context.Context) (ai.Settings, error) {
	if cached, ok := s.readSnapshot(ctx); ok {
		return cached, nil
	}

	row, err := s.Latest(ctx)
	if err != nil {
		return ai.Settings{}, err
	}
	if row == nil {
		return ai.Settings{}, ai.ErrNoSettings
	}
	current := ai.Settings{ModelName: row.ModelName, APIKey: row.APIKey}
	s.writeSnapshot(ctx, current)
	return current, nil
}

type snapshot struct {
	ModelName string `json:"model_name"`
	APIKey    string `json:"api_key"`
}

func (s *Store) readSnapshot(ctx context.Context) (ai.Settings, bool) {
	if s.redis == nil {
		return ai.Settings{}, false
	}
	raw, err := s.redis.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("读取 AI 配置缓存失败", zap.Error(err))
		}
		metrics.CacheMisses.WithLabelValues(cacheType).Inc()
		return ai.Settings{}, false
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		metrics.CacheMisses.WithLabelValues(cacheType).Inc()
		return ai.Settings{}, false
	}
	metrics.CacheHits.WithLabelValues(cacheType).Inc()
	return ai.Settings{ModelName: snap.ModelName, APIKey: snap.APIKey}, true
}

func (s *Store) writeSnapshot(ctx context.Context, current ai.Settings) {
	if s.redis == nil {
		return
	}
	b, err := json.Marshal(snapshot{ModelName: current.ModelName, APIKey: current.APIKey})
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, snapshotKey, b, s.ttl).Err(); err != nil {
		s.logger.Warn("写入 AI 配置缓存失败", zap.Error(err))
	}
}

func (s *Store) invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, snapshotKey).Err(); err != nil {
		s.logger.Warn("清除 AI 配置缓存失败", zap.Error(err))
	}
}
