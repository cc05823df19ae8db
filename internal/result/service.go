package result

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProductRequired = errors.New("产品名称不能为空")
	ErrAgentRequired   = errors.New("智能体名称不能为空")
	ErrInvalidLesson   = errors.New("课程节数必须为大于等于 0 的数字")
	ErrContentRequired = errors.New("结果内容不能为空")
)

// SaveParams 保存参数。LessonCount 接受 JSON 数字或数字字符串。
type SaveParams struct {
	ProductName   string
	AgentName     string
	LessonCount   any
	ResultContent string
}

// Service 智能体结果存取，所有查询限定在操作人自己的记录内
type Service struct {
	db *gorm.DB
}

// NewService 创建服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ParseLessonCount 解析课程节数：必须是有限且不小于 0 的数字，小数部分截断
func ParseLessonCount(raw any) (int, error) {
	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, ErrInvalidLesson
		}
		v = f
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, ErrInvalidLesson
		}
		v = f
	default:
		return 0, ErrInvalidLesson
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > math.MaxInt32 {
		return 0, ErrInvalidLesson
	}
	return int(v), nil
}

// Find 读取操作人的一条结果；lessonCount 为 nil 时取节数最小的一条。没有时返回 nil。
func (s *Service) Find(ctx context.Context, userID int64, productName, agentName string, lessonCount *int) (*AgentResult, error) {
	q := s.db.WithContext(ctx).
		Where("product_name = ? AND agent_name = ? AND operator_user_id = ?", productName, agentName, userID)
	if lessonCount != nil {
		q = q.Where("lesson_count = ?", *lessonCount)
	} else {
		q = q.Order("lesson_count ASC")
	}

	var row AgentResult
	err := q.Limit(1).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ProductNames 返回全部非空产品名，按名称升序去重
func (s *Service) ProductNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&AgentResult{}).
		Distinct("product_name").
		Where("product_name <> ?", "").
		Order("product_name ASC").
		Pluck("product_name", &names).Error
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Save 按唯一键插入或覆盖结果；用户名为空时操作人名称取产品名
func (s *Service) Save(ctx context.Context, userID int64, username string, params SaveParams) (*AgentResult, error) {
	product := strings.TrimSpace(params.ProductName)
	if product == "" {
		return nil, ErrProductRequired
	}
	agentName := strings.TrimSpace(params.AgentName)
	if agentName == "" {
		return nil, ErrAgentRequired
	}
	lesson, err := ParseLessonCount(params.LessonCount)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(params.ResultContent)
	if content == "" {
		return nil, ErrContentRequired
	}
	operator := username
	if operator == "" {
		operator = product
	}

	row := &AgentResult{
		ProductName:    product,
		AgentName:      agentName,
		LessonCount:    lesson,
		OperatorUserID: userID,
		OperatorName:   operator,
		ResultContent:  content,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "product_name"}, {Name: "agent_name"}, {Name: "lesson_count"}, {Name: "operator_user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"result_content", "operator_name", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return s.Find(ctx, userID, product, agentName, &lesson)
}
