package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"autoservice/models"

	"gorm.io/gorm"
)

// 工单号格式: YYMMDD-NNN，NNN 为当日序号
const orderNumberDateLayout = "060102"

var orderNumberPattern = regexp.MustCompile(`^(\d{6})-(\d{3})`)

// OrderNumberPrefix 工单号日期前缀
func OrderNumberPrefix(t time.Time) string {
	return t.Format(orderNumberDateLayout)
}

// FormatOrderNumber 拼接工单号
func FormatOrderNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s-%03d", prefix, seq)
}

// ParseOrderNumber 解析工单号，返回日期前缀与序号
func ParseOrderNumber(number string) (prefix string, seq int, ok bool) {
	m := orderNumberPattern.FindStringSubmatch(number)
	if m == nil {
		return "", 0, false
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], seq, true
}

// countOrdersWithPrefix 当日已有工单数量
func countOrdersWithPrefix(tx *gorm.DB, prefix string) (int64, error) {
	var count int64
	err := tx.Model(&models.WorkOrder{}).
		Where("order_number LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

// NextOrderNumber 预览下一个工单号
// prefix 为空时取最近一张工单；最近工单号无法解析时回退为 <prefix>-001
func (s *Store) NextOrderNumber(ctx context.Context, prefix string) (string, error) {
	query := s.db.WithContext(ctx).Model(&models.WorkOrder{})
	if prefix != "" {
		query = query.Where("order_number LIKE ?", prefix+"%")
	}

	var numbers []string
	if err := query.Order("id DESC").Limit(1).Pluck("order_number", &numbers).Error; err != nil {
		return "", fmt.Errorf("查询最近工单号失败: %w", err)
	}

	if len(numbers) == 0 {
		if prefix == "" {
			prefix = OrderNumberPrefix(s.now())
		}
		return FormatOrderNumber(prefix, 1), nil
	}

	last, seq, ok := ParseOrderNumber(numbers[0])
	if !ok {
		if prefix == "" {
			prefix = OrderNumberPrefix(s.now())
		}
		return FormatOrderNumber(prefix, 1), nil
	}
	return FormatOrderNumber(last, seq+1), nil
}
