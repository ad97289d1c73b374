package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// parseID 解析路径中的正整数 ID，失败时已写入 400 响应
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		BadRequest(c, "无效的ID")
		return 0, false
	}
	return uint(id), true
}

// parseTime 接受 2006-01-02 或 2006-01-02 15:04:05，按本地时区解析
func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(dateTimeLayout, value, time.Local); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("时间格式错误，应为: %s 或 %s", dateLayout, dateTimeLayout)
	}
	return t, nil
}

// parseOptionalTime 空字符串返回 nil
func parseOptionalTime(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseTime(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// endOfDay 只给出日期的结束时间包含当天
func endOfDay(value string, t time.Time) time.Time {
	if len(strings.TrimSpace(value)) == len(dateLayout) {
		return t.Add(24*time.Hour - time.Second)
	}
	return t
}
