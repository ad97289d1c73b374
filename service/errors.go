package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 错误类别，调用方使用 errors.Is 判断
var (
	ErrNotFound   = errors.New("记录不存在")
	ErrConflict   = errors.New("数据冲突")
	ErrValidation = errors.New("参数校验失败")
)

// 具体冲突
var (
	ErrOrderCompleted       = fmt.Errorf("%w: 工单已完成，不可修改", ErrConflict)
	ErrDuplicatePhone       = fmt.Errorf("%w: 该手机号的客户已存在", ErrConflict)
	ErrDuplicateOrderNumber = fmt.Errorf("%w: 工单号已存在", ErrConflict)
)

// validationError 生成带说明的校验错误
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound 生成带实体说明的未找到错误
func notFound(entity string, id uint) error {
	return fmt.Errorf("%w: %s #%d", ErrNotFound, entity, id)
}

// isNotFound gorm 的未找到错误
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate 唯一索引冲突（需开启 gorm.Config.TranslateError）
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
