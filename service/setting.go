package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"autoservice/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetSetting 读取设置值，不存在时返回 defaultValue
func (s *Store) GetSetting(ctx context.Context, key, defaultValue string) (string, error) {
	if key == "" {
		return defaultValue, nil
	}
	var setting models.Setting
	if err := s.db.WithContext(ctx).Where(&models.Setting{Key: key}).First(&setting).Error; err != nil {
		if isNotFound(err) {
			return defaultValue, nil
		}
		return "", fmt.Errorf("读取设置失败: %w", err)
	}
	return setting.Value, nil
}

// AllSettings 按分组返回全部设置：分组 -> 键 -> 值
func (s *Store) AllSettings(ctx context.Context) (map[string]map[string]string, error) {
	var settings []models.Setting
	if err := s.db.WithContext(ctx).Order("category").Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("读取设置失败: %w", err)
	}
	grouped := make(map[string]map[string]string)
	for _, st := range settings {
		if grouped[st.Category] == nil {
			grouped[st.Category] = make(map[string]string)
		}
		grouped[st.Category][st.Key] = st.Value
	}
	return grouped, nil
}

// UpsertSetting 写入设置，已存在的键只更新值并保留原分组
func (s *Store) UpsertSetting(ctx context.Context, key, value string) (*models.Setting, error) {
	var setting models.Setting
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		saved, err := upsertSetting(tx, key, value)
		if err != nil {
			return err
		}
		setting = *saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// BulkUpsertSettings 在一个事务中批量写入设置，返回写入的键数
func (s *Store) BulkUpsertSettings(ctx context.Context, values map[string]string) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range keys {
			if _, err := upsertSetting(tx, k, values[k]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func upsertSetting(tx *gorm.DB, key, value string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, validationError("设置键不能为空")
	}

	var setting models.Setting
	err := tx.Where(&models.Setting{Key: key}).First(&setting).Error
	switch {
	case err == nil:
		if err := tx.Model(&setting).Update("value", value).Error; err != nil {
			return nil, fmt.Errorf("更新设置 %s 失败: %w", key, err)
		}
		setting.Value = value
	case isNotFound(err):
		setting = models.Setting{Key: key, Value: value, Category: models.SettingCategoryGeneral}
		if err := tx.Create(&setting).Error; err != nil {
			return nil, fmt.Errorf("创建设置 %s 失败: %w", key, err)
		}
	default:
		return nil, fmt.Errorf("读取设置 %s 失败: %w", key, err)
	}
	return &setting, nil
}
