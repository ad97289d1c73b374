package service

import (
	"context"
	"fmt"
	"strings"

	"autoservice/models"

	"gorm.io/gorm"
)

// ClientInput 新建客户参数
type ClientInput struct {
	FullName  string
	Phone     string
	CarModel  string
	CarNumber string
	CarYear   *int
	VIN       string
	Notes     string
}

// ClientPatch 客户可修改字段，nil 表示不修改
type ClientPatch struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	CarModel  *string `json:"car_model"`
	CarNumber *string `json:"car_number"`
	CarYear   *int    `json:"car_year"`
	VIN       *string `json:"vin"`
	Notes     *string `json:"notes"`
}

// updates 构造更新列，列名固定，不接受外部传入的列名
func (p ClientPatch) updates() (map[string]any, error) {
	updates := map[string]any{}
	if p.FullName != nil {
		if strings.TrimSpace(*p.FullName) == "" {
			return nil, validationError("客户姓名不能为空")
		}
		updates["full_name"] = strings.TrimSpace(*p.FullName)
	}
	if p.Phone != nil {
		if strings.TrimSpace(*p.Phone) == "" {
			return nil, validationError("手机号不能为空")
		}
		updates["phone"] = strings.TrimSpace(*p.Phone)
	}
	if p.CarModel != nil {
		if strings.TrimSpace(*p.CarModel) == "" {
			return nil, validationError("车型不能为空")
		}
		updates["car_model"] = strings.TrimSpace(*p.CarModel)
	}
	if p.CarNumber != nil {
		updates["car_number"] = *p.CarNumber
	}
	if p.CarYear != nil {
		updates["car_year"] = *p.CarYear
	}
	if p.VIN != nil {
		updates["vin"] = *p.VIN
	}
	if p.Notes != nil {
		updates["notes"] = *p.Notes
	}
	return updates, nil
}

// CreateClient 新建客户，手机号重复返回 ErrDuplicatePhone
func (s *Store) CreateClient(ctx context.Context, in ClientInput) (*models.Client, error) {
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Phone) == "" || strings.TrimSpace(in.CarModel) == "" {
		return nil, validationError("客户姓名、手机号和车型为必填项")
	}

	client := models.Client{
		FullName:  strings.TrimSpace(in.FullName),
		Phone:     strings.TrimSpace(in.Phone),
		CarModel:  strings.TrimSpace(in.CarModel),
		CarNumber: in.CarNumber,
		CarYear:   in.CarYear,
		VIN:       in.VIN,
		Notes:     in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicatePhone
		}
		return nil, fmt.Errorf("创建客户失败: %w", err)
	}
	return &client, nil
}

// GetClient 按 ID 查询客户
func (s *Store) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("客户", id)
		}
		return nil, fmt.Errorf("查询客户失败: %w", err)
	}
	return &client, nil
}

// ListClients 客户列表，search 按姓名、手机号、车型、车牌模糊匹配
func (s *Store) ListClients(ctx context.Context, search string) ([]models.Client, error) {
	query := s.db.WithContext(ctx).Model(&models.Client{})
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("full_name LIKE ? OR phone LIKE ? OR car_model LIKE ? OR car_number LIKE ?",
			pattern, pattern, pattern, pattern)
	}

	var clients []models.Client
	if err := query.Order("created_at DESC").Order("id DESC").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("查询客户列表失败: %w", err)
	}
	return clients, nil
}

// UpdateClient 按补丁更新客户
func (s *Store) UpdateClient(ctx context.Context, id uint, patch ClientPatch) (*models.Client, error) {
	updates, err := patch.updates()
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, validationError("没有需要更新的字段")
	}

	var client models.Client
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&client, id).Error; err != nil {
			if isNotFound(err) {
				return notFound("客户", id)
			}
			return fmt.Errorf("查询客户失败: %w", err)
		}
		if err := tx.Model(&client).Updates(updates).Error; err != nil {
			if isDuplicate(err) {
				return ErrDuplicatePhone
			}
			return fmt.Errorf("更新客户失败: %w", err)
		}
		if err := tx.First(&client, id).Error; err != nil {
			return fmt.Errorf("查询客户失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// DeleteClient 删除客户，其工单及工单明细级联删除
func (s *Store) DeleteClient(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Client{}, id)
	if result.Error != nil {
		return fmt.Errorf("删除客户失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("客户", id)
	}
	return nil
}
