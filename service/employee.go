package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autoservice/models"

	"gorm.io/gorm"
)

// EmployeeInput 新建员工参数
type EmployeeInput struct {
	FullName       string     `json:"full_name"`
	Position       string     `json:"position"`
	CommissionRate float64    `json:"commission_rate"`
	IsActive       *bool      `json:"is_active"`
	HireDate       *time.Time `json:"hire_date"`
}

// EmployeePatch 员工可修改字段，nil 表示不修改
type EmployeePatch struct {
	FullName       *string  `json:"full_name"`
	Position       *string  `json:"position"`
	CommissionRate *float64 `json:"commission_rate"`
	IsActive       *bool    `json:"is_active"`
}

func checkCommissionRate(rate float64) error {
	if rate < 0 || rate > 100 {
		return validationError("提成比例必须在 0 到 100 之间")
	}
	return nil
}

// CreateEmployee 新建员工，默认在职，入职日期默认今天
func (s *Store) CreateEmployee(ctx context.Context, in EmployeeInput) (*models.Employee, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, validationError("员工姓名不能为空")
	}
	if err := checkCommissionRate(in.CommissionRate); err != nil {
		return nil, err
	}

	employee := models.Employee{
		FullName:       name,
		Position:       strings.TrimSpace(in.Position),
		CommissionRate: in.CommissionRate,
		IsActive:       true,
	}
	if in.IsActive != nil {
		employee.IsActive = *in.IsActive
	}
	if in.HireDate != nil {
		employee.HireDate = *in.HireDate
	} else {
		now := s.now()
		employee.HireDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	if err := s.db.WithContext(ctx).Create(&employee).Error; err != nil {
		return nil, fmt.Errorf("创建员工失败: %w", err)
	}
	return &employee, nil
}

// GetEmployee 查询员工
func (s *Store) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.WithContext(ctx).First(&employee, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("员工", id)
		}
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}
	return &employee, nil
}

// ListEmployees 员工列表，activeOnly 为 true 时只返回在职员工
func (s *Store) ListEmployees(ctx context.Context, activeOnly bool) ([]models.Employee, error) {
	query := s.db.WithContext(ctx).Model(&models.Employee{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var employees []models.Employee
	if err := query.Order("full_name").Order("id").Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("查询员工列表失败: %w", err)
	}
	return employees, nil
}

// UpdateEmployee 修改员工信息
func (s *Store) UpdateEmployee(ctx context.Context, id uint, patch EmployeePatch) (*models.Employee, error) {
	updates := map[string]any{}
	if patch.FullName != nil {
		name := strings.TrimSpace(*patch.FullName)
		if name == "" {
			return nil, validationError("员工姓名不能为空")
		}
		updates["full_name"] = name
	}
	if patch.Position != nil {
		updates["position"] = strings.TrimSpace(*patch.Position)
	}
	if patch.CommissionRate != nil {
		if err := checkCommissionRate(*patch.CommissionRate); err != nil {
			return nil, err
		}
		updates["commission_rate"] = *patch.CommissionRate
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if len(updates) == 0 {
		return nil, validationError("没有需要更新的字段")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var employee models.Employee
		if err := tx.First(&employee, id).Error; err != nil {
			if isNotFound(err) {
				return notFound("员工", id)
			}
			return fmt.Errorf("查询员工失败: %w", err)
		}
		if err := tx.Model(&employee).Updates(updates).Error; err != nil {
			return fmt.Errorf("更新员工失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetEmployee(ctx, id)
}

// DeleteEmployee 删除员工，提成与发放记录级联删除，工单上的指派置空
func (s *Store) DeleteEmployee(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Employee{}, id)
	if result.Error != nil {
		return fmt.Errorf("删除员工失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("员工", id)
	}
	return nil
}
