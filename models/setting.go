package models

import "time"

// 设置分组
const (
	SettingCategoryGeneral   = "general"
	SettingCategoryDashboard = "dashboard"
	SettingCategoryFinance   = "finance"
)

// 常用设置键
const (
	SettingDashboardPeriod       = "dashboard_period"
	SettingDashboardShowExpenses = "dashboard_show_expenses"
	SettingDashboardQuickActions = "dashboard_quick_actions"
	SettingTaxRate               = "tax_rate"
	SettingCurrency              = "currency"
	SettingCompanyName           = "company_name"
)

// Setting 键值配置项
type Setting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"size:100;not null;uniqueIndex"`
	Value     string    `json:"value" gorm:"type:text"`
	Category  string    `json:"category" gorm:"size:50;not null;default:general"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// DefaultSettings 首次启动时写入的默认设置
func DefaultSettings() []Setting {
	return []Setting{
		{Key: SettingDashboardPeriod, Value: "month", Category: SettingCategoryDashboard},
		{Key: SettingDashboardShowExpenses, Value: "true", Category: SettingCategoryDashboard},
		{Key: SettingDashboardQuickActions, Value: "new_client,new_order,new_task,cash_view", Category: SettingCategoryDashboard},
		{Key: SettingTaxRate, Value: "20", Category: SettingCategoryFinance},
		{Key: SettingCurrency, Value: "₽", Category: SettingCategoryGeneral},
		{Key: SettingCompanyName, Value: "Автосервис", Category: SettingCategoryGeneral},
	}
}
