package models

import "time"

// Client 客户（车主）
type Client struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FullName  string    `json:"full_name" gorm:"size:100;not null"`
	Phone     string    `json:"phone" gorm:"size:30;not null;uniqueIndex"`
	CarModel  string    `json:"car_model" gorm:"size:100;not null"`
	CarNumber string    `json:"car_number" gorm:"size:20"`
	CarYear   *int      `json:"car_year"`
	VIN       string    `json:"vin" gorm:"column:vin;size:32"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (Client) TableName() string {
	return "clients"
}
