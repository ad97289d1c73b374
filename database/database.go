package database

import (
	"fmt"
	"log"
	"strings"

	"autoservice/config"
	"autoservice/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Open 打开数据库连接、迁移表结构并写入默认设置
// 返回的连接由调用方持有，并在进程退出前调用 Close
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := newDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if isSQLite(cfg.Driver) {
		// sqlite 只保留一个共享连接，写操作天然串行，内存库也不会因换连接而丢失
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if err := seedSettings(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Println("数据库初始化成功")
	return db, nil
}

// Migrate 自动迁移全部数据表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Client{},
		&models.Employee{},
		&models.WorkOrder{},
		&models.OrderWork{},
		&models.OrderExpense{},
		&models.Task{},
		&models.CashFlowEntry{},
		&models.Setting{},
		&models.SalaryEntry{},
		&models.SalaryPayment{},
	); err != nil {
		return fmt.Errorf("迁移数据表失败: %w", err)
	}
	return nil
}

// seedSettings 写入默认设置，已存在的键保持不变
func seedSettings(db *gorm.DB) error {
	defaults := models.DefaultSettings()
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&defaults).Error; err != nil {
		return fmt.Errorf("初始化默认设置失败: %w", err)
	}
	return nil
}

func newDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch {
	case isSQLite(cfg.Driver):
		return sqlite.Open(SQLiteDSN(cfg.Path)), nil
	case cfg.Driver == "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.Username,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
		)
		return mysql.Open(dsn), nil
	case cfg.Driver == "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=Local",
			cfg.Host,
			cfg.Port,
			cfg.Username,
			cfg.Password,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// isSQLite 未指定驱动时按 sqlite 处理
func isSQLite(driver string) bool {
	return driver == "" || driver == "sqlite"
}

// SQLiteDSN 为 sqlite 路径追加外键与忙等待参数
// 外键必须对每个连接开启，级联删除依赖它
func SQLiteDSN(path string) string {
	if path == "" {
		path = "autoservice.db"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
