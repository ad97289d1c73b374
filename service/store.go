package service

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Store 数据访问层，持有唯一的数据库连接
// 每个写操作在各自的事务中完成，失败时回滚并把错误返回给调用方
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore 创建数据访问层
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB 返回底层连接
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close 关闭底层连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping 检查数据库连接
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
