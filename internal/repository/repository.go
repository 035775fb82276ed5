// Package repository 提供数据访问层
// 引擎本身只操作内存快照，仓储是按排班周期取数/落库的外部协作方
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/banbiao/banbiao/pkg/model"
)

// DB 数据库接口
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Tx 事务接口
type Tx interface {
	DB
	Commit() error
	Rollback() error
}

// Scanner 行扫描接口
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Horizon 排班周期（日历月），快照按周期加载
type Horizon struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// DateRange 返回周期覆盖的日期范围（YYYY-MM-DD，闭区间）
func (h Horizon) DateRange() (start, end string) {
	first := time.Date(h.Year, h.Month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(model.DateLayout), last.Format(model.DateLayout)
}
