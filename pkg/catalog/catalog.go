// Package catalog 提供班次类型目录
// 目录数据加载一次后不可变，时间字符串在加载时快速失败校验
package catalog

import (
	"time"

	"github.com/banbiao/banbiao/pkg/errors"
	"github.com/banbiao/banbiao/pkg/model"
)

// Catalog 班次类型目录
type Catalog struct {
	types map[string]*model.ShiftType
	order []string
}

// New 从类型定义构建目录并校验
func New(types []model.ShiftType) (*Catalog, error) {
	c := &Catalog{
		types: make(map[string]*model.ShiftType, len(types)),
		order: make([]string, 0, len(types)),
	}

	for i := range types {
		t := types[i]
		if t.ID == "" {
			return nil, errors.InvalidInput("id", "班次类型ID不能为空")
		}
		if _, exists := c.types[t.ID]; exists {
			return nil, errors.New(errors.CodeAlreadyExists, "班次类型ID重复: "+t.ID)
		}
		if _, err := time.Parse(model.TimeLayout, t.StartTime); err != nil {
			return nil, errors.InvalidFormat("start_time", t.StartTime).WithCause(err)
		}
		if _, err := time.Parse(model.TimeLayout, t.EndTime); err != nil {
			return nil, errors.InvalidFormat("end_time", t.EndTime).WithCause(err)
		}
		if t.StartTime >= t.EndTime {
			return nil, errors.New(errors.CodeInvalidTimeRange, "班次结束时间必须晚于开始时间: "+t.ID)
		}
		if t.MaxStaff <= 0 {
			return nil, errors.InvalidInput("max_staff", "必须大于0")
		}

		c.types[t.ID] = &t
		c.order = append(c.order, t.ID)
	}

	return c, nil
}

// Default 返回住居照护场景的默认目录
func Default() *Catalog {
	c, err := New([]model.ShiftType{
		{ID: "early-full", Name: "早全班", StartTime: "07:00", EndTime: "15:00", MaxStaff: 2, Color: "#4CAF50"},
		{ID: model.ShiftTypeEarlyIntermediate, Name: "早中班", StartTime: "09:00", EndTime: "17:00", MaxStaff: 1, Color: "#8BC34A"},
		{ID: "late-full", Name: "晚全班", StartTime: "14:00", EndTime: "22:00", MaxStaff: 2, Color: "#2196F3"},
		{ID: "late-intermediate", Name: "晚中班", StartTime: "15:00", EndTime: "23:00", MaxStaff: 1, Color: "#3F51B5"},
	})
	if err != nil {
		// 内置定义必须合法
		panic(err)
	}
	return c
}

// Get 根据ID获取班次类型，不存在返回 nil
func (c *Catalog) Get(id string) *model.ShiftType {
	return c.types[id]
}

// MustGet 根据ID获取班次类型，不存在返回 NotFound 错误
func (c *Catalog) MustGet(id string) (*model.ShiftType, error) {
	t := c.types[id]
	if t == nil {
		return nil, errors.NotFound("班次类型", id)
	}
	return t, nil
}

// List 按注册顺序返回所有班次类型
func (c *Catalog) List() []*model.ShiftType {
	result := make([]*model.ShiftType, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.types[id])
	}
	return result
}

// Count 返回目录中的类型数量
func (c *Catalog) Count() int {
	return len(c.types)
}
