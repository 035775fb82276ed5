// Package model 定义排班引擎的核心数据模型
package model

// Role 员工岗位（封闭集合）
type Role string

const (
	RoleWoonbegeleider Role = "woonbegeleider" // 生活辅导员
	RoleCoordinator    Role = "coordinator"    // 协调员（仅限早中班）
	RoleInvalkracht    Role = "invalkracht"    // 替补
	RoleStagiair       Role = "stagiair"       // 实习生
)

// ShiftTypeEarlyIntermediate 协调员唯一可分配的班次类型
const ShiftTypeEarlyIntermediate = "early-intermediate"

// Staff 员工
type Staff struct {
	BaseModel
	Name   string `json:"name" db:"name"`
	Role   Role   `json:"role" db:"role"`
	Active bool   `json:"active" db:"active"`

	// 不可用日期（YYYY-MM-DD），用于可用性冲突提醒
	UnavailableDates []string `json:"unavailable_dates,omitempty" db:"unavailable_dates"`
}

// IsActive 检查员工是否在职
func (s *Staff) IsActive() bool {
	return s.Active
}

// EligibleFor 检查员工岗位是否允许分配到某班次类型
// 协调员只能上早中班，其余岗位无限制
func (s *Staff) EligibleFor(shiftTypeID string) bool {
	if s.Role == RoleCoordinator {
		return shiftTypeID == ShiftTypeEarlyIntermediate
	}
	return true
}

// IsUnavailableOn 检查员工在某日期是否声明不可用
func (s *Staff) IsUnavailableOn(date string) bool {
	for _, d := range s.UnavailableDates {
		if d == date {
			return true
		}
	}
	return false
}
