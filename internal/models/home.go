// home.go

package models

import (
	"time"
)

// 新建家园的初始属性
const (
	MaxHealth       = 100
	InitialShield   = 50
	InitialResource = 100
	InitialLevel    = 1
)

// Home 玩家家园模型
type Home struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	LastResetAt time.Time `json:"last_reset_at"`

	// 生存属性
	Health int `json:"health"`
	Shield int `json:"shield"`

	// 升级属性
	WeaponLevel  int `json:"weapon_level"`
	DefenseLevel int `json:"defense_level"`

	// 可消费资源
	Resources int `json:"resources"`

	// 乐观锁版本号，每次写入递增
	Version int64 `json:"version"`
}

// NewHome 创建一个处于初始状态的家园
func NewHome(id string, now time.Time) Home {
	return Home{
		ID:           id,
		CreatedAt:    now,
		LastResetAt:  now,
		Health:       MaxHealth,
		Shield:       InitialShield,
		WeaponLevel:  InitialLevel,
		DefenseLevel: InitialLevel,
		Resources:    InitialResource,
		Version:      1,
	}
}

// IsDestroyed 家园是否已被摧毁
func (h Home) IsDestroyed() bool {
	return h.Health <= 0
}

// AgeDays 自上次重置以来经过的整天数
func (h Home) AgeDays(now time.Time) int {
	age := now.Sub(h.LastResetAt)
	if age < 0 {
		return 0
	}
	return int(age / (24 * time.Hour))
}

// HomePatch 家园部分字段更新，nil 表示不修改
type HomePatch struct {
	Health       *int
	Shield       *int
	WeaponLevel  *int
	DefenseLevel *int
	Resources    *int
	LastResetAt  *time.Time
}

// Int 返回整数指针，便于构造 HomePatch
func Int(v int) *int {
	return &v
}

// Time 返回时间指针
func Time(v time.Time) *time.Time {
	return &v
}

// IsEmpty 是否没有任何字段需要更新
func (p HomePatch) IsEmpty() bool {
	return p.Health == nil && p.Shield == nil && p.WeaponLevel == nil &&
		p.DefenseLevel == nil && p.Resources == nil && p.LastResetAt == nil
}

// Apply 将补丁应用到家园副本上，版本号不在此处修改
func (p HomePatch) Apply(h Home) Home {
	if p.Health != nil {
		h.Health = *p.Health
	}
	if p.Shield != nil {
		h.Shield = *p.Shield
	}
	if p.WeaponLevel != nil {
		h.WeaponLevel = *p.WeaponLevel
	}
	if p.DefenseLevel != nil {
		h.DefenseLevel = *p.DefenseLevel
	}
	if p.Resources != nil {
		h.Resources = *p.Resources
	}
	if p.LastResetAt != nil {
		h.LastResetAt = *p.LastResetAt
	}
	return h
}

// ResetPatch 将家园恢复为初始状态的补丁
func ResetPatch(now time.Time) HomePatch {
	return HomePatch{
		Health:       Int(MaxHealth),
		Shield:       Int(InitialShield),
		WeaponLevel:  Int(InitialLevel),
		DefenseLevel: Int(InitialLevel),
		Resources:    Int(InitialResource),
		LastResetAt:  Time(now),
	}
}
