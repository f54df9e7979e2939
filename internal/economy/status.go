package economy

import (
	"time"

	"github.com/jacl-coder/HomeDefense-Server/internal/models"
)

// HomeStatus 家园派生数据视图
type HomeStatus struct {
	models.Home

	Destroyed    bool `json:"destroyed"`
	AgeDays      int  `json:"age_days"`
	MonsterLevel int  `json:"monster_level"`

	WeaponName   string `json:"weapon_name"`
	WeaponDamage int    `json:"weapon_damage"`
	DefensePower int    `json:"defense_power"`

	DefenseName string `json:"defense_name"`
	MaxShield   int    `json:"max_shield"`
	ShieldRegen int    `json:"shield_regen"`

	HealthRepairCost   int `json:"health_repair_cost"`
	ShieldRepairCost   int `json:"shield_repair_cost"`
	WeaponUpgradeCost  int `json:"weapon_upgrade_cost"`
	DefenseUpgradeCost int `json:"defense_upgrade_cost"`

	NextWeaponName   string `json:"next_weapon_name"`
	NextWeaponDamage int    `json:"next_weapon_damage"`
	NextDefenseName  string `json:"next_defense_name"`
	NextMaxShield    int    `json:"next_max_shield"`
	NextShieldRegen  int    `json:"next_shield_regen"`
}

// Describe 计算家园的派生属性
func Describe(h models.Home, now time.Time) HomeStatus {
	maxShield := MaxShield(h.DefenseLevel)
	age := h.AgeDays(now)

	return HomeStatus{
		Home:         h,
		Destroyed:    h.IsDestroyed(),
		AgeDays:      age,
		MonsterLevel: MonsterLevel(age),

		WeaponName:   WeaponName(h.WeaponLevel),
		WeaponDamage: WeaponDamage(h.WeaponLevel),
		DefensePower: DefensePower(h.WeaponLevel),

		DefenseName: DefenseName(h.DefenseLevel),
		MaxShield:   maxShield,
		ShieldRegen: ShieldRegenRate(h.DefenseLevel),

		HealthRepairCost:   HealthRepairCost(h.Health),
		ShieldRepairCost:   ShieldRepairCost(h.Shield, maxShield),
		WeaponUpgradeCost:  WeaponUpgradeCost(h.WeaponLevel),
		DefenseUpgradeCost: DefenseUpgradeCost(h.DefenseLevel),

		NextWeaponName:   WeaponName(h.WeaponLevel + 1),
		NextWeaponDamage: WeaponDamage(h.WeaponLevel + 1),
		NextDefenseName:  DefenseName(h.DefenseLevel + 1),
		NextMaxShield:    MaxShield(h.DefenseLevel + 1),
		NextShieldRegen:  ShieldRegenRate(h.DefenseLevel + 1),
	}
}
