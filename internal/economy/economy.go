// Package economy 游戏数值公式：等级对应的属性与升级、修理花费。
// 所有函数均为纯函数，每一步计算后向零取整。
package economy

import (
	"math"

	"github.com/jacl-coder/HomeDefense-Server/internal/models"
)

// 武器等级名称
var weaponNames = []string{
	"Basic Turret",
	"Dual Turret",
	"Automated Sentry",
	"Laser Defense",
	"Plasma Cannon",
	"Quantum Disruptor",
	"Temporal Shield",
	"Antimatter Beam",
	"Singularity Projector",
	"Reality Warper",
}

// 防御等级名称
var defenseNames = []string{
	"Wooden Fence",
	"Stone Wall",
	"Metal Barrier",
	"Energy Shield",
	"Quantum Barrier",
	"Dimensional Shield",
	"Reality Anchor",
	"Cosmic Defense",
	"Universal Barrier",
	"Omnipotent Shield",
}

// WeaponDamage 武器伤害 floor(10 * 1.5^(level-1))
func WeaponDamage(level int) int {
	return floorInt(10 * math.Pow(1.5, float64(level-1)))
}

// WeaponName 武器名称，超出目录的等级取最后一档
func WeaponName(level int) string {
	return tierName(weaponNames, level)
}

// MaxShield 护盾上限 50 + (level-1) * 10
func MaxShield(defenseLevel int) int {
	return 50 + (defenseLevel-1)*10
}

// ShieldRegenRate 每次回复的护盾值 floor(5 * 1.2^(level-1))
func ShieldRegenRate(defenseLevel int) int {
	return floorInt(5 * math.Pow(1.2, float64(defenseLevel-1)))
}

// DefenseName 防御名称，超出目录的等级取最后一档
func DefenseName(defenseLevel int) string {
	return tierName(defenseNames, defenseLevel)
}

// DefensePower 防御力，按武器等级计算
func DefensePower(weaponLevel int) int {
	return weaponLevel * 10
}

// WeaponUpgradeCost 武器升级花费 ceil(level^1.5 * 50)
func WeaponUpgradeCost(currentLevel int) int {
	return ceilInt(math.Pow(float64(currentLevel), 1.5) * 50)
}

// DefenseUpgradeCost 防御升级花费 ceil(level^1.5 * 40)
func DefenseUpgradeCost(currentLevel int) int {
	return ceilInt(math.Pow(float64(currentLevel), 1.5) * 40)
}

// HealthRepairCost 生命修理花费，每点生命2资源
func HealthRepairCost(currentHealth int) int {
	return ceilInt(float64(models.MaxHealth-currentHealth) * 2)
}

// ShieldRepairCost 护盾修理花费，每点护盾1资源
func ShieldRepairCost(currentShield, maxShield int) int {
	return ceilInt(float64(maxShield-currentShield) * 1)
}

func tierName(names []string, level int) string {
	idx := level - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(names) {
		idx = len(names) - 1
	}
	return names[idx]
}

// 超出 int 范围时饱和，保证函数对任意等级都有定义
func floorInt(v float64) int {
	return saturate(math.Floor(v))
}

func ceilInt(v float64) int {
	return saturate(math.Ceil(v))
}

func saturate(v float64) int {
	if v >= math.MaxInt {
		return math.MaxInt
	}
	if v <= math.MinInt {
		return math.MinInt
	}
	return int(v)
}
