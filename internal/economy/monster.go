package economy

import (
	"math"
)

// 怪物等级范围
const (
	MinMonsterLevel = 1
	MaxMonsterLevel = 5
)

// 各等级怪物名单，每级5种
var monsterRoster = [MaxMonsterLevel][]string{
	{"Rat", "Spider", "Bat", "Snake", "Slime"},
	{"Wolf", "Goblin", "Skeleton", "Zombie", "Ghost"},
	{"Orc", "Troll", "Ghoul", "Wraith", "Golem"},
	{"Ogre", "Vampire", "Werewolf", "Demon", "Dragon"},
	{"Lich", "Behemoth", "Kraken", "Phoenix", "Leviathan"},
}

// MonsterLevel 根据家园存活天数计算怪物等级 clamp(ageDays+1, 1, 5)
func MonsterLevel(ageDays int) int {
	level := ageDays + 1
	if level < MinMonsterLevel {
		return MinMonsterLevel
	}
	if level > MaxMonsterLevel {
		return MaxMonsterLevel
	}
	return level
}

// MonsterDamage 怪物伤害 floor(10 * 1.5^(level-1))
func MonsterDamage(level int) int {
	return floorInt(10 * math.Pow(1.5, float64(level-1)))
}

// MonsterRoster 返回指定等级的怪物名单副本
func MonsterRoster(level int) []string {
	level = MonsterLevel(level - 1)
	roster := monsterRoster[level-1]
	out := make([]string, len(roster))
	copy(out, roster)
	return out
}

// MonsterName 按名单下标取怪物名称，下标越界时取模
func MonsterName(level, index int) string {
	level = MonsterLevel(level - 1)
	roster := monsterRoster[level-1]
	if index < 0 {
		index = -index
	}
	return roster[index%len(roster)]
}

// RosterSize 每个等级的怪物数量
func RosterSize(level int) int {
	level = MonsterLevel(level - 1)
	return len(monsterRoster[level-1])
}
