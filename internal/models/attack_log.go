// attack_log.go

package models

import (
	"time"
)

// Outcome 战斗结果
type Outcome string

const (
	// OutcomeVictory 击退怪物
	OutcomeVictory Outcome = "victory"
	// OutcomeDefeat 未能击退怪物
	OutcomeDefeat Outcome = "defeat"
)

// AttackLog 怪物袭击记录，写入后不可修改
type AttackLog struct {
	ID              string    `json:"id"`
	HomeID          string    `json:"home_id"`
	CreatedAt       time.Time `json:"created_at"`
	AttackerType    string    `json:"attacker_type"`
	AttackerLevel   int       `json:"attacker_level"` // 1-5
	DamageDealt     int       `json:"damage_dealt"`
	DamageReceived  int       `json:"damage_received"`
	ResourcesGained int       `json:"resources_gained"`
	Outcome         Outcome   `json:"outcome"`
}
