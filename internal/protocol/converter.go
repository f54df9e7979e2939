// Package protocol 将家园与结算结果转换为 protobuf 消息，
// 供 Accept: application/x-protobuf 的客户端使用。
package protocol

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jacl-coder/HomeDefense-Server/internal/economy"
	"github.com/jacl-coder/HomeDefense-Server/internal/game"
	"github.com/jacl-coder/HomeDefense-Server/internal/leaderboard"
	"github.com/jacl-coder/HomeDefense-Server/internal/models"
)

// ContentType protobuf 响应类型
const ContentType = "application/x-protobuf"

func homeFields(h models.Home) map[string]interface{} {
	return map[string]interface{}{
		"id":            h.ID,
		"created_at":    formatTime(h.CreatedAt),
		"last_reset_at": formatTime(h.LastResetAt),
		"health":        h.Health,
		"shield":        h.Shield,
		"weapon_level":  h.WeaponLevel,
		"defense_level": h.DefenseLevel,
		"resources":     h.Resources,
		"version":       h.Version,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ConvertHomeToProto 将家园转换为协议消息
func ConvertHomeToProto(h models.Home) (*structpb.Struct, error) {
	return structpb.NewStruct(homeFields(h))
}

// ConvertStatusToProto 将家园派生视图转换为协议消息
func ConvertStatusToProto(s economy.HomeStatus) (*structpb.Struct, error) {
	fields := homeFields(s.Home)
	fields["destroyed"] = s.Destroyed
	fields["age_days"] = s.AgeDays
	fields["monster_level"] = s.MonsterLevel
	fields["weapon_name"] = s.WeaponName
	fields["weapon_damage"] = s.WeaponDamage
	fields["defense_power"] = s.DefensePower
	fields["defense_name"] = s.DefenseName
	fields["max_shield"] = s.MaxShield
	fields["shield_regen"] = s.ShieldRegen
	fields["health_repair_cost"] = s.HealthRepairCost
	fields["shield_repair_cost"] = s.ShieldRepairCost
	fields["weapon_upgrade_cost"] = s.WeaponUpgradeCost
	fields["defense_upgrade_cost"] = s.DefenseUpgradeCost
	fields["next_weapon_name"] = s.NextWeaponName
	fields["next_weapon_damage"] = s.NextWeaponDamage
	fields["next_defense_name"] = s.NextDefenseName
	fields["next_max_shield"] = s.NextMaxShield
	fields["next_shield_regen"] = s.NextShieldRegen
	return structpb.NewStruct(fields)
}

// ConvertCommandResultToProto 将命令结果转换为协议消息
func ConvertCommandResultToProto(r game.CommandResult) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"applied": r.Applied,
		"reason":  string(r.Reason),
		"home":    homeFields(r.Home),
	})
}

// ConvertAttackLogsToProto 将袭击记录列表转换为协议消息
func ConvertAttackLogsToProto(logs []models.AttackLog) (*structpb.Struct, error) {
	items := make([]interface{}, len(logs))
	for i, l := range logs {
		items[i] = map[string]interface{}{
			"id":               l.ID,
			"home_id":          l.HomeID,
			"created_at":       formatTime(l.CreatedAt),
			"attacker_type":    l.AttackerType,
			"attacker_level":   l.AttackerLevel,
			"damage_dealt":     l.DamageDealt,
			"damage_received":  l.DamageReceived,
			"resources_gained": l.ResourcesGained,
			"outcome":          string(l.Outcome),
		}
	}
	return structpb.NewStruct(map[string]interface{}{"attack_logs": items})
}

// ConvertCombatTickToProto 将战斗结算汇总转换为协议消息
func ConvertCombatTickToProto(res game.CombatTickResult) (*structpb.Struct, error) {
	items := make([]interface{}, len(res.Results))
	for i, r := range res.Results {
		items[i] = map[string]interface{}{
			"home_id":          r.HomeID,
			"monster_type":     r.MonsterType,
			"monster_level":    r.MonsterLevel,
			"outcome":          string(r.Outcome),
			"damage_dealt":     r.DamageDealt,
			"damage_received":  r.DamageReceived,
			"resources_gained": r.ResourcesGained,
			"remaining_health": r.RemainingHealth,
			"remaining_shield": r.RemainingShield,
			"skipped":          r.Skipped,
			"error":            r.Error,
		}
	}
	return structpb.NewStruct(map[string]interface{}{
		"processed_count": res.ProcessedCount,
		"failed_count":    res.FailedCount,
		"results":         items,
	})
}

// ConvertRegenTickToProto 将护盾回复汇总转换为协议消息
func ConvertRegenTickToProto(res game.RegenTickResult) (*structpb.Struct, error) {
	items := make([]interface{}, len(res.Results))
	for i, r := range res.Results {
		items[i] = map[string]interface{}{
			"home_id":         r.HomeID,
			"status":          string(r.Status),
			"previous_shield": r.PreviousShield,
			"new_shield":      r.NewShield,
			"regenerated":     r.Regenerated,
			"error":           r.Error,
		}
	}
	return structpb.NewStruct(map[string]interface{}{
		"processed_count": res.ProcessedCount,
		"failed_count":    res.FailedCount,
		"results":         items,
	})
}

// ConvertLeaderboardToProto 将排行榜转换为协议消息
func ConvertLeaderboardToProto(kind leaderboard.Kind, entries []leaderboard.Entry) (*structpb.Struct, error) {
	items := make([]interface{}, len(entries))
	for i, e := range entries {
		items[i] = map[string]interface{}{
			"rank":    e.Rank,
			"home_id": e.HomeID,
			"score":   e.Score,
		}
	}
	return structpb.NewStruct(map[string]interface{}{
		"kind":    string(kind),
		"entries": items,
	})
}

// Marshal 序列化协议消息
func Marshal(msg *structpb.Struct, convErr error) ([]byte, error) {
	if convErr != nil {
		return nil, fmt.Errorf("convert message: %w", convErr)
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return data, nil
}
