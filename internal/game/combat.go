package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jacl-coder/HomeDefense-Server/internal/economy"
	"github.com/jacl-coder/HomeDefense-Server/internal/models"
	"github.com/jacl-coder/HomeDefense-Server/internal/storage"
)

// CombatResult 单个家园的战斗结算结果
type CombatResult struct {
	HomeID          string         `json:"home_id"`
	MonsterType     string         `json:"monster_type,omitempty"`
	MonsterLevel    int            `json:"monster_level,omitempty"`
	Outcome         models.Outcome `json:"outcome,omitempty"`
	DamageDealt     int            `json:"damage_dealt"`
	DamageReceived  int            `json:"damage_received"`
	ResourcesGained int            `json:"resources_gained"`
	RemainingHealth int            `json:"remaining_health"`
	RemainingShield int            `json:"remaining_shield"`
	// Skipped 重新读取时家园已被摧毁
	Skipped bool   `json:"skipped,omitempty"`
	Err     error  `json:"-"`
	Error   string `json:"error,omitempty"`
}

// CombatTickResult 一次战斗结算的汇总
type CombatTickResult struct {
	ProcessedCount int            `json:"processed_count"`
	FailedCount    int            `json:"failed_count"`
	Results        []CombatResult `json:"results"`
}

// Encounter 一次怪物袭击的计算结果
type Encounter struct {
	MonsterType     string
	MonsterLevel    int
	MonsterDamage   int
	PlayerDamage    int
	PlayerWins      bool
	IncomingDamage  int
	ResourcesGained int
	Shield          int
	Health          int
	Resources       int
}

// ResolveCombat 计算家园与怪物的战斗，draw 为怪物名单中的下标
func ResolveCombat(h models.Home, now time.Time, draw int) Encounter {
	level := economy.MonsterLevel(h.AgeDays(now))
	enc := Encounter{
		MonsterType:   economy.MonsterName(level, draw),
		MonsterLevel:  level,
		MonsterDamage: economy.MonsterDamage(level),
		PlayerDamage:  economy.WeaponDamage(h.WeaponLevel),
	}
	enc.PlayerWins = enc.PlayerDamage >= enc.MonsterDamage
	if enc.PlayerWins {
		enc.ResourcesGained = level * 10
		enc.IncomingDamage = enc.MonsterDamage / 2
	} else {
		enc.IncomingDamage = enc.MonsterDamage
	}

	// 护盾先承受伤害，剩余伤害扣除生命值
	shield := max(h.Shield, 0)
	shieldLoss := min(enc.IncomingDamage, shield)
	healthLoss := enc.IncomingDamage - shieldLoss
	enc.Shield = shield - shieldLoss
	enc.Health = max(h.Health-healthLoss, 0)
	enc.Resources = h.Resources + enc.ResourcesGained
	return enc
}

// Patch 战斗后需要写回的字段
func (enc Encounter) Patch() models.HomePatch {
	return models.HomePatch{
		Shield:    models.Int(enc.Shield),
		Health:    models.Int(enc.Health),
		Resources: models.Int(enc.Resources),
	}
}

// AttackLog 生成袭击记录
func (enc Encounter) AttackLog(homeID string, now time.Time) models.AttackLog {
	outcome := models.OutcomeDefeat
	if enc.PlayerWins {
		outcome = models.OutcomeVictory
	}
	return models.AttackLog{
		HomeID:          homeID,
		CreatedAt:       now,
		AttackerType:    enc.MonsterType,
		AttackerLevel:   enc.MonsterLevel,
		DamageDealt:     enc.PlayerDamage,
		DamageReceived:  enc.IncomingDamage,
		ResourcesGained: enc.ResourcesGained,
		Outcome:         outcome,
	}
}

// RunCombatTick 对所有未被摧毁的家园结算一次怪物袭击
func (e *Engine) RunCombatTick(ctx context.Context) (CombatTickResult, error) {
	homes, err := e.store.ListActiveHomes(ctx)
	if err != nil {
		return CombatTickResult{}, fmt.Errorf("list active homes: %w", err)
	}

	now := e.now()
	// 在进入并发前按顺序抽取怪物，固定种子时结果可复现
	draws := make([]int, len(homes))
	for i, h := range homes {
		draws[i] = e.dice.Intn(economy.RosterSize(economy.MonsterLevel(h.AgeDays(now))))
	}

	results := runBatch(ctx, e, homes, func(ctx context.Context, i int, home models.Home) CombatResult {
		return e.attackHome(ctx, home, now, draws[i])
	})

	summary := CombatTickResult{Results: results}
	for _, r := range results {
		summary.ProcessedCount++
		if r.Err != nil {
			summary.FailedCount++
		}
	}
	if summary.FailedCount > 0 {
		log.Printf("战斗结算完成: %d 个家园, %d 个失败", summary.ProcessedCount, summary.FailedCount)
	}
	return summary, nil
}

func (e *Engine) attackHome(ctx context.Context, home models.Home, now time.Time, draw int) CombatResult {
	recorder, atomic := e.store.(storage.AttackRecorder)

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			current, err := e.store.GetHome(ctx, home.ID)
			if err != nil {
				return e.combatFailed(home.ID, err)
			}
			home = current
		}
		if home.IsDestroyed() {
			return CombatResult{HomeID: home.ID, Skipped: true}
		}

		enc := ResolveCombat(home, now, draw)
		entry := enc.AttackLog(home.ID, now)

		var updated models.Home
		var err error
		if atomic {
			updated, _, err = recorder.RecordAttack(ctx, home.ID, enc.Patch(), home.Version, entry)
			if errors.Is(err, storage.ErrConflict) {
				continue
			}
		} else {
			// 袭击记录写入失败时不更新家园
			if _, err = e.store.AppendAttackLog(ctx, entry); err != nil {
				return e.combatFailed(home.ID, fmt.Errorf("append attack log: %w", err))
			}
			updated, err = e.store.UpdateHome(ctx, home.ID, enc.Patch(), home.Version)
		}
		if err != nil {
			return e.combatFailed(home.ID, err)
		}

		e.notify(ctx, updated)
		return CombatResult{
			HomeID:          home.ID,
			MonsterType:     enc.MonsterType,
			MonsterLevel:    enc.MonsterLevel,
			Outcome:         entry.Outcome,
			DamageDealt:     enc.PlayerDamage,
			DamageReceived:  enc.IncomingDamage,
			ResourcesGained: enc.ResourcesGained,
			RemainingHealth: updated.Health,
			RemainingShield: updated.Shield,
		}
	}
	return e.combatFailed(home.ID, fmt.Errorf("%w after %d attempts", ErrTooManyConflicts, e.maxRetries+1))
}

func (e *Engine) combatFailed(homeID string, err error) CombatResult {
	log.Printf("家园 %s 战斗结算失败: %v", homeID, err)
	return CombatResult{HomeID: homeID, Err: err, Error: err.Error()}
}
