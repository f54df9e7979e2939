package game

import (
	"context"
	"fmt"
	"log"

	"github.com/jacl-coder/HomeDefense-Server/internal/economy"
	"github.com/jacl-coder/HomeDefense-Server/internal/models"
)

// RegenStatus 护盾回复结果
type RegenStatus string

const (
	// RegenApplied 护盾已回复
	RegenApplied RegenStatus = "applied"
	// RegenAtCap 护盾已满，未写入
	RegenAtCap RegenStatus = "at_cap"
	// RegenSkipped 重新读取时家园已被摧毁
	RegenSkipped RegenStatus = "skipped"
	// RegenFailed 写入失败
	RegenFailed RegenStatus = "failed"
)

// RegenResult 单个家园的护盾回复结果
type RegenResult struct {
	HomeID         string      `json:"home_id"`
	Status         RegenStatus `json:"status"`
	PreviousShield int         `json:"previous_shield"`
	NewShield      int         `json:"new_shield"`
	Regenerated    int         `json:"regenerated"`
	Err            error       `json:"-"`
	Error          string      `json:"error,omitempty"`
}

// RegenTickResult 一次护盾回复的汇总
type RegenTickResult struct {
	ProcessedCount int           `json:"processed_count"`
	FailedCount    int           `json:"failed_count"`
	Results        []RegenResult `json:"results"`
}

// RegenShield 计算一次回复后的护盾值，已满时返回 false
func RegenShield(h models.Home) (int, bool) {
	maxShield := economy.MaxShield(h.DefenseLevel)
	if h.Shield >= maxShield {
		return h.Shield, false
	}
	return min(h.Shield+economy.ShieldRegenRate(h.DefenseLevel), maxShield), true
}

// RunRegenTick 为所有未被摧毁且护盾未满的家园回复护盾
func (e *Engine) RunRegenTick(ctx context.Context) (RegenTickResult, error) {
	homes, err := e.store.ListActiveHomes(ctx)
	if err != nil {
		return RegenTickResult{}, fmt.Errorf("list active homes: %w", err)
	}

	results := runBatch(ctx, e, homes, func(ctx context.Context, _ int, home models.Home) RegenResult {
		return e.regenHome(ctx, home)
	})

	summary := RegenTickResult{Results: results}
	for _, r := range results {
		summary.ProcessedCount++
		if r.Status == RegenFailed {
			summary.FailedCount++
		}
	}
	if summary.FailedCount > 0 {
		log.Printf("护盾回复完成: %d 个家园, %d 个失败", summary.ProcessedCount, summary.FailedCount)
	}
	return summary, nil
}

func (e *Engine) regenHome(ctx context.Context, home models.Home) RegenResult {
	var previous int
	var destroyed bool
	res, err := e.mutateHome(ctx, home.ID, &home, func(h models.Home) (models.HomePatch, Reason) {
		previous = h.Shield
		destroyed = h.IsDestroyed()
		if destroyed {
			return models.HomePatch{}, ReasonDestroyed
		}
		shield, ok := RegenShield(h)
		if !ok {
			return models.HomePatch{}, ReasonAlreadyFull
		}
		return models.HomePatch{Shield: models.Int(shield)}, ReasonNone
	})
	if err != nil {
		log.Printf("家园 %s 护盾回复失败: %v", home.ID, err)
		return RegenResult{HomeID: home.ID, Status: RegenFailed, PreviousShield: previous, NewShield: previous, Err: err, Error: err.Error()}
	}

	result := RegenResult{HomeID: home.ID, PreviousShield: previous, NewShield: res.Home.Shield}
	switch {
	case res.Applied:
		result.Status = RegenApplied
		result.Regenerated = res.Home.Shield - previous
	case destroyed:
		result.Status = RegenSkipped
	default:
		result.Status = RegenAtCap
	}
	return result
}
