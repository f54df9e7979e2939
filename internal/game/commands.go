package game

import (
	"context"
	"fmt"

	"github.com/jacl-coder/HomeDefense-Server/internal/economy"
	"github.com/jacl-coder/HomeDefense-Server/internal/models"
)

// RepairHealth 花费资源将生命值修满
func (e *Engine) RepairHealth(ctx context.Context, homeID string) (CommandResult, error) {
	return e.command(ctx, "repair health", homeID, decideRepairHealth)
}

// RepairShield 花费资源将护盾修满
func (e *Engine) RepairShield(ctx context.Context, homeID string) (CommandResult, error) {
	return e.command(ctx, "repair shield", homeID, decideRepairShield)
}

// UpgradeWeapon 武器升一级
func (e *Engine) UpgradeWeapon(ctx context.Context, homeID string) (CommandResult, error) {
	return e.command(ctx, "upgrade weapon", homeID, decideUpgradeWeapon)
}

// UpgradeDefense 防御升一级，并将护盾补满到新的上限
func (e *Engine) UpgradeDefense(ctx context.Context, homeID string) (CommandResult, error) {
	return e.command(ctx, "upgrade defense", homeID, decideUpgradeDefense)
}

// ResetGame 被摧毁的家园恢复为初始状态
func (e *Engine) ResetGame(ctx context.Context, homeID string) (CommandResult, error) {
	now := e.now()
	return e.command(ctx, "reset game", homeID, func(h models.Home) (models.HomePatch, Reason) {
		if !h.IsDestroyed() {
			return models.HomePatch{}, ReasonNotDestroyed
		}
		return models.ResetPatch(now), ReasonNone
	})
}

func (e *Engine) command(ctx context.Context, op, homeID string, decide decideFunc) (CommandResult, error) {
	result, err := e.mutateHome(ctx, homeID, nil, decide)
	if err != nil {
		return result, fmt.Errorf("%s %s: %w", op, homeID, err)
	}
	return result, nil
}

func decideRepairHealth(h models.Home) (models.HomePatch, Reason) {
	if h.IsDestroyed() {
		return models.HomePatch{}, ReasonDestroyed
	}
	if h.Health >= models.MaxHealth {
		return models.HomePatch{}, ReasonAlreadyFull
	}
	cost := economy.HealthRepairCost(h.Health)
	if h.Resources < cost {
		return models.HomePatch{}, ReasonUnaffordable
	}
	return models.HomePatch{
		Health:    models.Int(models.MaxHealth),
		Resources: models.Int(h.Resources - cost),
	}, ReasonNone
}

func decideRepairShield(h models.Home) (models.HomePatch, Reason) {
	if h.IsDestroyed() {
		return models.HomePatch{}, ReasonDestroyed
	}
	maxShield := economy.MaxShield(h.DefenseLevel)
	if h.Shield >= maxShield {
		return models.HomePatch{}, ReasonAlreadyFull
	}
	cost := economy.ShieldRepairCost(h.Shield, maxShield)
	if h.Resources < cost {
		return models.HomePatch{}, ReasonUnaffordable
	}
	return models.HomePatch{
		Shield:    models.Int(maxShield),
		Resources: models.Int(h.Resources - cost),
	}, ReasonNone
}

func decideUpgradeWeapon(h models.Home) (models.HomePatch, Reason) {
	if h.IsDestroyed() {
		return models.HomePatch{}, ReasonDestroyed
	}
	cost := economy.WeaponUpgradeCost(h.WeaponLevel)
	if h.Resources < cost {
		return models.HomePatch{}, ReasonUnaffordable
	}
	return models.HomePatch{
		WeaponLevel: models.Int(h.WeaponLevel + 1),
		Resources:   models.Int(h.Resources - cost),
	}, ReasonNone
}

func decideUpgradeDefense(h models.Home) (models.HomePatch, Reason) {
	if h.IsDestroyed() {
		return models.HomePatch{}, ReasonDestroyed
	}
	cost := economy.DefenseUpgradeCost(h.DefenseLevel)
	if h.Resources < cost {
		return models.HomePatch{}, ReasonUnaffordable
	}
	next := h.DefenseLevel + 1
	return models.HomePatch{
		DefenseLevel: models.Int(next),
		Shield:       models.Int(economy.MaxShield(next)),
		Resources:    models.Int(h.Resources - cost),
	}, ReasonNone
}
