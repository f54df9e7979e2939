package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/jacl-coder/HomeDefense-Server/internal/models"
	"github.com/jacl-coder/HomeDefense-Server/internal/storage"
)

// Reason 命令未生效的原因
type Reason string

const (
	// ReasonNone 命令已生效
	ReasonNone Reason = ""
	// ReasonUnaffordable 资源不足
	ReasonUnaffordable Reason = "unaffordable"
	// ReasonAlreadyFull 已满，无需修理
	ReasonAlreadyFull Reason = "already_full"
	// ReasonNotDestroyed 家园未被摧毁，不能重置
	ReasonNotDestroyed Reason = "not_destroyed"
	// ReasonDestroyed 家园已被摧毁，只能重置
	ReasonDestroyed Reason = "destroyed"
)

// CommandResult 命令结果：Applied 为 true 时 Home 是写入后的状态，
// 否则 Home 是未修改的当前状态，Reason 说明原因
type CommandResult struct {
	Home    models.Home `json:"home"`
	Applied bool        `json:"applied"`
	Reason  Reason      `json:"reason,omitempty"`
}

// decideFunc 根据当前状态计算补丁，返回非空 Reason 表示不写入
type decideFunc func(home models.Home) (models.HomePatch, Reason)

// mutateHome 读取、校验、条件写入；版本冲突时重新读取并重新校验。
// seed 不为空时首轮使用它代替一次读取。
func (e *Engine) mutateHome(ctx context.Context, id string, seed *models.Home, decide decideFunc) (CommandResult, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		var home models.Home
		if attempt == 0 && seed != nil {
			home = *seed
		} else {
			current, err := e.store.GetHome(ctx, id)
			if err != nil {
				return CommandResult{}, err
			}
			home = current
		}

		patch, reason := decide(home)
		if reason != ReasonNone {
			return CommandResult{Home: home, Reason: reason}, nil
		}

		updated, err := e.store.UpdateHome(ctx, id, patch, home.Version)
		if err == nil {
			e.notify(ctx, updated)
			return CommandResult{Home: updated, Applied: true}, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return CommandResult{Home: home}, err
		}
		lastErr = err
	}
	return CommandResult{}, fmt.Errorf("%w after %d attempts: %w", ErrTooManyConflicts, e.maxRetries+1, lastErr)
}
