// Package storage 定义家园记录的存储接口。
package storage

import (
	"context"
	"errors"

	"github.com/jacl-coder/HomeDefense-Server/internal/models"
)

//go:generate go tool mockgen -destination=mock/mock_storage.go -package=mock . HomeStore,AttackRecorder

var (
	// ErrNotFound 家园不存在
	ErrNotFound = errors.New("home not found")
	// ErrConflict 版本号不匹配，记录已被并发修改
	ErrConflict = errors.New("home version conflict")
	// ErrAlreadyExists 家园已存在
	ErrAlreadyExists = errors.New("home already exists")
	// ErrUnavailable 存储读写失败
	ErrUnavailable = errors.New("store unavailable")
)

// HomeStore 家园与袭击记录的存储
type HomeStore interface {
	// CreateHome 创建初始状态的家园
	CreateHome(ctx context.Context, home models.Home) (models.Home, error)

	// GetHome 按ID读取家园
	GetHome(ctx context.Context, id string) (models.Home, error)

	// UpdateHome 当存储中的版本等于 expectedVersion 时写入补丁，并递增版本号
	UpdateHome(ctx context.Context, id string, patch models.HomePatch, expectedVersion int64) (models.Home, error)

	// ListActiveHomes 列出所有 health > 0 的家园
	ListActiveHomes(ctx context.Context) ([]models.Home, error)

	// AppendAttackLog 追加一条袭击记录
	AppendAttackLog(ctx context.Context, entry models.AttackLog) (models.AttackLog, error)

	// ListAttackLogs 按创建时间倒序列出家园的袭击记录
	ListAttackLogs(ctx context.Context, homeID string, limit int) ([]models.AttackLog, error)
}

// AttackRecorder 支持在同一事务中写入袭击记录和家园更新的存储
type AttackRecorder interface {
	RecordAttack(ctx context.Context, id string, patch models.HomePatch, expectedVersion int64, entry models.AttackLog) (models.Home, models.AttackLog, error)
}

// Unavailable 将底层错误包装为 ErrUnavailable
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// StoreError 存储层错误
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "store " + e.Op + ": " + e.Err.Error()
}

// Unwrap 同时匹配 ErrUnavailable 与底层错误
func (e *StoreError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}
