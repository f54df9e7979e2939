// Package memory 进程内的家园存储，按版本号做条件更新。
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jacl-coder/HomeDefense-Server/internal/models"
	"github.com/jacl-coder/HomeDefense-Server/internal/storage"
)

// Store 内存存储，所有读写串行化在一把锁上
type Store struct {
	mu    sync.RWMutex
	homes map[string]models.Home
	logs  []models.AttackLog
	clk   func() time.Time
}

// NewStore 创建内存存储
func NewStore() *Store {
	return &Store{
		homes: make(map[string]models.Home),
		clk:   time.Now,
	}
}

// WithClock 替换袭击记录的时间来源
func (s *Store) WithClock(clock func() time.Time) *Store {
	if clock != nil {
		s.clk = clock
	}
	return s
}

// Put 直接写入一条家园记录，供测试和初始化使用
func (s *Store) Put(home models.Home) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if home.Version == 0 {
		home.Version = 1
	}
	s.homes[home.ID] = home
}

func (s *Store) CreateHome(ctx context.Context, home models.Home) (models.Home, error) {
	if err := ctx.Err(); err != nil {
		return models.Home{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.homes[home.ID]; exists {
		return models.Home{}, storage.ErrAlreadyExists
	}
	home.Version = 1
	s.homes[home.ID] = home
	return home, nil
}

func (s *Store) GetHome(ctx context.Context, id string) (models.Home, error) {
	if err := ctx.Err(); err != nil {
		return models.Home{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	home, ok := s.homes[id]
	if !ok {
		return models.Home{}, storage.ErrNotFound
	}
	return home, nil
}

func (s *Store) UpdateHome(ctx context.Context, id string, patch models.HomePatch, expectedVersion int64) (models.Home, error) {
	if err := ctx.Err(); err != nil {
		return models.Home{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(id, patch, expectedVersion)
}

func (s *Store) ListActiveHomes(ctx context.Context) ([]models.Home, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	homes := make([]models.Home, 0, len(s.homes))
	for _, home := range s.homes {
		if home.Health > 0 {
			homes = append(homes, home)
		}
	}
	sort.Slice(homes, func(i, j int) bool { return homes[i].ID < homes[j].ID })
	return homes, nil
}

func (s *Store) AppendAttackLog(ctx context.Context, entry models.AttackLog) (models.AttackLog, error) {
	if err := ctx.Err(); err != nil {
		return models.AttackLog{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendLog(entry), nil
}

func (s *Store) ListAttackLogs(ctx context.Context, homeID string, limit int) ([]models.AttackLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]models.AttackLog, 0)
	// 倒序遍历，后写入的记录排在前面
	for i := len(s.logs) - 1; i >= 0; i-- {
		if s.logs[i].HomeID == homeID {
			logs = append(logs, s.logs[i])
		}
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].CreatedAt.After(logs[j].CreatedAt) })
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// RecordAttack 在同一临界区内写入袭击记录和家园更新
func (s *Store) RecordAttack(ctx context.Context, id string, patch models.HomePatch, expectedVersion int64, entry models.AttackLog) (models.Home, models.AttackLog, error) {
	if err := ctx.Err(); err != nil {
		return models.Home{}, models.AttackLog{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// 先校验版本，失败时不留下袭击记录
	current, ok := s.homes[id]
	if !ok {
		return models.Home{}, models.AttackLog{}, storage.ErrNotFound
	}
	if current.Version != expectedVersion {
		return models.Home{}, models.AttackLog{}, storage.ErrConflict
	}

	logged := s.appendLog(entry)
	home, err := s.update(id, patch, expectedVersion)
	if err != nil {
		return models.Home{}, models.AttackLog{}, err
	}
	return home, logged, nil
}

// update 调用方需持有写锁
func (s *Store) update(id string, patch models.HomePatch, expectedVersion int64) (models.Home, error) {
	current, ok := s.homes[id]
	if !ok {
		return models.Home{}, storage.ErrNotFound
	}
	if current.Version != expectedVersion {
		return models.Home{}, storage.ErrConflict
	}

	next := patch.Apply(current)
	next.Version = current.Version + 1
	s.homes[id] = next
	return next, nil
}

// appendLog 调用方需持有写锁
func (s *Store) appendLog(entry models.AttackLog) models.AttackLog {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clk()
	}
	s.logs = append(s.logs, entry)
	return entry
}

var (
	_ storage.HomeStore      = (*Store)(nil)
	_ storage.AttackRecorder = (*Store)(nil)
)
