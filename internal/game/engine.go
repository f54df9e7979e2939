package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jacl-coder/HomeDefense-Server/internal/economy"
	"github.com/jacl-coder/HomeDefense-Server/internal/models"
	"github.com/jacl-coder/HomeDefense-Server/internal/storage"
)

// 默认引擎参数
const (
	DefaultMaxRetries     = 3
	DefaultTickTimeout    = 5 * time.Second
	DefaultTickWorkers    = 8
	DefaultAttackLogLimit = 10
	MaxAttackLogLimit     = 100
)

// ErrTooManyConflicts 重试次数用尽仍然版本冲突
var ErrTooManyConflicts = errors.New("too many concurrent updates")

// Dice 随机数来源，用于选择怪物
type Dice interface {
	Intn(n int) int
}

// HomeObserver 家园写入成功后的回调，例如排行榜
type HomeObserver interface {
	HomeChanged(ctx context.Context, home models.Home) error
}

// Engine 游戏模拟引擎，所有家园写入都经过版本号条件更新
type Engine struct {
	store    storage.HomeStore
	clock    func() time.Time
	dice     Dice
	observer HomeObserver

	maxRetries     int
	tickTimeout    time.Duration
	workers        int
	attackLogLimit int
}

// Option 引擎配置项
type Option func(*Engine)

// WithClock 替换时间来源
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithDice 替换随机数来源
func WithDice(dice Dice) Option {
	return func(e *Engine) {
		if dice != nil {
			e.dice = dice
		}
	}
}

// WithObserver 设置写入回调
func WithObserver(observer HomeObserver) Option {
	return func(e *Engine) {
		e.observer = observer
	}
}

// WithMaxRetries 版本冲突时的最大重试次数
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// WithTickTimeout 单个家园结算的超时时间
func WithTickTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tickTimeout = d
		}
	}
}

// WithWorkers 结算并发数
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithAttackLogLimit 默认返回的袭击记录条数
func WithAttackLogLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.attackLogLimit = n
		}
	}
}

// NewEngine 创建游戏引擎
func NewEngine(store storage.HomeStore, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("home store is required")
	}
	e := &Engine{
		store:          store,
		clock:          time.Now,
		maxRetries:     DefaultMaxRetries,
		tickTimeout:    DefaultTickTimeout,
		workers:        DefaultTickWorkers,
		attackLogLimit: DefaultAttackLogLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.dice == nil {
		e.dice = NewDice(time.Now().UnixNano())
	}
	return e, nil
}

// lockedDice 并发安全的随机数来源
type lockedDice struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDice 创建指定种子的随机数来源
func NewDice(seed int64) Dice {
	return &lockedDice{rng: rand.New(rand.NewSource(seed))}
}

func (d *lockedDice) Intn(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Intn(n)
}

func (e *Engine) now() time.Time {
	return e.clock().UTC()
}

// ProvisionHome 创建新的家园，id 为空时自动生成
func (e *Engine) ProvisionHome(ctx context.Context, id string) (models.Home, error) {
	if id == "" {
		id = uuid.NewString()
	}
	home, err := e.store.CreateHome(ctx, models.NewHome(id, e.now()))
	if err != nil {
		return models.Home{}, fmt.Errorf("provision home %s: %w", id, err)
	}
	e.notify(ctx, home)
	return home, nil
}

// GetHome 读取家园
func (e *Engine) GetHome(ctx context.Context, id string) (models.Home, error) {
	home, err := e.store.GetHome(ctx, id)
	if err != nil {
		return models.Home{}, fmt.Errorf("get home %s: %w", id, err)
	}
	return home, nil
}

// HomeStatus 读取家园及其派生属性
func (e *Engine) HomeStatus(ctx context.Context, id string) (economy.HomeStatus, error) {
	home, err := e.GetHome(ctx, id)
	if err != nil {
		return economy.HomeStatus{}, err
	}
	return economy.Describe(home, e.now()), nil
}

// GetAttackLogs 按时间倒序读取袭击记录，limit <= 0 时使用默认条数
func (e *Engine) GetAttackLogs(ctx context.Context, homeID string, limit int) ([]models.AttackLog, error) {
	if limit <= 0 {
		limit = e.attackLogLimit
	}
	if limit > MaxAttackLogLimit {
		limit = MaxAttackLogLimit
	}
	if _, err := e.GetHome(ctx, homeID); err != nil {
		return nil, err
	}
	logs, err := e.store.ListAttackLogs(ctx, homeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attack logs %s: %w", homeID, err)
	}
	return logs, nil
}

// notify 回调失败只记录日志，不影响写入结果
func (e *Engine) notify(ctx context.Context, home models.Home) {
	if e.observer == nil {
		return
	}
	if err := e.observer.HomeChanged(ctx, home); err != nil {
		log.Printf("家园 %s 更新回调失败: %v", home.ID, err)
	}
}
