// Package leaderboard Redis 排行榜，按资源和武器等级给家园排名。
package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/jacl-coder/HomeDefense-Server/internal/models"
)

// Kind 排行榜类型
type Kind string

const (
	// KindResources 按资源排名
	KindResources Kind = "resources"
	// KindWeapon 按武器等级排名
	KindWeapon Kind = "weapon"
)

// 排行榜Redis键名
const (
	ResourcesKey = "homedefense:leaderboard:resources"
	WeaponKey    = "homedefense:leaderboard:weapon"
)

// 默认与最大返回条数
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ErrUnknownKind 不支持的排行榜类型
var ErrUnknownKind = errors.New("unknown leaderboard kind")

// Entry 排行榜条目
type Entry struct {
	Rank   int     `json:"rank"`
	HomeID string  `json:"home_id"`
	Score  float64 `json:"score"`
}

// Client 排行榜用到的 Redis 命令，*redis.Client 满足该接口
type Client interface {
	ZAdd(ctx context.Context, key string, members ...*redis.Z) *redis.IntCmd
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) *redis.ZSliceCmd
	ZRevRank(ctx context.Context, key, member string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Board Redis排行榜
type Board struct {
	client Client
}

// New 创建排行榜
func New(client Client) *Board {
	return &Board{client: client}
}

// ParseKind 解析排行榜类型，空字符串按资源排名
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", KindResources:
		return KindResources, nil
	case KindWeapon:
		return KindWeapon, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

func keyFor(kind Kind) (string, error) {
	switch kind {
	case KindResources:
		return ResourcesKey, nil
	case KindWeapon:
		return WeaponKey, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// HomeChanged 家园写入后更新两个排行榜
func (b *Board) HomeChanged(ctx context.Context, home models.Home) error {
	if err := b.client.ZAdd(ctx, ResourcesKey, &redis.Z{Score: float64(home.Resources), Member: home.ID}).Err(); err != nil {
		return fmt.Errorf("update resources leaderboard: %w", err)
	}
	if err := b.client.ZAdd(ctx, WeaponKey, &redis.Z{Score: float64(home.WeaponLevel), Member: home.ID}).Err(); err != nil {
		return fmt.Errorf("update weapon leaderboard: %w", err)
	}
	return nil
}

// Top 按分数降序返回前 limit 名
func (b *Board) Top(ctx context.Context, kind Kind, limit int) ([]Entry, error) {
	key, err := keyFor(kind)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	members, err := b.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard %s: %w", kind, err)
	}

	entries := make([]Entry, 0, len(members))
	for i, member := range members {
		id, ok := member.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Rank: i + 1, HomeID: id, Score: member.Score})
	}
	return entries, nil
}

// Rank 获取家园排名，从1开始；不在榜上时返回 -1
func (b *Board) Rank(ctx context.Context, kind Kind, homeID string) (int, error) {
	key, err := keyFor(kind)
	if err != nil {
		return -1, err
	}
	rank, err := b.client.ZRevRank(ctx, key, homeID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, fmt.Errorf("read rank %s: %w", kind, err)
	}
	return int(rank) + 1, nil
}

// Rebuild 清空排行榜并用给定家园重新填充
func (b *Board) Rebuild(ctx context.Context, homes []models.Home) error {
	if err := b.client.Del(ctx, ResourcesKey, WeaponKey).Err(); err != nil {
		return fmt.Errorf("clear leaderboard: %w", err)
	}
	for _, home := range homes {
		if err := b.HomeChanged(ctx, home); err != nil {
			return err
		}
	}
	return nil
}
