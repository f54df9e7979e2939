// Package sqlstore 基于 database/sql 的家园存储，支持 PostgreSQL 与 SQLite。
// 条件更新通过 version 列实现：UPDATE ... WHERE id = ? AND version = ?。
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jacl-coder/HomeDefense-Server/internal/models"
	"github.com/jacl-coder/HomeDefense-Server/internal/storage"
	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const homeColumns = `id, created_at, last_reset_at, health, shield, weapon_level, defense_level, resources, version`

const logColumns = `id, user_id, created_at, attacker_type, attacker_level, damage_dealt, damage_received, resources_gained, outcome`

// Store SQL家园存储
type Store struct {
	db      *sql.DB
	dialect Dialect
	clk     func() time.Time
}

// New 创建SQL存储，表结构由 pkg/db 负责初始化
func New(conn *sql.DB, dialect Dialect) *Store {
	return &Store{
		db:      conn,
		dialect: dialect,
		clk:     time.Now,
	}
}

// WithClock 替换袭击记录的时间来源
func (s *Store) WithClock(clock func() time.Time) *Store {
	if clock != nil {
		s.clk = clock
	}
	return s
}

// queryer 同时适配 *sql.DB 与 *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) CreateHome(ctx context.Context, home models.Home) (models.Home, error) {
	if strings.TrimSpace(home.ID) == "" {
		return models.Home{}, fmt.Errorf("home id is required")
	}
	home.Version = 1

	_, err := s.db.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO user_homes (`+homeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		home.ID,
		s.dialect.timeArg(home.CreatedAt),
		s.dialect.timeArg(home.LastResetAt),
		home.Health,
		home.Shield,
		home.WeaponLevel,
		home.DefenseLevel,
		home.Resources,
		home.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Home{}, storage.ErrAlreadyExists
		}
		return models.Home{}, storage.Unavailable("create home", err)
	}
	return s.GetHome(ctx, home.ID)
}

func (s *Store) GetHome(ctx context.Context, id string) (models.Home, error) {
	return s.getHome(ctx, s.db, id)
}

func (s *Store) getHome(ctx context.Context, q queryer, id string) (models.Home, error) {
	row := q.QueryRowContext(ctx, s.dialect.rebind(`SELECT `+homeColumns+` FROM user_homes WHERE id = ?`), id)
	home, err := scanHome(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Home{}, storage.ErrNotFound
		}
		return models.Home{}, storage.Unavailable("get home", err)
	}
	return home, nil
}

func (s *Store) UpdateHome(ctx context.Context, id string, patch models.HomePatch, expectedVersion int64) (models.Home, error) {
	return s.updateHome(ctx, s.db, id, patch, expectedVersion)
}

func (s *Store) updateHome(ctx context.Context, q queryer, id string, patch models.HomePatch, expectedVersion int64) (models.Home, error) {
	sets, args := s.patchAssignments(patch)
	sets = append(sets, "version = version + 1")
	args = append(args, id, expectedVersion)

	query := `UPDATE user_homes SET ` + strings.Join(sets, ", ") +
		` WHERE id = ? AND version = ? RETURNING ` + homeColumns
	row := q.QueryRowContext(ctx, s.dialect.rebind(query), args...)
	home, err := scanHome(row)
	if err == nil {
		return home, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Home{}, storage.Unavailable("update home", err)
	}

	// 没有命中行：区分记录不存在与版本冲突
	if _, getErr := s.getHome(ctx, q, id); getErr != nil {
		return models.Home{}, getErr
	}
	return models.Home{}, storage.ErrConflict
}

func (s *Store) patchAssignments(patch models.HomePatch) ([]string, []any) {
	var sets []string
	var args []any
	if patch.Health != nil {
		sets = append(sets, "health = ?")
		args = append(args, *patch.Health)
	}
	if patch.Shield != nil {
		sets = append(sets, "shield = ?")
		args = append(args, *patch.Shield)
	}
	if patch.WeaponLevel != nil {
		sets = append(sets, "weapon_level = ?")
		args = append(args, *patch.WeaponLevel)
	}
	if patch.DefenseLevel != nil {
		sets = append(sets, "defense_level = ?")
		args = append(args, *patch.DefenseLevel)
	}
	if patch.Resources != nil {
		sets = append(sets, "resources = ?")
		args = append(args, *patch.Resources)
	}
	if patch.LastResetAt != nil {
		sets = append(sets, "last_reset_at = ?")
		args = append(args, s.dialect.timeArg(*patch.LastResetAt))
	}
	return sets, args
}

func (s *Store) ListActiveHomes(ctx context.Context) ([]models.Home, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+homeColumns+` FROM user_homes WHERE health > 0 ORDER BY id`)
	if err != nil {
		return nil, storage.Unavailable("list homes", err)
	}
	defer rows.Close()

	var homes []models.Home
	for rows.Next() {
		home, err := scanHome(rows)
		if err != nil {
			return nil, storage.Unavailable("scan home", err)
		}
		homes = append(homes, home)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable("list homes", err)
	}
	return homes, nil
}

func (s *Store) AppendAttackLog(ctx context.Context, entry models.AttackLog) (models.AttackLog, error) {
	return s.appendAttackLog(ctx, s.db, entry)
}

func (s *Store) appendAttackLog(ctx context.Context, q queryer, entry models.AttackLog) (models.AttackLog, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clk()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	_, err := q.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO attack_logs (`+logColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		entry.ID,
		entry.HomeID,
		s.dialect.timeArg(entry.CreatedAt),
		entry.AttackerType,
		entry.AttackerLevel,
		entry.DamageDealt,
		entry.DamageReceived,
		entry.ResourcesGained,
		string(entry.Outcome),
	)
	if err != nil {
		return models.AttackLog{}, storage.Unavailable("append attack log", err)
	}
	return entry, nil
}

func (s *Store) ListAttackLogs(ctx context.Context, homeID string, limit int) ([]models.AttackLog, error) {
	query := `SELECT ` + logColumns + ` FROM attack_logs WHERE user_id = ? ORDER BY created_at DESC, id`
	args := []any{homeID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, storage.Unavailable("list attack logs", err)
	}
	defer rows.Close()

	logs := make([]models.AttackLog, 0)
	for rows.Next() {
		var entry models.AttackLog
		var outcome string
		if err := rows.Scan(
			&entry.ID, &entry.HomeID, dbTime{&entry.CreatedAt}, &entry.AttackerType, &entry.AttackerLevel,
			&entry.DamageDealt, &entry.DamageReceived, &entry.ResourcesGained, &outcome,
		); err != nil {
			return nil, storage.Unavailable("scan attack log", err)
		}
		entry.Outcome = models.Outcome(outcome)
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable("list attack logs", err)
	}
	return logs, nil
}

// RecordAttack 在一个事务中写入袭击记录并更新家园，任一步失败都会回滚
func (s *Store) RecordAttack(ctx context.Context, id string, patch models.HomePatch, expectedVersion int64, entry models.AttackLog) (models.Home, models.AttackLog, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Home{}, models.AttackLog{}, storage.Unavailable("begin tx", err)
	}
	defer tx.Rollback()

	logged, err := s.appendAttackLog(ctx, tx, entry)
	if err != nil {
		return models.Home{}, models.AttackLog{}, err
	}
	home, err := s.updateHome(ctx, tx, id, patch, expectedVersion)
	if err != nil {
		return models.Home{}, models.AttackLog{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Home{}, models.AttackLog{}, storage.Unavailable("commit tx", err)
	}
	return home, logged, nil
}

func scanHome(row rowScanner) (models.Home, error) {
	var home models.Home
	err := row.Scan(
		&home.ID,
		dbTime{&home.CreatedAt},
		dbTime{&home.LastResetAt},
		&home.Health,
		&home.Shield,
		&home.WeaponLevel,
		&home.DefenseLevel,
		&home.Resources,
		&home.Version,
	)
	return home, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var (
	_ storage.HomeStore      = (*Store)(nil)
	_ storage.AttackRecorder = (*Store)(nil)
)
