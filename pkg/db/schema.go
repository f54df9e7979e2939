// schema.go

package db

import (
	"database/sql"
	"fmt"

	"github.com/jacl-coder/HomeDefense-Server/config"
)

// 统一的数据库表结构定义

// PostgresSchemaSQL PostgreSQL表结构
const PostgresSchemaSQL = `
-- 玩家家园表
CREATE TABLE IF NOT EXISTS user_homes (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_reset_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
    health INT NOT NULL DEFAULT 100 CHECK (health BETWEEN 0 AND 100),
    shield INT NOT NULL DEFAULT 50 CHECK (shield >= 0),
    weapon_level INT NOT NULL DEFAULT 1 CHECK (weapon_level >= 1),
    defense_level INT NOT NULL DEFAULT 1 CHECK (defense_level >= 1),
    resources INT NOT NULL DEFAULT 100 CHECK (resources >= 0),
    version BIGINT NOT NULL DEFAULT 1
);

-- 袭击记录表
CREATE TABLE IF NOT EXISTS attack_logs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES user_homes(id) ON DELETE CASCADE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
    attacker_type VARCHAR(50) NOT NULL,
    attacker_level INT NOT NULL CHECK (attacker_level BETWEEN 1 AND 5),
    damage_dealt INT NOT NULL,
    damage_received INT NOT NULL,
    resources_gained INT NOT NULL DEFAULT 0 CHECK (resources_gained >= 0),
    outcome VARCHAR(10) NOT NULL CHECK (outcome IN ('victory', 'defeat'))
);

-- 创建索引以提高查询性能
CREATE INDEX IF NOT EXISTS idx_user_homes_health ON user_homes(health);
CREATE INDEX IF NOT EXISTS idx_attack_logs_user_created ON attack_logs(user_id, created_at DESC);
`

// SQLiteSchemaSQL SQLite表结构，时间以毫秒时间戳保存
const SQLiteSchemaSQL = `
CREATE TABLE IF NOT EXISTS user_homes (
    id TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL,
    last_reset_at INTEGER NOT NULL,
    health INTEGER NOT NULL DEFAULT 100 CHECK (health BETWEEN 0 AND 100),
    shield INTEGER NOT NULL DEFAULT 50 CHECK (shield >= 0),
    weapon_level INTEGER NOT NULL DEFAULT 1 CHECK (weapon_level >= 1),
    defense_level INTEGER NOT NULL DEFAULT 1 CHECK (defense_level >= 1),
    resources INTEGER NOT NULL DEFAULT 100 CHECK (resources >= 0),
    version INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS attack_logs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES user_homes(id) ON DELETE CASCADE,
    created_at INTEGER NOT NULL,
    attacker_type TEXT NOT NULL,
    attacker_level INTEGER NOT NULL CHECK (attacker_level BETWEEN 1 AND 5),
    damage_dealt INTEGER NOT NULL,
    damage_received INTEGER NOT NULL,
    resources_gained INTEGER NOT NULL DEFAULT 0 CHECK (resources_gained >= 0),
    outcome TEXT NOT NULL CHECK (outcome IN ('victory', 'defeat'))
);

CREATE INDEX IF NOT EXISTS idx_user_homes_health ON user_homes(health);
CREATE INDEX IF NOT EXISTS idx_attack_logs_user_created ON attack_logs(user_id, created_at DESC);
`

// dropTablesSQL 删除所有表（按依赖关系顺序）
const dropTablesSQL = `
DROP TABLE IF EXISTS attack_logs;
DROP TABLE IF EXISTS user_homes;
`

// InitTables 初始化所有数据库表
func InitTables(conn *sql.DB, driver string) error {
	schema, err := schemaFor(driver)
	if err != nil {
		return err
	}
	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("创建表失败: %w", err)
	}
	return nil
}

// DropTables 删除所有表和数据
func DropTables(conn *sql.DB) error {
	if _, err := conn.Exec(dropTablesSQL); err != nil {
		return fmt.Errorf("删除表失败: %w", err)
	}
	return nil
}

func schemaFor(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres:
		return PostgresSchemaSQL, nil
	case config.DriverSQLite:
		return SQLiteSchemaSQL, nil
	default:
		return "", fmt.Errorf("不支持的数据库驱动: %q", driver)
	}
}
