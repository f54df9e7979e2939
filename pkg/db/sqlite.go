package db

import (
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// OpenSQLite 打开SQLite数据库文件，本地开发和测试使用
func OpenSQLite(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite 路径不能为空")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开sqlite失败: %w", err)
	}
	// SQLite 只允许单写者，连接池限制为1避免 SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite Ping失败: %w", err)
	}

	log.Printf("成功打开SQLite数据库: %s", path)
	return conn, nil
}
