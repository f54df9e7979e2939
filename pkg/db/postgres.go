package db

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/jacl-coder/HomeDefense-Server/config"
	_ "github.com/lib/pq"
)

// OpenPostgres 初始化PostgreSQL连接
func OpenPostgres(cfg config.DatabaseConfig) (*sql.DB, error) {
	conn, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 测试连接
	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("数据库Ping失败: %w", err)
	}

	log.Println("成功连接到PostgreSQL数据库")
	return conn, nil
}

// Open 按配置的驱动打开数据库
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return OpenPostgres(cfg)
	case config.DriverSQLite:
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %q", cfg.Driver)
	}
}

// Close 关闭数据库连接
func Close(conn *sql.DB) {
	if conn != nil {
		conn.Close()
		log.Println("数据库连接已关闭")
	}
}
