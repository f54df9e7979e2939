// main.go

package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jacl-coder/HomeDefense-Server/config"
	"github.com/jacl-coder/HomeDefense-Server/internal/game"
	"github.com/jacl-coder/HomeDefense-Server/internal/gateway"
	"github.com/jacl-coder/HomeDefense-Server/internal/storage/sqlstore"
	"github.com/jacl-coder/HomeDefense-Server/pkg/db"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	action := flag.String("action", "help", "操作类型: init, reset, provision, token, help")
	homeID := flag.String("id", "", "provision 时使用的家园ID，留空自动生成")
	ttl := flag.Duration("ttl", time.Hour, "token 的有效期，0 表示不过期")
	flag.Parse()

	// 显示帮助信息
	if *action == "help" {
		showHelp()
		return
	}

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// token 不需要数据库
	if *action == "token" {
		issueToken(cfg, *ttl)
		return
	}

	// 初始化数据库连接
	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer db.Close(conn)

	// 执行操作
	switch *action {
	case "init":
		if err := db.InitTables(conn, cfg.Database.Driver); err != nil {
			log.Fatalf("初始化数据库表失败: %v", err)
		}
		log.Println("✅ 数据库初始化完成")
		log.Println("📋 已创建的表: user_homes, attack_logs")
	case "reset":
		log.Println("⚠️  正在重置数据库，这将删除所有家园和袭击记录！")
		if err := db.DropTables(conn); err != nil {
			log.Fatalf("重置数据库失败: %v", err)
		}
		if err := db.InitTables(conn, cfg.Database.Driver); err != nil {
			log.Fatalf("初始化数据库表失败: %v", err)
		}
		log.Println("✅ 数据库重置完成")
	case "provision":
		provisionHome(cfg, conn, *homeID)
	default:
		log.Fatalf("未知操作: %s", *action)
	}
}

// showHelp 显示帮助信息
func showHelp() {
	log.Println("HomeDefense 数据库管理工具")
	log.Println("")
	log.Println("用法:")
	log.Println("  go run ./cmd/dbtool -action=<操作> [-config=<配置文件>]")
	log.Println("")
	log.Println("操作:")
	log.Println("  init       - 初始化数据库（创建表结构）")
	log.Println("  reset      - 重置数据库（删除并重建所有表）")
	log.Println("  provision  - 创建一个初始家园，-id 指定家园ID")
	log.Println("  token      - 签发结算触发令牌，-ttl 指定有效期")
	log.Println("  help       - 显示此帮助信息")
	log.Println("")
	log.Println("示例:")
	log.Println("  go run ./cmd/dbtool -action=reset")
	log.Println("  go run ./cmd/dbtool -action=provision -id=alice")
	log.Println("  go run ./cmd/dbtool -action=token -ttl=24h")
}

// provisionHome 创建初始家园
func provisionHome(cfg *config.Config, conn *sql.DB, id string) {
	if err := db.InitTables(conn, cfg.Database.Driver); err != nil {
		log.Fatalf("初始化数据库表失败: %v", err)
	}
	dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
	if err != nil {
		log.Fatalf("初始化存储失败: %v", err)
	}
	store := sqlstore.New(conn, dialect)

	engine, err := game.NewEngine(store)
	if err != nil {
		log.Fatalf("创建游戏引擎失败: %v", err)
	}
	home, err := engine.ProvisionHome(context.Background(), id)
	if err != nil {
		log.Fatalf("创建家园失败: %v", err)
	}
	log.Printf("✅ 家园已创建: %s (生命 %d, 护盾 %d, 资源 %d)", home.ID, home.Health, home.Shield, home.Resources)
}

// issueToken 签发触发令牌并输出到标准输出
func issueToken(cfg *config.Config, ttl time.Duration) {
	token, err := gateway.NewTriggerToken(cfg.Trigger.Secret, ttl, time.Now())
	if err != nil {
		log.Fatalf("签发令牌失败: %v", err)
	}
	fmt.Println(token)
}
