// main.go

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"

	"github.com/jacl-coder/HomeDefense-Server/config"
	"github.com/jacl-coder/HomeDefense-Server/internal/game"
	"github.com/jacl-coder/HomeDefense-Server/internal/gateway"
	"github.com/jacl-coder/HomeDefense-Server/internal/leaderboard"
	"github.com/jacl-coder/HomeDefense-Server/internal/scheduler"
	"github.com/jacl-coder/HomeDefense-Server/internal/storage/sqlstore"
	"github.com/jacl-coder/HomeDefense-Server/pkg/db"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化数据库连接
	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer db.Close(conn)

	if err := db.InitTables(conn, cfg.Database.Driver); err != nil {
		log.Fatalf("初始化数据库表失败: %v", err)
	}

	dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
	if err != nil {
		log.Fatalf("初始化存储失败: %v", err)
	}
	store := sqlstore.New(conn, dialect)

	ctx := context.Background()

	// 初始化Redis连接（可选）
	var (
		redisClient *redis.Client
		board       *leaderboard.Board
		locker      scheduler.Locker
	)
	if cfg.Redis.Enabled {
		redisClient, err = db.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("初始化Redis失败: %v", err)
		}
		defer db.CloseRedis(redisClient)

		board = leaderboard.New(redisClient)
		locker = scheduler.NewRedisLocker(redisClient)
	}

	opts := []game.Option{
		game.WithMaxRetries(cfg.Game.MaxRetries),
		game.WithTickTimeout(cfg.Game.TickTimeout),
		game.WithWorkers(cfg.Game.TickWorkers),
		game.WithAttackLogLimit(cfg.Game.AttackLogLimit),
	}
	if board != nil {
		opts = append(opts, game.WithObserver(board))
	}
	engine, err := game.NewEngine(store, opts...)
	if err != nil {
		log.Fatalf("创建游戏引擎失败: %v", err)
	}

	// 启动时用数据库中的家园重建排行榜
	if board != nil {
		homes, err := store.ListActiveHomes(ctx)
		if err != nil {
			log.Printf("读取家园列表失败，跳过排行榜重建: %v", err)
		} else if err := board.Rebuild(ctx, homes); err != nil {
			log.Printf("重建排行榜失败: %v", err)
		} else {
			log.Printf("排行榜已重建，共 %d 个家园", len(homes))
		}
	}

	// 接口值为 nil 时网关才能识别出排行榜未启用
	var ranking gateway.Ranking
	if board != nil {
		ranking = board
	}

	gw := gateway.NewGateway(cfg, engine, ranking)
	if err := gw.Start(); err != nil {
		log.Fatalf("启动网关服务失败: %v", err)
	}
	log.Println("网关服务已启动")

	var sched *scheduler.Scheduler
	if cfg.Game.SchedulerEnabled {
		sched = scheduler.New(locker, scheduler.EngineJobs(engine, cfg.Game.CombatInterval, cfg.Game.RegenInterval)...)
		if err := sched.Start(); err != nil {
			log.Fatalf("启动调度器失败: %v", err)
		}
		log.Printf("调度器已启动 (战斗间隔 %s, 回复间隔 %s)", cfg.Game.CombatInterval, cfg.Game.RegenInterval)
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("接收到关闭信号，正在关闭服务器...")

	if sched != nil {
		sched.Stop()
	}
	if err := gw.Stop(); err != nil {
		log.Printf("关闭网关失败: %v", err)
	}

	log.Println("服务器已安全关闭")
}
