package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jacl-coder/HomeDefense-Server/config"
	"github.com/jacl-coder/HomeDefense-Server/internal/economy"
	"github.com/jacl-coder/HomeDefense-Server/internal/game"
	"github.com/jacl-coder/HomeDefense-Server/internal/leaderboard"
	"github.com/jacl-coder/HomeDefense-Server/internal/models"
)

// Engine 网关调用的引擎操作，*game.Engine 满足该接口
type Engine interface {
	ProvisionHome(ctx context.Context, id string) (models.Home, error)
	HomeStatus(ctx context.Context, id string) (economy.HomeStatus, error)
	GetAttackLogs(ctx context.Context, homeID string, limit int) ([]models.AttackLog, error)

	RepairHealth(ctx context.Context, homeID string) (game.CommandResult, error)
	RepairShield(ctx context.Context, homeID string) (game.CommandResult, error)
	UpgradeWeapon(ctx context.Context, homeID string) (game.CommandResult, error)
	UpgradeDefense(ctx context.Context, homeID string) (game.CommandResult, error)
	ResetGame(ctx context.Context, homeID string) (game.CommandResult, error)

	RunCombatTick(ctx context.Context) (game.CombatTickResult, error)
	RunRegenTick(ctx context.Context) (game.RegenTickResult, error)
}

// Ranking 排行榜查询
type Ranking interface {
	Top(ctx context.Context, kind leaderboard.Kind, limit int) ([]leaderboard.Entry, error)
}

// Gateway HTTP网关
type Gateway struct {
	config     *config.Config
	engine     Engine
	ranking    Ranking
	limiter    *RateLimiter
	httpServer *http.Server
	isRunning  bool
}

// NewGateway 创建新的网关，ranking 为空时排行榜接口返回 503
func NewGateway(cfg *config.Config, engine Engine, ranking Ranking) *Gateway {
	return &Gateway{
		config:  cfg,
		engine:  engine,
		ranking: ranking,
		limiter: NewRateLimiter(cfg.Server.RateLimitPerMinute),
	}
}

// Start 启动网关
func (g *Gateway) Start() error {
	if g.isRunning {
		return fmt.Errorf("网关已经在运行")
	}

	g.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", g.config.Server.HTTPPort),
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP网关启动，监听端口: %d", g.config.Server.HTTPPort)
		if err := g.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP服务器错误: %v", err)
		}
	}()

	g.isRunning = true
	return nil
}

// Stop 停止网关
func (g *Gateway) Stop() error {
	if !g.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP服务器关闭错误: %w", err)
	}
	g.limiter.Stop()

	g.isRunning = false
	log.Println("HTTP网关已停止")
	return nil
}

// Handler 返回带中间件的路由
func (g *Gateway) Handler() http.Handler {
	return g.applyMiddleware(g.createHandler())
}

// createHandler 创建HTTP处理器
func (g *Gateway) createHandler() http.Handler {
	mux := http.NewServeMux()

	NewHomeHandler(g.engine).RegisterHandlers(mux)
	NewTickHandler(g.engine, g.config.Trigger.Secret).RegisterHandlers(mux)
	NewLeaderboardHandler(g.ranking).RegisterHandlers(mux)

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}

// applyMiddleware 应用中间件
func (g *Gateway) applyMiddleware(handler http.Handler) http.Handler {
	// 按顺序应用中间件（从外到内）
	handler = NewLoggingMiddleware(g.config.Server.Debug).Middleware(handler)
	handler = NewSecurityMiddleware().Middleware(handler)
	handler = NewCORSMiddleware().Middleware(handler)
	handler = g.limiter.Middleware(handler)
	return handler
}
