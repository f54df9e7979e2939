package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jacl-coder/HomeDefense-Server/internal/game"
	"github.com/jacl-coder/HomeDefense-Server/internal/models"
	"github.com/jacl-coder/HomeDefense-Server/internal/protocol"
)

// HomeHandler 家园处理器
type HomeHandler struct {
	engine   Engine
	commands map[string]func(ctx context.Context, homeID string) (game.CommandResult, error)
}

// NewHomeHandler 创建家园处理器
func NewHomeHandler(engine Engine) *HomeHandler {
	return &HomeHandler{
		engine: engine,
		commands: map[string]func(ctx context.Context, homeID string) (game.CommandResult, error){
			"repair-health":   engine.RepairHealth,
			"repair-shield":   engine.RepairShield,
			"upgrade-weapon":  engine.UpgradeWeapon,
			"upgrade-defense": engine.UpgradeDefense,
			"reset":           engine.ResetGame,
		},
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *HomeHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/homes", h.handleCreateHome)
	mux.HandleFunc("/homes/", h.handleHome)
}

// CreateHomeRequest 创建家园请求，id 为空时自动生成
type CreateHomeRequest struct {
	ID string `json:"id,omitempty"`
}

// handleCreateHome 处理创建家园
func (h *HomeHandler) handleCreateHome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	var req CreateHomeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		sendError(w, "无效的请求格式", http.StatusBadRequest)
		return
	}

	home, err := h.engine.ProvisionHome(r.Context(), strings.TrimSpace(req.ID))
	if err != nil {
		sendEngineError(w, err)
		return
	}
	sendSuccess(w, r, http.StatusCreated, "家园创建成功", home, func() (*structpb.Struct, error) {
		return protocol.ConvertHomeToProto(home)
	})
}

// handleHome 处理 /homes/{id}[/action]
func (h *HomeHandler) handleHome(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/homes/"), "/")
	parts := strings.Split(path, "/")
	if parts[0] == "" || len(parts) > 2 {
		sendError(w, "无效的请求路径", http.StatusBadRequest)
		return
	}
	homeID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			sendError(w, "仅支持GET方法", http.StatusMethodNotAllowed)
			return
		}
		h.handleGetHome(w, r, homeID)
		return
	}

	action := parts[1]
	if action == "attack-logs" {
		if r.Method != http.MethodGet {
			sendError(w, "仅支持GET方法", http.StatusMethodNotAllowed)
			return
		}
		h.handleAttackLogs(w, r, homeID)
		return
	}

	command, ok := h.commands[action]
	if !ok {
		sendError(w, "未知的请求路径", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		sendError(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}
	h.handleCommand(w, r, homeID, command)
}

// handleGetHome 处理获取家园状态
func (h *HomeHandler) handleGetHome(w http.ResponseWriter, r *http.Request, homeID string) {
	status, err := h.engine.HomeStatus(r.Context(), homeID)
	if err != nil {
		sendEngineError(w, err)
		return
	}
	sendSuccess(w, r, http.StatusOK, "查询成功", status, func() (*structpb.Struct, error) {
		return protocol.ConvertStatusToProto(status)
	})
}

// handleAttackLogs 处理获取袭击记录
func (h *HomeHandler) handleAttackLogs(w http.ResponseWriter, r *http.Request, homeID string) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			sendError(w, "无效的limit参数", http.StatusBadRequest)
			return
		}
		limit = n
	}

	logs, err := h.engine.GetAttackLogs(r.Context(), homeID, limit)
	if err != nil {
		sendEngineError(w, err)
		return
	}
	if logs == nil {
		logs = []models.AttackLog{}
	}
	sendSuccess(w, r, http.StatusOK, "查询成功", logs, func() (*structpb.Struct, error) {
		return protocol.ConvertAttackLogsToProto(logs)
	})
}

// handleCommand 处理玩家命令；命令未生效时仍返回200，由 applied 和 reason 区分
func (h *HomeHandler) handleCommand(w http.ResponseWriter, r *http.Request, homeID string, command func(context.Context, string) (game.CommandResult, error)) {
	res, err := command(r.Context(), homeID)
	if err != nil {
		sendEngineError(w, err)
		return
	}
	message := "操作成功"
	if !res.Applied {
		message = "操作未生效: " + string(res.Reason)
	}
	sendSuccess(w, r, http.StatusOK, message, res, func() (*structpb.Struct, error) {
		return protocol.ConvertCommandResultToProto(res)
	})
}
