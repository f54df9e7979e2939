package gateway

import (
	"net/http"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jacl-coder/HomeDefense-Server/internal/leaderboard"
	"github.com/jacl-coder/HomeDefense-Server/internal/protocol"
)

// LeaderboardHandler 排行榜处理器
type LeaderboardHandler struct {
	ranking Ranking
}

// NewLeaderboardHandler 创建排行榜处理器
func NewLeaderboardHandler(ranking Ranking) *LeaderboardHandler {
	return &LeaderboardHandler{ranking: ranking}
}

// RegisterHandlers 注册HTTP处理器
func (h *LeaderboardHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/leaderboard", h.handleLeaderboard)
}

// LeaderboardData 排行榜响应数据
type LeaderboardData struct {
	Kind    leaderboard.Kind    `json:"kind"`
	Entries []leaderboard.Entry `json:"entries"`
}

// handleLeaderboard 处理排行榜查询
func (h *LeaderboardHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}
	if h.ranking == nil {
		sendError(w, "排行榜未启用", http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query()
	kind, err := leaderboard.ParseKind(query.Get("kind"))
	if err != nil {
		sendEngineError(w, err)
		return
	}
	limit := leaderboard.DefaultLimit
	if s := query.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			sendError(w, "无效的limit参数", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.ranking.Top(r.Context(), kind, limit)
	if err != nil {
		sendError(w, "获取排行榜失败", http.StatusServiceUnavailable)
		return
	}
	sendSuccess(w, r, http.StatusOK, "查询成功", LeaderboardData{Kind: kind, Entries: entries}, func() (*structpb.Struct, error) {
		return protocol.ConvertLeaderboardToProto(kind, entries)
	})
}
