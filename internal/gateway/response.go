package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jacl-coder/HomeDefense-Server/internal/game"
	"github.com/jacl-coder/HomeDefense-Server/internal/leaderboard"
	"github.com/jacl-coder/HomeDefense-Server/internal/protocol"
	"github.com/jacl-coder/HomeDefense-Server/internal/storage"
)

// Response 统一响应格式
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// protoFunc 生成 protobuf 响应体
type protoFunc func() (*structpb.Struct, error)

// wantsProto 客户端是否要求 protobuf 响应
func wantsProto(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), protocol.ContentType)
}

// sendSuccess 发送成功响应，客户端要求 protobuf 时只返回数据本身
func sendSuccess(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}, pb protoFunc) {
	if pb != nil && wantsProto(r) {
		body, err := protocol.Marshal(pb())
		if err != nil {
			log.Printf("编码protobuf响应失败: %v", err)
			sendError(w, "编码响应失败", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", protocol.ContentType)
		w.WriteHeader(status)
		w.Write(body)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{Success: true, Message: message, Data: data}); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}

// sendError 发送错误响应
func sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{Success: false, Message: message}); err != nil {
		log.Printf("编码错误响应失败: %v", err)
	}
}

// sendEngineError 将引擎错误映射为HTTP状态码
func sendEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		sendError(w, "家园不存在", http.StatusNotFound)
	case errors.Is(err, storage.ErrAlreadyExists):
		sendError(w, "家园已存在", http.StatusConflict)
	case errors.Is(err, game.ErrTooManyConflicts), errors.Is(err, storage.ErrConflict):
		sendError(w, "家园正在被并发修改，请重试", http.StatusConflict)
	case errors.Is(err, leaderboard.ErrUnknownKind):
		sendError(w, "不支持的排行榜类型", http.StatusBadRequest)
	case errors.Is(err, storage.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		log.Printf("存储不可用: %v", err)
		sendError(w, "服务暂时不可用，请稍后重试", http.StatusServiceUnavailable)
	default:
		log.Printf("处理请求失败: %v", err)
		sendError(w, "服务器内部错误", http.StatusInternalServerError)
	}
}
