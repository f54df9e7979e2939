package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jacl-coder/HomeDefense-Server/internal/protocol"
)

// TriggerIssuer 触发令牌的签发者
const TriggerIssuer = "homedefense-trigger"

var errMissingToken = errors.New("missing bearer token")

// TickHandler 结算触发处理器，供外部定时器调用
type TickHandler struct {
	engine Engine
	secret []byte
}

// NewTickHandler 创建结算触发处理器，secret 为空时不校验令牌
func NewTickHandler(engine Engine, secret string) *TickHandler {
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &TickHandler{engine: engine, secret: key}
}

// RegisterHandlers 注册HTTP处理器
func (h *TickHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/ticks/combat", h.handleCombat)
	mux.HandleFunc("/ticks/regen", h.handleRegen)
}

// handleCombat 触发一次战斗结算
func (h *TickHandler) handleCombat(w http.ResponseWriter, r *http.Request) {
	if !h.precheck(w, r) {
		return
	}
	res, err := h.engine.RunCombatTick(r.Context())
	if err != nil {
		sendEngineError(w, err)
		return
	}
	sendSuccess(w, r, http.StatusOK, "战斗结算完成", res, func() (*structpb.Struct, error) {
		return protocol.ConvertCombatTickToProto(res)
	})
}

// handleRegen 触发一次护盾回复
func (h *TickHandler) handleRegen(w http.ResponseWriter, r *http.Request) {
	if !h.precheck(w, r) {
		return
	}
	res, err := h.engine.RunRegenTick(r.Context())
	if err != nil {
		sendEngineError(w, err)
		return
	}
	sendSuccess(w, r, http.StatusOK, "护盾回复完成", res, func() (*structpb.Struct, error) {
		return protocol.ConvertRegenTickToProto(res)
	})
}

func (h *TickHandler) precheck(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		sendError(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return false
	}
	if err := h.authorize(r); err != nil {
		sendError(w, "未授权", http.StatusUnauthorized)
		return false
	}
	return true
}

// authorize 校验 HS256 签名的 Bearer 令牌
func (h *TickHandler) authorize(r *http.Request) error {
	if h.secret == nil {
		return nil
	}
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return errMissingToken
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TriggerIssuer),
	)
	if err != nil {
		return fmt.Errorf("parse trigger token: %w", err)
	}
	return nil
}

// NewTriggerToken 签发触发令牌，ttl <= 0 时不设置过期时间
func NewTriggerToken(secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("trigger secret is empty")
	}
	claims := jwt.RegisteredClaims{
		Issuer:   TriggerIssuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign trigger token: %w", err)
	}
	return token, nil
}
