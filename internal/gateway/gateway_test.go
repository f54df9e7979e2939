package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jacl-coder/HomeDefense-Server/config"
	"github.com/jacl-coder/HomeDefense-Server/internal/game"
	"github.com/jacl-coder/HomeDefense-Server/internal/leaderboard"
	"github.com/jacl-coder/HomeDefense-Server/internal/models"
	"github.com/jacl-coder/HomeDefense-Server/internal/protocol"
	"github.com/jacl-coder/HomeDefense-Server/internal/storage/memory"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeRanking struct {
	entries []leaderboard.Entry
	err     error
}

func (f *fakeRanking) Top(_ context.Context, kind leaderboard.Kind, limit int) ([]leaderboard.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

type testServer struct {
	server *httptest.Server
	store  *memory.Store
}

func newTestServer(t *testing.T, secret string, ranking Ranking) *testServer {
	t.Helper()
	store := memory.NewStore()
	engine, err := game.NewEngine(store,
		game.WithClock(func() time.Time { return testNow }),
		game.WithDice(game.NewDice(1)),
	)
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}

	cfg := config.Default()
	cfg.Trigger.Secret = secret
	cfg.Server.RateLimitPerMinute = 0
	gw := NewGateway(cfg, engine, ranking)
	t.Cleanup(gw.limiter.Stop)

	srv := httptest.NewServer(gw.Handler())
	t.Cleanup(srv.Close)
	return &testServer{server: srv, store: store}
}

func (ts *testServer) do(t *testing.T, method, path, body string, header http.Header) (*http.Response, Response) {
	t.Helper()
	req, err := http.NewRequest(method, ts.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out Response
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, out
}

func decodeData(t *testing.T, resp Response, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, "", nil)
	resp, _ := ts.do(t, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Server") != "HomeDefense" {
		t.Errorf("expected security headers, got %v", resp.Header)
	}
}

func TestCreateAndGetHome(t *testing.T) {
	ts := newTestServer(t, "", nil)

	resp, body := ts.do(t, http.MethodPost, "/homes", `{"id":"player-1"}`, nil)
	if resp.StatusCode != http.StatusCreated || !body.Success {
		t.Fatalf("expected 201, got %d %+v", resp.StatusCode, body)
	}

	resp, _ = ts.do(t, http.MethodPost, "/homes", `{"id":"player-1"}`, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate home, got %d", resp.StatusCode)
	}

	resp, body = ts.do(t, http.MethodPost, "/homes", "", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for generated id, got %d", resp.StatusCode)
	}
	var generated models.Home
	decodeData(t, body, &generated)
	if generated.ID == "" {
		t.Errorf("expected generated id")
	}

	resp, body = ts.do(t, http.MethodGet, "/homes/player-1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var status struct {
		ID                string `json:"id"`
		Health            int    `json:"health"`
		WeaponName        string `json:"weapon_name"`
		WeaponUpgradeCost int    `json:"weapon_upgrade_cost"`
		MaxShield         int    `json:"max_shield"`
	}
	decodeData(t, body, &status)
	if status.ID != "player-1" || status.Health != 100 || status.WeaponName != "Basic Turret" ||
		status.WeaponUpgradeCost != 50 || status.MaxShield != 50 {
		t.Fatalf("unexpected status: %+v", status)
	}

	resp, _ = ts.do(t, http.MethodGet, "/homes/missing", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodPost, "/homes", `{"id":`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
}

func TestCommands(t *testing.T) {
	ts := newTestServer(t, "", nil)
	ts.store.Put(models.NewHome("h", testNow))

	resp, body := ts.do(t, http.MethodPost, "/homes/h/upgrade-weapon", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var res game.CommandResult
	decodeData(t, body, &res)
	if !res.Applied || res.Home.WeaponLevel != 2 || res.Home.Resources != 50 {
		t.Fatalf("expected applied upgrade, got %+v", res)
	}

	// 剩余50资源不够第二次升级，返回200但未生效
	resp, body = ts.do(t, http.MethodPost, "/homes/h/upgrade-weapon", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for rejected command, got %d", resp.StatusCode)
	}
	res = game.CommandResult{}
	decodeData(t, body, &res)
	if res.Applied || res.Reason != game.ReasonUnaffordable {
		t.Fatalf("expected unaffordable, got %+v", res)
	}

	resp, body = ts.do(t, http.MethodPost, "/homes/h/reset", "", nil)
	res = game.CommandResult{}
	decodeData(t, body, &res)
	if resp.StatusCode != http.StatusOK || res.Reason != game.ReasonNotDestroyed {
		t.Fatalf("expected not_destroyed, got %d %+v", resp.StatusCode, res)
	}

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/homes/h/repair-health", http.StatusMethodNotAllowed},
		{http.MethodPost, "/homes/h/teleport", http.StatusNotFound},
		{http.MethodPost, "/homes/missing/repair-shield", http.StatusNotFound},
		{http.MethodGet, "/homes/", http.StatusBadRequest},
		{http.MethodDelete, "/homes/h", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		resp, _ := ts.do(t, tt.method, tt.path, "", nil)
		if resp.StatusCode != tt.status {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.status, resp.StatusCode)
		}
	}
}

func TestAttackLogs(t *testing.T) {
	ts := newTestServer(t, "", nil)
	ts.store.Put(models.NewHome("h", testNow))
	for i := 0; i < 3; i++ {
		ts.do(t, http.MethodPost, "/ticks/combat", "", nil)
	}

	resp, body := ts.do(t, http.MethodGet, "/homes/h/attack-logs?limit=2", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var logs []models.AttackLog
	decodeData(t, body, &logs)
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}

	resp, _ = ts.do(t, http.MethodGet, "/homes/h/attack-logs?limit=abc", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTickAuthorization(t *testing.T) {
	const secret = "s3cret"
	ts := newTestServer(t, secret, nil)
	ts.store.Put(models.NewHome("h", testNow))

	resp, _ := ts.do(t, http.MethodPost, "/ticks/regen", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	bad, _ := NewTriggerToken("other", time.Hour, time.Now())
	resp, _ = ts.do(t, http.MethodPost, "/ticks/regen", "", http.Header{"Authorization": {"Bearer " + bad}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", resp.StatusCode)
	}

	expired, _ := NewTriggerToken(secret, time.Minute, time.Now().Add(-time.Hour))
	resp, _ = ts.do(t, http.MethodPost, "/ticks/regen", "", http.Header{"Authorization": {"Bearer " + expired}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with expired token, got %d", resp.StatusCode)
	}

	token, err := NewTriggerToken(secret, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("NewTriggerToken returned error: %v", err)
	}
	resp, body := ts.do(t, http.MethodPost, "/ticks/combat", "", http.Header{"Authorization": {"Bearer " + token}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", resp.StatusCode)
	}
	var summary game.CombatTickResult
	decodeData(t, body, &summary)
	if summary.ProcessedCount != 1 || summary.Results[0].HomeID != "h" {
		t.Fatalf("unexpected combat summary: %+v", summary)
	}

	resp, _ = ts.do(t, http.MethodGet, "/ticks/combat", "", http.Header{"Authorization": {"Bearer " + token}})
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestProtobufResponses(t *testing.T) {
	ts := newTestServer(t, "", nil)
	ts.store.Put(models.NewHome("h", testNow))

	req, _ := http.NewRequest(http.MethodGet, ts.server.URL+"/homes/h", nil)
	req.Header.Set("Accept", protocol.ContentType)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("Content-Type") != protocol.ContentType {
		t.Fatalf("expected protobuf content type, got %q", resp.Header.Get("Content-Type"))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if msg.GetFields()["id"].GetStringValue() != "h" || msg.GetFields()["max_shield"].GetNumberValue() != 50 {
		t.Fatalf("unexpected protobuf body: %v", msg.GetFields())
	}
}

func TestLeaderboard(t *testing.T) {
	ts := newTestServer(t, "", nil)
	resp, _ := ts.do(t, http.MethodGet, "/leaderboard", "", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without leaderboard, got %d", resp.StatusCode)
	}

	ranking := &fakeRanking{entries: []leaderboard.Entry{{Rank: 1, HomeID: "a", Score: 900}, {Rank: 2, HomeID: "b", Score: 100}}}
	ts = newTestServer(t, "", ranking)

	resp, body := ts.do(t, http.MethodGet, "/leaderboard?kind=resources&limit=1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var data LeaderboardData
	decodeData(t, body, &data)
	if data.Kind != leaderboard.KindResources || len(data.Entries) != 1 || data.Entries[0].HomeID != "a" {
		t.Fatalf("unexpected leaderboard: %+v", data)
	}

	resp, _ = ts.do(t, http.MethodGet, "/leaderboard?kind=kills", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", resp.StatusCode)
	}

	ranking.err = errors.New("redis down")
	resp, _ = ts.do(t, http.MethodGet, "/leaderboard", "", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when redis fails, got %d", resp.StatusCode)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2)
	defer rl.Stop()
	now := time.Now()

	if !rl.allowRequest("1.2.3.4", now) || !rl.allowRequest("1.2.3.4", now) {
		t.Fatalf("expected first two requests to pass")
	}
	if rl.allowRequest("1.2.3.4", now) {
		t.Fatalf("expected third request to be limited")
	}
	if !rl.allowRequest("5.6.7.8", now) {
		t.Fatalf("limits must be per client")
	}
	if !rl.allowRequest("1.2.3.4", now.Add(61*time.Second)) {
		t.Fatalf("expected window to slide")
	}

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status codes: %v", codes)
	}
}
