package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gambleio-server/internal/config"
	"gambleio-server/internal/handlers"
	"gambleio-server/internal/models"
	"gambleio-server/internal/services"
)

type testServer struct {
	router *gin.Engine
	store  *services.MemoryStore
	deps   handlers.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultGameConfig()
	store := services.NewMemoryStore()
	tokens := services.NewTokenService("test-secret", store)
	hub := handlers.NewWebSocketHub()
	roulette := services.NewRouletteEngine(store, cfg.Roulette, services.WithBroadcaster(hub))
	chat := services.NewChatService(store, cfg.Chat, hub)

	deps := handlers.Services{
		Store:       store,
		Tokens:      tokens,
		Auth:        services.NewAuthService(store, tokens, cfg.StartingBalance, "owner"),
		Ledger:      services.NewLedgerService(store, cfg.RiskUnlockCosts),
		Roulette:    roulette,
		Chat:        chat,
		Leaderboard: services.NewLeaderboardService(store),
		Admin:       services.NewAdminService(store, roulette, chat, "reset-key"),
		Plinko:      services.NewPlinkoService(store),
		Hub:         hub,
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return &testServer{router: handlers.NewRouter(deps), store: store, deps: deps}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, headers ...string) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (s *testServer) register(t *testing.T, username string) string {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"password": "password",
	})
	require.Equal(t, http.StatusOK, code, body)
	return body["token"].(string)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"username": "al", "password": "password"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["error"])

	token := s.register(t, "alice")

	code, body = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"username": "Alice", "password": "password"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Username already exists", body["error"])

	code, body = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Wrong password", body["error"])

	code, body = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "ghost", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "User not found", body["error"])

	code, body = s.do(t, http.MethodGet, "/api/user/stats", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, 10000.0, body["balance"])
	assert.NotContains(t, body, "passwordHash")

	code, body = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, _ = s.do(t, http.MethodGet, "/api/user/stats", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = s.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
}

func TestEconomyEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "bob")

	code, body := s.do(t, http.MethodPost, "/api/user/place-bet", token, gin.H{"amount": 100, "source": "slots"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, 9900.0, body["balance"])
	assert.Equal(t, 1.0, body["totalBets"])

	code, body = s.do(t, http.MethodPost, "/api/user/place-bet", token, gin.H{"amount": 1e9})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["error"])

	code, body = s.do(t, http.MethodPost, "/api/user/place-bet", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodPost, "/api/user/win", token, gin.H{"amount": 300, "betAmount": 100, "multiplier": 3, "source": "slots"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, 10200.0, body["balance"])
	assert.Equal(t, 1.0, body["totalWinsCount"])
	assert.Equal(t, 300.0, body["biggestWinAmount"])
	assert.Equal(t, 3.0, body["biggestWinMultiplier"])

	code, body = s.do(t, http.MethodPost, "/api/user/refund", token, gin.H{"amount": 50})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 10250.0, body["balance"])

	code, body = s.do(t, http.MethodPost, "/api/user/click-earnings", token, gin.H{"amount": 50000, "clickCount": 50000})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 20250.0, body["balance"])
	assert.Equal(t, 10000.0, body["totalClicks"])

	code, body = s.do(t, http.MethodPost, "/api/plinko/risk-level", token, gin.H{"level": "extreme"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["error"])

	code, body = s.do(t, http.MethodPost, "/api/user/update-stats", token, gin.H{"xp": 1000, "level": 2})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, body = s.do(t, http.MethodGet, "/api/user/stats", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2.0, body["level"])
	gameNet := body["gameNet"].(map[string]any)
	assert.Equal(t, 200.0, gameNet["slots"])
}

func TestPlinkoLanding(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "pam")

	code, _ := s.do(t, http.MethodPost, "/api/plinko-land", token, gin.H{"slotIndex": 4, "bet": 10, "multiplier": 1.5})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPost, "/api/plinko-land", token, gin.H{"slotIndex": 19})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := s.do(t, http.MethodGet, "/api/plinko/stats", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, body["totalBalls"])
	assert.Len(t, body["landings"], models.PlinkoSlots)
}

func TestRouletteEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "rita")

	code, body := s.do(t, http.MethodPost, "/api/roulette/bet", token, gin.H{"key": "red", "amount": 25})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, 9975.0, body["balance"])

	code, body = s.do(t, http.MethodPost, "/api/roulette/bet", token, gin.H{"key": "black", "amount": 25})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "BET_CONFLICT", body["code"])

	code, body = s.do(t, http.MethodPost, "/api/roulette/bet", token, gin.H{"key": "99", "amount": 25})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", body["code"])

	code, body = s.do(t, http.MethodGet, "/api/roulette/round", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "betting", body["phase"])
	assert.Nil(t, body["winNumber"])
	assert.Equal(t, 9975.0, body["balance"])
	assert.Equal(t, map[string]any{"red": 25.0}, body["myBets"])

	code, body = s.do(t, http.MethodGet, "/api/roulette/round", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, "balance")

	code, body = s.do(t, http.MethodGet, "/api/roulette/all-bets", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 25.0, body["red"])

	code, body = s.do(t, http.MethodPost, "/api/roulette/clear-bets", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 10000.0, body["balance"])
	assert.Equal(t, 25.0, body["refunded"])

	code, _ = s.do(t, http.MethodPost, "/api/roulette/bet", "", gin.H{"key": "red", "amount": 25})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestChatEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "carl")

	code, body := s.do(t, http.MethodPost, "/api/chat", token, gin.H{"text": "hello there"})
	require.Equal(t, http.StatusOK, code, body)
	message := body["message"].(map[string]any)
	assert.Equal(t, "hello there", message["text"])

	code, body = s.do(t, http.MethodPost, "/api/chat", token, gin.H{"text": "again"})
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, services.CodeChatDelay, body["code"])
	assert.Greater(t, body["retryAfterMs"].(float64), 0.0)

	code, body = s.do(t, http.MethodGet, "/api/chat", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["messages"], 1)
}

func TestLeaderboardEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "lena")
	s.register(t, "liam")

	code, _ := s.do(t, http.MethodPost, "/api/user/click-earnings", token, gin.H{"amount": 10, "clickCount": 10})
	require.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard/clicks", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []services.LeaderboardEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "lena", entries[0].Username)

	code, body := s.do(t, http.MethodGet, "/api/leaderboard/clicks/user/"+entries[1].ProfileSlug, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2.0, body["rank"])

	code, _ = s.do(t, http.MethodGet, "/api/leaderboard/richest", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodGet, "/api/leaderboard/xp/user/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPublicProfile(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "paula@example.com")

	code, body := s.do(t, http.MethodPost, "/api/user/place-bet", token, gin.H{"amount": 10, "source": "slots"})
	require.Equal(t, http.StatusOK, code, body)

	_, stats := s.do(t, http.MethodGet, "/api/user/stats", token, nil)
	slug := stats["profileSlug"].(string)

	code, body = s.do(t, http.MethodGet, "/api/user/"+slug+"/profile", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, slug, body["profileSlug"])
	assert.Equal(t, "paula@example.com", body["displayName"])
	assert.Equal(t, 1.0, body["totalBets"])
	assert.Equal(t, 1.0, body["level"])
	for _, hidden := range []string{"username", "balance", "passwordHash", "chatMutedUntil", "gameNet"} {
		assert.NotContains(t, body, hidden)
	}

	code, _ = s.do(t, http.MethodGet, "/api/user/paula@example.com/profile", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	ownerToken := s.register(t, "owner")
	memberToken := s.register(t, "mike")

	code, _ := s.do(t, http.MethodGet, "/api/admin/users", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := s.do(t, http.MethodGet, "/api/admin/users", ownerToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["users"], 2)

	code, body = s.do(t, http.MethodPost, "/api/admin/users/mike/role", ownerToken, gin.H{"role": "mod"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "mod", body["role"])

	code, body = s.do(t, http.MethodPost, "/api/admin/users/mike/adjust", ownerToken, gin.H{"type": "money", "value": -20000})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.0, body["balance"])

	code, body = s.do(t, http.MethodPost, "/api/admin/users/owner/mute", memberToken, gin.H{"minutes": 5})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(t, http.MethodPost, "/api/admin/users/mike/mute", ownerToken, gin.H{"minutes": 5})
	require.Equal(t, http.StatusOK, code)
	assert.NotNil(t, body["chatMutedUntil"])

	code, body = s.do(t, http.MethodPost, "/api/chat", memberToken, gin.H{"text": "let me talk"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, services.CodeChatMuted, body["code"])
	assert.NotNil(t, body["mutedUntil"])

	code, body = s.do(t, http.MethodGet, "/api/admin/logs?limit=2", ownerToken, nil)
	require.Equal(t, http.StatusOK, code)
	logs := body["logs"].([]any)
	require.Len(t, logs, 2)
	assert.Equal(t, "mute", logs[0].(map[string]any)["type"])

	code, _ = s.do(t, http.MethodGet, "/api/admin/logs?limit=abc", ownerToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAdminReset(t *testing.T) {
	s := newTestServer(t)
	memberToken := s.register(t, "mike")

	code, _ := s.do(t, http.MethodPost, "/api/admin/reset", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodPost, "/api/admin/reset", "", gin.H{"key": "wrong"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body := s.do(t, http.MethodPost, "/api/admin/reset", "", nil, "X-Admin-Key", "reset-key")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, _ = s.do(t, http.MethodGet, "/api/user/stats", memberToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestWebSocketReceivesRoundUpdates(t *testing.T) {
	s := newTestServer(t)
	server := httptest.NewServer(s.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first handlers.Message
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, handlers.MessageRoundUpdate, first.Type)

	require.NoError(t, conn.WriteJSON(handlers.Message{Type: handlers.MessagePing}))
	var pong handlers.Message
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, handlers.MessagePong, pong.Type)

	s.deps.Hub.BroadcastChatMessage(models.ChatMessage{ID: "m1", Text: "hi"})
	var chat handlers.Message
	require.NoError(t, conn.ReadJSON(&chat))
	assert.Equal(t, handlers.MessageChat, chat.Type)
}
