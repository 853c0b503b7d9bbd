package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/haigui-org/haigui-backend/internal/logger"
	"github.com/haigui-org/haigui-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

// wsTestServer upgrades every incoming connection the way the HTTP handler
// does and subscribes it to a fixed channel set.
type wsTestServer struct {
	hub   *Hub
	srv   *httptest.Server
	loops sync.WaitGroup

	mu      sync.Mutex
	clients []*Client
}

func newWsTestServer(t *testing.T, hub *Hub, userID uuid.UUID, channels []string) *wsTestServer {
	t.Helper()
	log := newTestLogger(t)
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	ts := &wsTestServer{hub: hub}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		client := NewClient(conn, hub, userID, cancel, log)
		hub.Subscribe(client, channels)

		ts.loops.Add(2)
		ts.mu.Lock()
		ts.clients = append(ts.clients, client)
		ts.mu.Unlock()

		go func() { defer ts.loops.Done(); client.ReadLoop(ctx) }()
		go func() { defer ts.loops.Done(); client.WriteLoop(ctx) }()
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *wsTestServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func (ts *wsTestServer) clientCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.clients)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
}

func readFrame(t *testing.T, conn *websocket.Conn) (string, types.Message) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var frame struct {
		Channel string        `json:"channel"`
		Payload types.Message `json:"payload"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	return frame.Channel, frame.Payload
}

func TestHub_BroadcastChatMessage_Delivered(t *testing.T) {
	hub := NewHub(newTestLogger(t))
	chatID := uuid.New()
	ts := newWsTestServer(t, hub, uuid.New(), []string{ChatChannel(chatID)})

	conn := ts.dial(t)
	defer conn.Close()
	waitFor(t, func() bool { return ts.clientCount() == 1 })

	hub.BroadcastChatMessage(chatID, &types.Message{
		ID:      uuid.New(),
		ChatID:  chatID,
		Content: "不是。",
	})

	channel, payload := readFrame(t, conn)
	if channel != ChatChannel(chatID) {
		t.Fatalf("delivered on channel %q, want %q", channel, ChatChannel(chatID))
	}
	if payload.Content != "不是。" {
		t.Fatalf("unexpected payload content: %q", payload.Content)
	}
}

func TestClient_DisconnectTearsDownCleanly(t *testing.T) {
	hub := NewHub(newTestLogger(t))
	chatID := uuid.New()
	ts := newWsTestServer(t, hub, uuid.New(), []string{ChatChannel(chatID)})

	conn := ts.dial(t)
	waitFor(t, func() bool { return ts.clientCount() == 1 })

	// Peer disconnect makes the read loop exit first; both pump loops then
	// run the client's deferred cleanup.
	_ = conn.Close()
	ts.loops.Wait()

	hub.mu.RLock()
	remaining := len(hub.channels)
	hub.mu.RUnlock()
	if remaining != 0 {
		t.Fatalf("expected all channels torn down, %d remain", remaining)
	}

	// Broadcasting after teardown must be a no-op, not a write to a closed
	// client.
	hub.BroadcastChatMessage(chatID, &types.Message{ID: uuid.New(), ChatID: chatID, Content: "是的。"})
}

func TestHub_SecondConnectionSameUser(t *testing.T) {
	hub := NewHub(newTestLogger(t))
	chatID := uuid.New()
	userID := uuid.New()
	ts := newWsTestServer(t, hub, userID, []string{ChatChannel(chatID)})

	first := ts.dial(t)
	defer first.Close()
	second := ts.dial(t)
	defer second.Close()
	waitFor(t, func() bool { return ts.clientCount() == 2 })

	ts.mu.Lock()
	a, b := ts.clients[0], ts.clients[1]
	ts.mu.Unlock()
	if a.ID == b.ID {
		t.Fatalf("connections must get distinct hub ids, both got %s", a.ID)
	}
	if a.UserID != userID || b.UserID != userID {
		t.Fatalf("user id should be carried on both connections")
	}

	hub.BroadcastChatMessage(chatID, &types.Message{
		ID:      uuid.New(),
		ChatID:  chatID,
		Content: "与此无关。",
	})

	for _, conn := range []*websocket.Conn{first, second} {
		_, payload := readFrame(t, conn)
		if payload.Content != "与此无关。" {
			t.Fatalf("connection missed the broadcast, got %q", payload.Content)
		}
	}
}
