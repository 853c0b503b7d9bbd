package llm

import (
  "context"
  "encoding/json"
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/google/uuid"

  "github.com/haigui-org/haigui-backend/internal/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
  t.Helper()
  log, err := logger.New("development")
  if err != nil {
    t.Fatalf("init logger: %v", err)
  }
  return log
}

func TestOpenAIProvider_Success(t *testing.T) {
  var gotAuth string
  var gotReq openaiChatReq
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    gotAuth = r.Header.Get("Authorization")
    if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
      t.Errorf("decode request: %v", err)
    }
    _ = json.NewEncoder(w).Encode(map[string]interface{}{
      "choices": []map[string]interface{}{
        {"message": map[string]string{"role": "assistant", "content": "  不是。 "}},
      },
    })
  }))
  defer srv.Close()

  p := NewOpenAIProvider(srv.URL, "test-key", newTestLogger(t))
  reply, err := p.GenerateReply(context.Background(), []Message{
    {Role: RoleSystem, Content: "system prompt"},
    {Role: RoleUser, Content: "他是凶手。"},
  }, uuid.New(), uuid.New(), "gpt-4o")
  if err != nil {
    t.Fatalf("generate: %v", err)
  }
  if reply != "不是。" {
    t.Fatalf("expected trimmed reply, got %q", reply)
  }
  if gotAuth != "Bearer test-key" {
    t.Fatalf("unexpected auth header: %q", gotAuth)
  }
  if gotReq.Model != "gpt-4o" || len(gotReq.Messages) != 2 {
    t.Fatalf("unexpected request payload: %+v", gotReq)
  }
}

func TestOpenAIProvider_FailureDegradesToApology(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    http.Error(w, "rate limited", http.StatusTooManyRequests)
  }))
  defer srv.Close()

  p := NewOpenAIProvider(srv.URL, "test-key", newTestLogger(t))
  reply, err := p.GenerateReply(context.Background(), []Message{
    {Role: RoleUser, Content: "他是凶手。"},
  }, uuid.New(), uuid.New(), "gpt-4o")
  if err != nil {
    t.Fatalf("degraded call must not return an error, got %v", err)
  }
  if reply != ApologyReply {
    t.Fatalf("expected apology reply, got %q", reply)
  }
}

func TestOpenAIProvider_MissingKeyDegradesToApology(t *testing.T) {
  p := NewOpenAIProvider("", "", newTestLogger(t))
  reply, err := p.GenerateReply(context.Background(), []Message{
    {Role: RoleUser, Content: "他是凶手。"},
  }, uuid.New(), uuid.New(), "gpt-4o")
  if err != nil {
    t.Fatalf("missing key must degrade, not fail: %v", err)
  }
  if reply != ApologyReply {
    t.Fatalf("expected apology reply, got %q", reply)
  }
}
