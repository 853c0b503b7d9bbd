package llm

import (
  "context"
  "encoding/json"
  "net/http"
  "net/http/httptest"
  "strings"
  "testing"

  "github.com/google/uuid"
)

func TestAnthropicProvider_Success(t *testing.T) {
  var gotKey, gotVersion string
  var gotReq anthropicCompleteReq
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    gotKey = r.Header.Get("x-api-key")
    gotVersion = r.Header.Get("anthropic-version")
    if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
      t.Errorf("decode request: %v", err)
    }
    _ = json.NewEncoder(w).Encode(map[string]string{"completion": " 无关。 "})
  }))
  defer srv.Close()

  p := NewAnthropicProvider(srv.URL, "test-key", newTestLogger(t))
  reply, err := p.GenerateReply(context.Background(), []Message{
    {Role: RoleSystem, Content: "system prompt"},
    {Role: RoleUser, Content: "他有兄弟。"},
    {Role: RoleAssistant, Content: "是的。"},
    {Role: RoleUser, Content: "他是独子。"},
  }, uuid.New(), uuid.New(), "claude-3-5-sonnet-20240620")
  if err != nil {
    t.Fatalf("generate: %v", err)
  }
  if reply != "无关。" {
    t.Fatalf("expected trimmed completion, got %q", reply)
  }
  if gotKey != "test-key" || gotVersion != "2023-06-01" {
    t.Fatalf("unexpected headers: key=%q version=%q", gotKey, gotVersion)
  }
  if !strings.HasSuffix(gotReq.Prompt, assistantPrompt) {
    t.Fatalf("prompt must end with the assistant turn marker, got %q", gotReq.Prompt)
  }
  if strings.Count(gotReq.Prompt, humanPrompt) != 3 {
    t.Fatalf("system and user turns should render as Human turns, got %q", gotReq.Prompt)
  }
}

func TestAnthropicProvider_FailureDegradesToApology(t *testing.T) {
  srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
    http.Error(w, "overloaded", http.StatusServiceUnavailable)
  }))
  defer srv.Close()

  p := NewAnthropicProvider(srv.URL, "test-key", newTestLogger(t))
  reply, err := p.GenerateReply(context.Background(), []Message{
    {Role: RoleUser, Content: "他是凶手。"},
  }, uuid.New(), uuid.New(), "claude-3-5-sonnet-20240620")
  if err != nil {
    t.Fatalf("degraded call must not return an error, got %v", err)
  }
  if reply != ApologyReply {
    t.Fatalf("expected apology reply, got %q", reply)
  }
}
