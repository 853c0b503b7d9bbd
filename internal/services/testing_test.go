package services

import (
  "context"
  "fmt"
  "testing"

  gormsqlite "github.com/glebarez/sqlite"
  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/haigui-org/haigui-backend/internal/llm"
  "github.com/haigui-org/haigui-backend/internal/repos"
  "github.com/haigui-org/haigui-backend/internal/types"
)

func openTestDB(t *testing.T) *gorm.DB {
  t.Helper()
  dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
  db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
  if err != nil {
    t.Fatalf("open sqlite: %v", err)
  }
  if err := db.AutoMigrate(
    &types.User{},
    &types.Bot{},
    &types.Puzzle{},
    &types.Chat{},
    &types.Message{},
    &types.ChatPuzzleHistory{},
  ); err != nil {
    t.Fatalf("automigrate: %v", err)
  }
  return db
}

// scriptedProvider replays canned replies in order, falling back to the last
// one. It records what it was asked so prompt assembly can be asserted on.
type scriptedProvider struct {
  replies []string
  calls   [][]llm.Message
}

func (p *scriptedProvider) GenerateReply(ctx context.Context, history []llm.Message, chatID, botID uuid.UUID, model string) (string, error) {
  p.calls = append(p.calls, append([]llm.Message(nil), history...))
  idx := len(p.calls) - 1
  if idx >= len(p.replies) {
    idx = len(p.replies) - 1
  }
  return p.replies[idx], nil
}

func newTestRegistry(p llm.Provider) *llm.Registry {
  reg := llm.NewRegistry()
  reg.Register(llm.ProviderOpenAI, p)
  reg.Register(llm.ProviderAnthropic, p)
  return reg
}

func seedJudgeBot(t *testing.T, db *gorm.DB) *types.Bot {
  t.Helper()
  judge := &types.Bot{
    ID:       types.JudgeBotID,
    Name:     types.JudgeBotName,
    IsActive: true,
  }
  if err := db.Create(judge).Error; err != nil {
    t.Fatalf("seed judge bot: %v", err)
  }
  return judge
}

func seedUser(t *testing.T, db *gorm.DB, username string) *types.User {
  t.Helper()
  user := &types.User{
    ID:       uuid.New(),
    Username: username,
    Password: "x",
  }
  if err := db.Create(user).Error; err != nil {
    t.Fatalf("seed user %s: %v", username, err)
  }
  return user
}

func newTestChatService(t *testing.T, db *gorm.DB, provider llm.Provider, completionMode string) ChatService {
  t.Helper()
  log := newTestLogger(t)
  userRepo := repos.NewUserRepo(db, log)
  botRepo := repos.NewBotRepo(db, log)
  chatRepo := repos.NewChatRepo(db, log)
  messageRepo := repos.NewMessageRepo(db, log)
  registry := newTestRegistry(provider)
  botService := NewBotService(db, log, botRepo, registry, "gpt-4o")
  checker := NewStoryCompletionChecker(log, registry, "gpt-4o")
  return NewChatService(db, log, chatRepo, messageRepo, userRepo, botRepo, botService, checker, nil, completionMode)
}
