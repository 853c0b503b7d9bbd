package services

import (
  "context"
  "fmt"
  "strings"

  "github.com/google/uuid"

  "github.com/haigui-org/haigui-backend/internal/llm"
  "github.com/haigui-org/haigui-backend/internal/logger"
  "github.com/haigui-org/haigui-backend/internal/types"
)

// Completion detection modes. Prefix checking is the default; the llm mode
// asks a model to judge the whole transcript against the solution.
const (
  CompletionModePrefix = "prefix"
  CompletionModeLLM    = "llm"
)

// CompletionChecker decides whether the players have reconstructed the
// puzzle's solution.
type CompletionChecker interface {
  CheckStoryCompletion(ctx context.Context, story string, messages []*types.Message) (bool, error)
}

type storyCompletionChecker struct {
  log      *logger.Logger
  registry *llm.Registry
  modelID  string
}

func NewStoryCompletionChecker(log *logger.Logger, registry *llm.Registry, modelID string) CompletionChecker {
  if modelID == "" {
    modelID = "gpt-4o"
  }
  return &storyCompletionChecker{
    log:      log.With("service", "StoryCompletionChecker"),
    registry: registry,
    modelID:  modelID,
  }
}

const completionCheckTemplate = `原始故事：
%s

对话记录：
%s

请分析上述对话记录，判断是否已经还原了原始故事的完整细节。
如果已经还原了完整细节，请只回答"是"；如果还没有完全还原，请只回答"否"。`

func (scc *storyCompletionChecker) CheckStoryCompletion(ctx context.Context, story string, messages []*types.Message) (bool, error) {
  route := llm.Route(scc.modelID)
  provider, err := scc.registry.Get(route.Provider)
  if err != nil {
    return false, err
  }

  var transcript strings.Builder
  for i, m := range messages {
    if i > 0 {
      transcript.WriteString("\n")
    }
    transcript.WriteString(string(m.Role) + ": " + m.Content)
  }

  prompt := []llm.Message{
    {Role: llm.RoleSystem, Content: "你是一个海龟汤游戏的裁判，负责判断玩家是否已经还原了完整的故事细节。"},
    {Role: llm.RoleUser, Content: fmt.Sprintf(completionCheckTemplate, story, transcript.String())},
  }

  reply, err := provider.GenerateReply(ctx, prompt, uuid.Nil, uuid.Nil, route.Model)
  if err != nil {
    return false, err
  }
  if reply == llm.ApologyReply {
    // Provider degraded; treat as not yet solved rather than failing.
    scc.log.Warn("Completion check degraded, assuming story not solved")
    return false, nil
  }
  return strings.TrimSpace(strings.ToLower(reply)) == "是", nil
}

// prefixCompletion reports whether a judge reply amounts to a confirmed
// solve. Replies opening with an affirmative mark the story as reconstructed.
func prefixCompletion(reply string) bool {
  s := strings.ToLower(strings.TrimSpace(reply))
  return strings.HasPrefix(s, "是") || strings.HasPrefix(s, "yes")
}
