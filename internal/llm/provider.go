package llm

import (
  "context"

  "github.com/google/uuid"
)

// Message is one turn of conversation in provider-neutral form.
type Message struct {
  Role    string `json:"role"`
  Content string `json:"content"`
}

// Provider generates a judge reply from an ordered conversation history.
// Implementations swallow transport and API errors and return ApologyReply
// instead, so a provider outage degrades to a scripted reply rather than a
// failed request.
type Provider interface {
  GenerateReply(ctx context.Context, history []Message, chatID, botID uuid.UUID, model string) (string, error)
}

// ApologyReply is returned verbatim whenever a provider call fails.
const ApologyReply = "抱歉，生成响应时出现了错误。"

const (
  RoleSystem    = "system"
  RoleUser      = "user"
  RoleAssistant = "assistant"
)
