package services

import (
  "context"
  "fmt"
  "strings"

  "github.com/haigui-org/haigui-backend/internal/logger"
)

// PromptValidation is the outcome of checking a player prompt before it is
// sent into a chat.
type PromptValidation struct {
  IsValid bool   `json:"is_valid"`
  Reason  string `json:"reason"`
}

// interrogativeKeywords are substrings that mark a prompt as a question
// rather than a statement. Players are expected to phrase guesses as
// declarative sentences the judge can confirm or deny.
var interrogativeKeywords = []string{
  "为什么", "怎么", "什么", "谁", "哪里", "哪儿", "什么时候", "如何",
  "多少", "哪个", "几", "怎么回事", "怎么样", "为啥", "如何回事", "怎么不", "能否",
  "是否", "可否", "有无", "怎样", "哪些", "为哪般", "啥", "啥子", "哪一",
  "多长时间", "怎样才", "哪个地方", "哪种", "哪怕", "怎样的", "哪一位", "为何",
  "哪里能", "何时", "何地", "多少个",
  "怎么做", "什么原因", "什么情况", "怎样的情况", "什么问题",
  "谁来", "什么时间",
}

const (
  validPromptReason   = "提示是有效的海龟汤提问。"
  invalidPromptReason = "提示包含无效关键词：'%s'。海龟汤提问应该是陈述句，不应包含疑问词。"
)

type PromptValidatorService interface {
  ValidatePrompt(ctx context.Context, prompt string) PromptValidation
}

type promptValidatorService struct {
  log *logger.Logger
}

func NewPromptValidatorService(log *logger.Logger) PromptValidatorService {
  return &promptValidatorService{log: log.With("service", "PromptValidatorService")}
}

func (pvs *promptValidatorService) ValidatePrompt(ctx context.Context, prompt string) PromptValidation {
  for _, keyword := range interrogativeKeywords {
    if strings.Contains(prompt, keyword) {
      pvs.log.Debug("Prompt rejected", "keyword", keyword)
      return PromptValidation{
        IsValid: false,
        Reason:  fmt.Sprintf(invalidPromptReason, keyword),
      }
    }
  }
  return PromptValidation{IsValid: true, Reason: validPromptReason}
}
