package llm

import (
  "bytes"
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "io"
  "net/http"
  "strings"
  "time"

  "github.com/google/uuid"

  "github.com/haigui-org/haigui-backend/internal/logger"
)

const (
  humanPrompt     = "\n\nHuman:"
  assistantPrompt = "\n\nAssistant:"
)

// AnthropicProvider flattens the history into a single Human/Assistant
// alternating prompt string and calls a text-completion endpoint.
type AnthropicProvider struct {
  baseURL string
  apiKey  string
  client  *http.Client
  log     *logger.Logger
}

func NewAnthropicProvider(baseURL, apiKey string, log *logger.Logger) *AnthropicProvider {
  if baseURL == "" {
    baseURL = "https://api.anthropic.com"
  }
  return &AnthropicProvider{
    baseURL: strings.TrimRight(baseURL, "/"),
    apiKey:  apiKey,
    client:  &http.Client{Timeout: 90 * time.Second},
    log:     log.With("provider", "anthropic"),
  }
}

type anthropicCompleteReq struct {
  Model             string `json:"model"`
  Prompt            string `json:"prompt"`
  MaxTokensToSample int    `json:"max_tokens_to_sample"`
}

type anthropicCompleteResp struct {
  Completion string `json:"completion"`
  Error      *struct {
    Message string `json:"message"`
  } `json:"error,omitempty"`
}

func (p *AnthropicProvider) GenerateReply(ctx context.Context, history []Message, chatID, botID uuid.UUID, model string) (string, error) {
  reply, err := p.complete(ctx, history, model)
  if err != nil {
    p.log.Warn("Anthropic call failed, degrading to apology reply", "error", err, "chatID", chatID, "botID", botID, "model", model)
    return ApologyReply, nil
  }
  return strings.TrimSpace(reply), nil
}

// buildPrompt renders history as alternating Human/Assistant turns. System
// content has no slot in the completion format, so it leads the first Human
// turn.
func buildPrompt(history []Message) string {
  var b strings.Builder
  for _, m := range history {
    switch m.Role {
    case RoleAssistant:
      b.WriteString(assistantPrompt + " " + m.Content)
    default:
      b.WriteString(humanPrompt + " " + m.Content)
    }
  }
  b.WriteString(assistantPrompt)
  return b.String()
}

func (p *AnthropicProvider) complete(ctx context.Context, history []Message, model string) (string, error) {
  if strings.TrimSpace(p.apiKey) == "" {
    return "", errors.New("anthropic: api key is required")
  }

  body, err := json.Marshal(anthropicCompleteReq{
    Model:             model,
    Prompt:            buildPrompt(history),
    MaxTokensToSample: 1000,
  })
  if err != nil {
    return "", err
  }

  url := fmt.Sprintf("%s/v1/complete", p.baseURL)
  req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
  if err != nil {
    return "", err
  }
  req.Header.Set("Content-Type", "application/json")
  req.Header.Set("x-api-key", p.apiKey)
  req.Header.Set("anthropic-version", "2023-06-01")

  resp, err := p.client.Do(req)
  if err != nil {
    return "", err
  }
  defer resp.Body.Close()

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
    msg := strings.TrimSpace(string(raw))
    if msg == "" {
      msg = fmt.Sprintf("status %d", resp.StatusCode)
    }
    return "", fmt.Errorf("anthropic: %s", msg)
  }

  var decoded anthropicCompleteResp
  if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
    return "", err
  }
  if decoded.Error != nil && decoded.Error.Message != "" {
    return "", errors.New(decoded.Error.Message)
  }
  return decoded.Completion, nil
}
