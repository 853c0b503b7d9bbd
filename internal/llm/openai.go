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

// OpenAIProvider formats the history as a multi-turn exchange and calls an
// OpenAI-style chat-completions endpoint.
type OpenAIProvider struct {
  baseURL string
  apiKey  string
  client  *http.Client
  log     *logger.Logger
}

func NewOpenAIProvider(baseURL, apiKey string, log *logger.Logger) *OpenAIProvider {
  if baseURL == "" {
    baseURL = "https://api.openai.com/v1"
  }
  return &OpenAIProvider{
    baseURL: strings.TrimRight(baseURL, "/"),
    apiKey:  apiKey,
    client:  &http.Client{Timeout: 90 * time.Second},
    log:     log.With("provider", "openai"),
  }
}

type openaiMsg struct {
  Role    string `json:"role"`
  Content string `json:"content"`
}

type openaiChatReq struct {
  Model       string      `json:"model"`
  Messages    []openaiMsg `json:"messages"`
  Temperature float64     `json:"temperature"`
}

type openaiChatResp struct {
  Choices []struct {
    Message openaiMsg `json:"message"`
  } `json:"choices"`
  Error *struct {
    Message string `json:"message"`
  } `json:"error,omitempty"`
}

func (p *OpenAIProvider) GenerateReply(ctx context.Context, history []Message, chatID, botID uuid.UUID, model string) (string, error) {
  reply, err := p.chat(ctx, history, model)
  if err != nil {
    p.log.Warn("OpenAI call failed, degrading to apology reply", "error", err, "chatID", chatID, "botID", botID, "model", model)
    return ApologyReply, nil
  }
  return strings.TrimSpace(reply), nil
}

func (p *OpenAIProvider) chat(ctx context.Context, history []Message, model string) (string, error) {
  if strings.TrimSpace(p.apiKey) == "" {
    return "", errors.New("openai: api key is required")
  }

  msgs := make([]openaiMsg, 0, len(history))
  for _, m := range history {
    msgs = append(msgs, openaiMsg{Role: m.Role, Content: m.Content})
  }
  body, err := json.Marshal(openaiChatReq{
    Model:       model,
    Messages:    msgs,
    Temperature: 0.7,
  })
  if err != nil {
    return "", err
  }

  url := fmt.Sprintf("%s/chat/completions", p.baseURL)
  req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
  if err != nil {
    return "", err
  }
  req.Header.Set("Content-Type", "application/json")
  req.Header.Set("Authorization", "Bearer "+p.apiKey)

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
    return "", fmt.Errorf("openai: %s", msg)
  }

  var decoded openaiChatResp
  if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
    return "", err
  }
  if decoded.Error != nil && decoded.Error.Message != "" {
    return "", errors.New(decoded.Error.Message)
  }
  if len(decoded.Choices) == 0 {
    return "", errors.New("openai: empty response")
  }
  return decoded.Choices[0].Message.Content, nil
}
