package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/haigui-org/haigui-backend/internal/llm"
  "github.com/haigui-org/haigui-backend/internal/logger"
  "github.com/haigui-org/haigui-backend/internal/repos"
  "github.com/haigui-org/haigui-backend/internal/types"
)

type BotService interface {
  CreateBot(ctx context.Context, bot *types.Bot) (*types.Bot, error)
  GetBot(ctx context.Context, botID uuid.UUID) (*types.Bot, error)
  UpdateBot(ctx context.Context, botID uuid.UUID, fields map[string]interface{}) (*types.Bot, error)
  DeleteBot(ctx context.Context, botID uuid.UUID) error

  // GenerateChatReply assembles the judge prompt for the chat's current
  // puzzle, appends the conversation history and asks the routed provider
  // for a reply.
  GenerateChatReply(ctx context.Context, history []*types.Message, chat *types.Chat, botID uuid.UUID) (string, error)
}

type botService struct {
  db        *gorm.DB
  log       *logger.Logger
  botRepo   repos.BotRepo
  registry  *llm.Registry
  modelID   string
}

func NewBotService(db *gorm.DB, log *logger.Logger, botRepo repos.BotRepo, registry *llm.Registry, modelID string) BotService {
  serviceLog := log.With("service", "BotService")
  if modelID == "" {
    modelID = "gpt-4o"
  }
  return &botService{
    db:       db,
    log:      serviceLog,
    botRepo:  botRepo,
    registry: registry,
    modelID:  modelID,
  }
}

func (bs *botService) CreateBot(ctx context.Context, bot *types.Bot) (*types.Bot, error) {
  return bs.botRepo.Create(ctx, nil, bot)
}

func (bs *botService) GetBot(ctx context.Context, botID uuid.UUID) (*types.Bot, error) {
  return bs.botRepo.GetByID(ctx, nil, botID)
}

func (bs *botService) UpdateBot(ctx context.Context, botID uuid.UUID, fields map[string]interface{}) (*types.Bot, error) {
  return bs.botRepo.Update(ctx, nil, botID, fields)
}

func (bs *botService) DeleteBot(ctx context.Context, botID uuid.UUID) error {
  return bs.botRepo.Delete(ctx, nil, botID)
}

const judgeSystemTemplate = `我正在进行一个海龟汤游戏，这是一个情境猜谜游戏。你会根据谜题情境（汤面）进行推理，并通过提问来猜出真相（汤底）。我的任务是回答你的提问。游戏规则如下：

你的提问内容应参考谜题情境（汤面）。你可以提出任何问题，我会根据真相（汤底）帮助你推理，我只会回答你“是的”、“不是”或“无关”。

1. 是的：当玩家的问题直接指向谜题的某个关键点，并且该点与谜题的答案相关且正确时，回答“是的”。
2. 不是：当玩家的问题直接指向谜题的某个关键点，但该点与谜题的答案不相关或不正确时，回答“不是”。
3. 无关：当玩家的问题与谜题的核心内容无关，或者问题本身没有明确的指向性，无法帮助玩家缩小答案范围时，回答“无关”。

汤面：%s
汤底：%s

开始吧！请你提问！`

// judgeFewShotExamples anchors the reply format before the real history.
var judgeFewShotExamples = []llm.Message{
  {Role: llm.RoleUser, Content: "是亲哥哥吗？"},
  {Role: llm.RoleAssistant, Content: "是的。"},
  {Role: llm.RoleUser, Content: "大哥也生病了吗？"},
  {Role: llm.RoleAssistant, Content: "无关，大哥身体一直很健康。"},
  {Role: llm.RoleUser, Content: "你们家里几个人？"},
  {Role: llm.RoleAssistant, Content: "无关，家里有三个兄弟。"},
  {Role: llm.RoleUser, Content: "大哥是想杀我吗？"},
  {Role: llm.RoleAssistant, Content: "不是。"},
}

func (bs *botService) GenerateChatReply(ctx context.Context, history []*types.Message, chat *types.Chat, botID uuid.UUID) (string, error) {
  route := llm.Route(bs.modelID)
  provider, err := bs.registry.Get(route.Provider)
  if err != nil {
    bs.log.Error("No provider registered for route", "provider", route.Provider, "error", err)
    return "", err
  }

  var tangMian, tangDi string
  if chat.CurrentPuzzle != nil {
    tangMian = chat.CurrentPuzzle.TangMian
    tangDi = chat.CurrentPuzzle.TangDi
  }

  msgs := make([]llm.Message, 0, len(history)+len(judgeFewShotExamples)+1)
  msgs = append(msgs, llm.Message{
    Role:    llm.RoleSystem,
    Content: fmt.Sprintf(judgeSystemTemplate, tangMian, tangDi),
  })
  msgs = append(msgs, judgeFewShotExamples...)
  for _, m := range history {
    role := llm.RoleAssistant
    if m.SenderType == types.SenderTypeUser {
      role = llm.RoleUser
    }
    msgs = append(msgs, llm.Message{Role: role, Content: m.Content})
  }

  bs.log.Debug("Invoking generation provider", "provider", route.Provider, "model", route.Model, "chatID", chat.ID, "historyLen", len(history))
  return provider.GenerateReply(ctx, msgs, chat.ID, botID, route.Model)
}
