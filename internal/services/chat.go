package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/haigui-org/haigui-backend/internal/apperrors"
  "github.com/haigui-org/haigui-backend/internal/logger"
  "github.com/haigui-org/haigui-backend/internal/normalization"
  "github.com/haigui-org/haigui-backend/internal/repos"
  "github.com/haigui-org/haigui-backend/internal/types"
)

// StoryCompletedMessage is appended as a system message once the judge
// confirms the story has been fully reconstructed.
const StoryCompletedMessage = "恭喜！你已经成功还原了完整的故事细节。"

// MessageBroadcaster fans a persisted message out to connected listeners.
// Implementations must not block the caller.
type MessageBroadcaster interface {
  BroadcastChatMessage(chatID uuid.UUID, msg *types.Message)
}

type ChatService interface {
  // CreateChat opens a chat for the creator. The judge bot is always the
  // chat's single bot and the creator its initial member.
  CreateChat(ctx context.Context, title string, creatorID uuid.UUID, chatType types.ChatType) (*types.Chat, error)

  GetChat(ctx context.Context, chatID uuid.UUID) (*types.Chat, error)
  GetAllChats(ctx context.Context) ([]*types.Chat, error)
  GetChatsByCreator(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Chat, error)
  GetChatMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]*types.Message, error)

  AddUserToChat(ctx context.Context, chatID, userID uuid.UUID) (*types.Chat, error)
  RemoveUserFromChat(ctx context.Context, chatID, userID uuid.UUID) (*types.Chat, error)

  // AddMessageAndGetReply persists the incoming player message, asks the
  // judge bot for a reply and persists that too. When the reply confirms a
  // solve, a closing system message is appended. All persisted messages are
  // returned in order.
  AddMessageAndGetReply(ctx context.Context, chatID uuid.UUID, incoming *types.Message) ([]*types.Message, error)
}

type chatService struct {
  db             *gorm.DB
  log            *logger.Logger
  chatRepo       repos.ChatRepo
  messageRepo    repos.MessageRepo
  userRepo       repos.UserRepo
  botRepo        repos.BotRepo
  botService     BotService
  checker        CompletionChecker
  broadcaster    MessageBroadcaster
  completionMode string
  historyLimit   int
}

func NewChatService(
  db *gorm.DB,
  log *logger.Logger,
  chatRepo repos.ChatRepo,
  messageRepo repos.MessageRepo,
  userRepo repos.UserRepo,
  botRepo repos.BotRepo,
  botService BotService,
  checker CompletionChecker,
  broadcaster MessageBroadcaster,
  completionMode string,
) ChatService {
  serviceLog := log.With("service", "ChatService")
  if completionMode != CompletionModeLLM {
    completionMode = CompletionModePrefix
  }
  return &chatService{
    db:             db,
    log:            serviceLog,
    chatRepo:       chatRepo,
    messageRepo:    messageRepo,
    userRepo:       userRepo,
    botRepo:        botRepo,
    botService:     botService,
    checker:        checker,
    broadcaster:    broadcaster,
    completionMode: completionMode,
    historyLimit:   50,
  }
}

func (cs *chatService) CreateChat(ctx context.Context, title string, creatorID uuid.UUID, chatType types.ChatType) (*types.Chat, error) {
  title = normalization.ParseInputString(title)
  if title == "" {
    return nil, fmt.Errorf("%w: chat title is required", apperrors.ErrInvalidInput)
  }
  if chatType == "" {
    chatType = types.ChatTypeSingle
  }
  if !chatType.Valid() {
    return nil, fmt.Errorf("%w: invalid chat type '%s'", apperrors.ErrInvalidInput, chatType)
  }

  creator, cErr := cs.userRepo.GetByID(ctx, nil, creatorID)
  if cErr != nil {
    return nil, cErr
  }
  judge, jErr := cs.botRepo.GetByID(ctx, nil, types.JudgeBotID)
  if jErr != nil {
    cs.log.Error("Judge bot is missing, chat creation is impossible", "error", jErr)
    return nil, jErr
  }

  chat := &types.Chat{
    Title:     title,
    ChatType:  chatType,
    CreatorID: creatorID,
    IsActive:  true,
  }
  var created *types.Chat
  if err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    c, crErr := cs.chatRepo.Create(ctx, tx, chat, []*types.User{creator}, []*types.Bot{judge})
    if crErr != nil {
      cs.log.Warn("Failed to create chat, Cannot proceed. Returning error.", "error", crErr)
      return crErr
    }
    created = c
    return nil
  }); err != nil {
    return nil, err
  }
  cs.log.Info("Created chat :)", "chatID", created.ID, "creatorID", creatorID)
  return created, nil
}

func (cs *chatService) GetChat(ctx context.Context, chatID uuid.UUID) (*types.Chat, error) {
  chat, err := cs.chatRepo.GetByID(ctx, nil, chatID)
  if err != nil {
    return nil, err
  }
  cs.attachLastMessage(ctx, chat)
  return chat, nil
}

func (cs *chatService) GetAllChats(ctx context.Context) ([]*types.Chat, error) {
  chats, err := cs.chatRepo.GetAll(ctx, nil)
  if err != nil {
    return nil, err
  }
  cs.attachLastMessage(ctx, chats...)
  return chats, nil
}

func (cs *chatService) GetChatsByCreator(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Chat, error) {
  chats, err := cs.chatRepo.GetByCreator(ctx, nil, userID, limit)
  if err != nil {
    return nil, err
  }
  cs.attachLastMessage(ctx, chats...)
  return chats, nil
}

// attachLastMessage decorates chats with their most recent message. A failed
// lookup only logs, the chat itself is still returned.
func (cs *chatService) attachLastMessage(ctx context.Context, chats ...*types.Chat) {
  for _, chat := range chats {
    if chat == nil {
      continue
    }
    last, err := cs.messageRepo.GetLast(ctx, nil, chat.ID)
    if err != nil {
      cs.log.Warn("Failed to load last message for chat", "chatID", chat.ID, "error", err)
      continue
    }
    chat.LastMessage = last
  }
}

func (cs *chatService) GetChatMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]*types.Message, error) {
  if _, err := cs.chatRepo.GetByID(ctx, nil, chatID); err != nil {
    return nil, err
  }
  return cs.messageRepo.GetHistory(ctx, nil, chatID, limit)
}

func (cs *chatService) AddUserToChat(ctx context.Context, chatID, userID uuid.UUID) (*types.Chat, error) {
  if _, err := cs.userRepo.GetByID(ctx, nil, userID); err != nil {
    return nil, err
  }
  return cs.chatRepo.AddUser(ctx, nil, chatID, userID)
}

func (cs *chatService) RemoveUserFromChat(ctx context.Context, chatID, userID uuid.UUID) (*types.Chat, error) {
  return cs.chatRepo.RemoveUser(ctx, nil, chatID, userID)
}

func (cs *chatService) AddMessageAndGetReply(ctx context.Context, chatID uuid.UUID, incoming *types.Message) ([]*types.Message, error) {
  chat, chErr := cs.chatRepo.GetByID(ctx, nil, chatID)
  if chErr != nil {
    return nil, chErr
  }

  incoming.Content = normalization.ParseInputString(incoming.Content)
  if incoming.Content == "" {
    return nil, fmt.Errorf("%w: message content is required", apperrors.ErrInvalidInput)
  }
  if incoming.SenderType == "" {
    incoming.SenderType = types.SenderTypeUser
  }
  if !incoming.SenderType.Valid() {
    return nil, fmt.Errorf("%w: invalid sender type '%s'", apperrors.ErrInvalidInput, incoming.SenderType)
  }
  if incoming.Role == "" {
    incoming.Role = types.MessageRoleUser
  }
  if !incoming.Role.Valid() {
    return nil, fmt.Errorf("%w: invalid message role '%s'", apperrors.ErrInvalidInput, incoming.Role)
  }
  incoming.ChatID = chatID

  judge := cs.findJudgeBot(chat)
  if judge == nil {
    cs.log.Error("Chat has no judge bot attached", "chatID", chatID)
    return nil, fmt.Errorf("%w: judge bot '%s' is not attached to chat", apperrors.ErrNotFound, types.JudgeBotName)
  }

  userMsg, uErr := cs.messageRepo.Create(ctx, nil, incoming)
  if uErr != nil {
    cs.log.Warn("Failed to persist incoming message, Cannot proceed. Returning error.", "error", uErr)
    return nil, uErr
  }

  history, hErr := cs.messageRepo.GetHistory(ctx, nil, chatID, cs.historyLimit)
  if hErr != nil {
    cs.log.Warn("Failed to load chat history, Cannot proceed. Returning error.", "error", hErr)
    return nil, hErr
  }

  reply, gErr := cs.botService.GenerateChatReply(ctx, history, chat, judge.ID)
  if gErr != nil {
    return nil, gErr
  }

  botMsg, bErr := cs.messageRepo.Create(ctx, nil, &types.Message{
    ChatID:     chatID,
    SenderID:   &judge.ID,
    SenderType: types.SenderTypeBot,
    Role:       types.MessageRoleAssistant,
    Content:    reply,
  })
  if bErr != nil {
    cs.log.Warn("Failed to persist judge reply, Cannot proceed. Returning error.", "error", bErr)
    return nil, bErr
  }

  messages := []*types.Message{userMsg, botMsg}

  done, dErr := cs.storyCompleted(ctx, chat, reply, append(history, botMsg))
  if dErr != nil {
    cs.log.Warn("Completion check failed, continuing without closing the round", "error", dErr)
  }
  if done {
    sysMsg, sErr := cs.messageRepo.Create(ctx, nil, &types.Message{
      ChatID:     chatID,
      SenderType: types.SenderTypeSystem,
      Role:       types.MessageRoleSystem,
      Content:    StoryCompletedMessage,
    })
    if sErr != nil {
      cs.log.Warn("Failed to persist completion message, Cannot proceed. Returning error.", "error", sErr)
      return nil, sErr
    }
    messages = append(messages, sysMsg)
    cs.log.Info("Story solved :)", "chatID", chatID)
  }

  if cs.broadcaster != nil {
    for _, m := range messages {
      cs.broadcaster.BroadcastChatMessage(chatID, m)
    }
  }
  return messages, nil
}

func (cs *chatService) findJudgeBot(chat *types.Chat) *types.Bot {
  for _, b := range chat.Bots {
    if b != nil && b.ID == types.JudgeBotID {
      return b
    }
  }
  return nil
}

// storyCompleted applies the configured completion policy. Prefix mode only
// fires when the chat actually has a puzzle with a solution; llm mode defers
// to the checker over the full recent transcript.
func (cs *chatService) storyCompleted(ctx context.Context, chat *types.Chat, reply string, transcript []*types.Message) (bool, error) {
  if chat.CurrentPuzzle == nil || chat.CurrentPuzzle.TangDi == "" {
    return false, nil
  }
  if cs.completionMode == CompletionModeLLM && cs.checker != nil {
    return cs.checker.CheckStoryCompletion(ctx, chat.CurrentPuzzle.TangDi, transcript)
  }
  return prefixCompletion(reply), nil
}
