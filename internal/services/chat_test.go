package services

import (
  "context"
  "strings"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/haigui-org/haigui-backend/internal/llm"
  "github.com/haigui-org/haigui-backend/internal/types"
)

func TestCreateChat_AttachesJudgeAndCreator(t *testing.T) {
  db := openTestDB(t)
  seedJudgeBot(t, db)
  creator := seedUser(t, db, "alice")

  cs := newTestChatService(t, db, &scriptedProvider{replies: []string{"不是。"}}, CompletionModePrefix)

  chat, err := cs.CreateChat(context.Background(), "第一局", creator.ID, types.ChatTypeSingle)
  if err != nil {
    t.Fatalf("create chat: %v", err)
  }
  if len(chat.Bots) != 1 || chat.Bots[0].ID != types.JudgeBotID {
    t.Fatalf("expected exactly the judge bot attached, got %d bots", len(chat.Bots))
  }
  if len(chat.Users) != 1 || chat.Users[0].ID != creator.ID {
    t.Fatalf("expected exactly the creator as member, got %d users", len(chat.Users))
  }
  if !chat.IsActive {
    t.Fatalf("expected new chat to be active")
  }
}

func TestCreateChat_MissingCreator(t *testing.T) {
  db := openTestDB(t)
  seedJudgeBot(t, db)

  cs := newTestChatService(t, db, &scriptedProvider{replies: []string{"不是。"}}, CompletionModePrefix)

  if _, err := cs.CreateChat(context.Background(), "无主之局", uuid.New(), types.ChatTypeSingle); err == nil {
    t.Fatalf("expected error for unknown creator")
  }
}

func TestAddMessageAndGetReply_PersistsPair(t *testing.T) {
  db := openTestDB(t)
  seedJudgeBot(t, db)
  creator := seedUser(t, db, "bob")

  prov := &scriptedProvider{replies: []string{"不是。"}}
  cs := newTestChatService(t, db, prov, CompletionModePrefix)

  chat, err := cs.CreateChat(context.Background(), "推理局", creator.ID, types.ChatTypeSingle)
  if err != nil {
    t.Fatalf("create chat: %v", err)
  }

  messages, err := cs.AddMessageAndGetReply(context.Background(), chat.ID, &types.Message{
    SenderID: &creator.ID,
    Content:  "他是自杀的。",
  })
  if err != nil {
    t.Fatalf("add message: %v", err)
  }
  if len(messages) != 2 {
    t.Fatalf("expected [user, bot] pair, got %d messages", len(messages))
  }
  if messages[0].SenderType != types.SenderTypeUser || messages[0].Role != types.MessageRoleUser {
    t.Fatalf("first message should be the user's, got %s/%s", messages[0].SenderType, messages[0].Role)
  }
  if messages[1].SenderType != types.SenderTypeBot || messages[1].Role != types.MessageRoleAssistant {
    t.Fatalf("second message should be the judge's, got %s/%s", messages[1].SenderType, messages[1].Role)
  }
  if messages[1].Content != "不是。" {
    t.Fatalf("unexpected judge reply: %q", messages[1].Content)
  }
  if messages[1].SenderID == nil || *messages[1].SenderID != types.JudgeBotID {
    t.Fatalf("judge reply should carry the judge bot id")
  }

  persisted, err := cs.GetChatMessages(context.Background(), chat.ID, 0)
  if err != nil {
    t.Fatalf("load messages: %v", err)
  }
  if len(persisted) != 2 {
    t.Fatalf("expected both messages persisted, got %d", len(persisted))
  }
}

func TestAddMessageAndGetReply_PromptCarriesPuzzle(t *testing.T) {
  db := openTestDB(t)
  seedJudgeBot(t, db)
  creator := seedUser(t, db, "carol")

  prov := &scriptedProvider{replies: []string{"无关。"}}
  cs := newTestChatService(t, db, prov, CompletionModePrefix)

  chat, err := cs.CreateChat(context.Background(), "带谜题的局", creator.ID, types.ChatTypeSingle)
  if err != nil {
    t.Fatalf("create chat: %v", err)
  }
  attachPuzzle(t, db, chat.ID, "雪地里有一具尸体。", "他是跳伞失败摔死的。")

  if _, err := cs.AddMessageAndGetReply(context.Background(), chat.ID, &types.Message{
    SenderID: &creator.ID,
    Content:  "他死在室外。",
  }); err != nil {
    t.Fatalf("add message: %v", err)
  }

  if len(prov.calls) != 1 {
    t.Fatalf("expected one provider call, got %d", len(prov.calls))
  }
  prompt := prov.calls[0]
  if prompt[0].Role != llm.RoleSystem {
    t.Fatalf("first prompt message should be the system prompt, got role %s", prompt[0].Role)
  }
  if !strings.Contains(prompt[0].Content, "雪地里有一具尸体。") ||
    !strings.Contains(prompt[0].Content, "他是跳伞失败摔死的。") {
    t.Fatalf("system prompt should embed the puzzle surface and solution")
  }
  last := prompt[len(prompt)-1]
  if last.Role != llm.RoleUser || last.Content != "他死在室外。" {
    t.Fatalf("prompt should end with the player's message, got %s %q", last.Role, last.Content)
  }
}

func TestAddMessageAndGetReply_CompletionAppendsSystemMessage(t *testing.T) {
  db := openTestDB(t)
  seedJudgeBot(t, db)
  creator := seedUser(t, db, "dave")

  prov := &scriptedProvider{replies: []string{"是的，完全正确。"}}
  cs := newTestChatService(t, db, prov, CompletionModePrefix)

  chat, err := cs.CreateChat(context.Background(), "收官局", creator.ID, types.ChatTypeSingle)
  if err != nil {
    t.Fatalf("create chat: %v", err)
  }
  attachPuzzle(t, db, chat.ID, "汤面", "汤底")

  messages, err := cs.AddMessageAndGetReply(context.Background(), chat.ID, &types.Message{
    SenderID: &creator.ID,
    Content:  "他就是这样死的。",
  })
  if err != nil {
    t.Fatalf("add message: %v", err)
  }
  if len(messages) != 3 {
    t.Fatalf("expected [user, bot, system], got %d messages", len(messages))
  }
  final := messages[2]
  if final.SenderType != types.SenderTypeSystem || final.Role != types.MessageRoleSystem {
    t.Fatalf("closing message should be a system message, got %s/%s", final.SenderType, final.Role)
  }
  if final.Content != StoryCompletedMessage {
    t.Fatalf("unexpected closing message: %q", final.Content)
  }
}

func TestAddMessageAndGetReply_NoCompletionWithoutPuzzle(t *testing.T) {
  db := openTestDB(t)
  seedJudgeBot(t, db)
  creator := seedUser(t, db, "erin")

  prov := &scriptedProvider{replies: []string{"是的。"}}
  cs := newTestChatService(t, db, prov, CompletionModePrefix)

  chat, err := cs.CreateChat(context.Background(), "无谜题的局", creator.ID, types.ChatTypeSingle)
  if err != nil {
    t.Fatalf("create chat: %v", err)
  }

  messages, err := cs.AddMessageAndGetReply(context.Background(), chat.ID, &types.Message{
    SenderID: &creator.ID,
    Content:  "他死了。",
  })
  if err != nil {
    t.Fatalf("add message: %v", err)
  }
  if len(messages) != 2 {
    t.Fatalf("affirmative reply without a puzzle must not close the round, got %d messages", len(messages))
  }
}

func TestAddMessageAndGetReply_ApologyIsNotAnError(t *testing.T) {
  db := openTestDB(t)
  seedJudgeBot(t, db)
  creator := seedUser(t, db, "frank")

  // Real providers swallow failures and hand back the apology string.
  prov := &scriptedProvider{replies: []string{llm.ApologyReply}}
  cs := newTestChatService(t, db, prov, CompletionModePrefix)

  chat, err := cs.CreateChat(context.Background(), "故障局", creator.ID, types.ChatTypeSingle)
  if err != nil {
    t.Fatalf("create chat: %v", err)
  }
  attachPuzzle(t, db, chat.ID, "汤面", "汤底")

  messages, err := cs.AddMessageAndGetReply(context.Background(), chat.ID, &types.Message{
    SenderID: &creator.ID,
    Content:  "他是被害的。",
  })
  if err != nil {
    t.Fatalf("provider degradation must not fail the request: %v", err)
  }
  if len(messages) != 2 {
    t.Fatalf("expected [user, bot], got %d messages", len(messages))
  }
  if messages[1].Content != llm.ApologyReply {
    t.Fatalf("expected apology reply, got %q", messages[1].Content)
  }
}

func TestAddUserToChat_Idempotent(t *testing.T) {
  db := openTestDB(t)
  seedJudgeBot(t, db)
  creator := seedUser(t, db, "grace")
  guest := seedUser(t, db, "heidi")

  cs := newTestChatService(t, db, &scriptedProvider{replies: []string{"不是。"}}, CompletionModePrefix)

  chat, err := cs.CreateChat(context.Background(), "多人局", creator.ID, types.ChatTypeGroup)
  if err != nil {
    t.Fatalf("create chat: %v", err)
  }

  for i := 0; i < 2; i++ {
    updated, aErr := cs.AddUserToChat(context.Background(), chat.ID, guest.ID)
    if aErr != nil {
      t.Fatalf("add user round %d: %v", i+1, aErr)
    }
    if len(updated.Users) != 2 {
      t.Fatalf("round %d: expected 2 members, got %d", i+1, len(updated.Users))
    }
  }

  for i := 0; i < 2; i++ {
    updated, rErr := cs.RemoveUserFromChat(context.Background(), chat.ID, guest.ID)
    if rErr != nil {
      t.Fatalf("remove user round %d: %v", i+1, rErr)
    }
    if len(updated.Users) != 1 {
      t.Fatalf("round %d: expected only the creator left, got %d members", i+1, len(updated.Users))
    }
  }
}

func TestGetChat_CarriesLastMessage(t *testing.T) {
  db := openTestDB(t)
  seedJudgeBot(t, db)
  creator := seedUser(t, db, "dora")

  cs := newTestChatService(t, db, &scriptedProvider{replies: []string{"不是。"}}, CompletionModePrefix)

  chat, err := cs.CreateChat(context.Background(), "留言局", creator.ID, types.ChatTypeSingle)
  if err != nil {
    t.Fatalf("create chat: %v", err)
  }

  loaded, err := cs.GetChat(context.Background(), chat.ID)
  if err != nil {
    t.Fatalf("get chat: %v", err)
  }
  if loaded.LastMessage != nil {
    t.Fatalf("fresh chat should have no last message, got %+v", loaded.LastMessage)
  }

  base := time.Now().Add(-time.Minute)
  for i, content := range []string{"第一问。", "第二问。"} {
    msg := &types.Message{
      ID:         uuid.New(),
      ChatID:     chat.ID,
      SenderID:   &creator.ID,
      SenderType: types.SenderTypeUser,
      Role:       types.MessageRoleUser,
      Content:    content,
      CreatedAt:  base.Add(time.Duration(i) * time.Second),
    }
    if err := db.Create(msg).Error; err != nil {
      t.Fatalf("seed message %d: %v", i, err)
    }
  }

  loaded, err = cs.GetChat(context.Background(), chat.ID)
  if err != nil {
    t.Fatalf("get chat: %v", err)
  }
  if loaded.LastMessage == nil || loaded.LastMessage.Content != "第二问。" {
    t.Fatalf("expected the newest message as last_message, got %+v", loaded.LastMessage)
  }

  chats, err := cs.GetChatsByCreator(context.Background(), creator.ID, 10)
  if err != nil {
    t.Fatalf("get chats by creator: %v", err)
  }
  if len(chats) != 1 {
    t.Fatalf("expected one chat for creator, got %d", len(chats))
  }
  if chats[0].LastMessage == nil || chats[0].LastMessage.Content != "第二问。" {
    t.Fatalf("creator listing should carry last_message, got %+v", chats[0].LastMessage)
  }
}

func attachPuzzle(t *testing.T, db *gorm.DB, chatID uuid.UUID, tangMian, tangDi string) {
  t.Helper()
  puzzle := &types.Puzzle{
    ID:       uuid.New(),
    Title:    "测试谜题",
    TangMian: tangMian,
    TangDi:   tangDi,
  }
  if err := db.Create(puzzle).Error; err != nil {
    t.Fatalf("create puzzle: %v", err)
  }
  if err := db.Model(&types.Chat{}).Where("id = ?", chatID).
    Update("current_puzzle_id", puzzle.ID).Error; err != nil {
    t.Fatalf("attach puzzle: %v", err)
  }
}
