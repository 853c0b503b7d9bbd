package handlers

import (
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/haigui-org/haigui-backend/internal/requestdata"
  "github.com/haigui-org/haigui-backend/internal/services"
  "github.com/haigui-org/haigui-backend/internal/types"
)

type ChatHandler struct {
  chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
  return &ChatHandler{chatService: chatService}
}

func (ch *ChatHandler) Create(c *gin.Context) {
  var req struct {
    Title     string `json:"title"`
    ChatType  string `json:"chat_type,omitempty"`
    CreatorID string `json:"creator_id,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }

  creatorID := uuid.Nil
  if req.CreatorID != "" {
    parsed, err := uuid.Parse(req.CreatorID)
    if err != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator_id"})
      return
    }
    creatorID = parsed
  } else if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
    creatorID = rd.UserID
  }
  if creatorID == uuid.Nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "creator_id is required"})
    return
  }

  chat, err := ch.chatService.CreateChat(c.Request.Context(), req.Title, creatorID, types.ChatType(req.ChatType))
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, chat)
}

func (ch *ChatHandler) Get(c *gin.Context) {
  chatID, ok := parseUUIDParam(c, "chat_id")
  if !ok {
    return
  }
  chat, err := ch.chatService.GetChat(c.Request.Context(), chatID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, chat)
}

func (ch *ChatHandler) GetAll(c *gin.Context) {
  chats, err := ch.chatService.GetAllChats(c.Request.Context())
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, chats)
}

func (ch *ChatHandler) GetByUser(c *gin.Context) {
  userID, ok := parseUUIDParam(c, "user_id")
  if !ok {
    return
  }
  limit := parseLimitQuery(c)
  chats, err := ch.chatService.GetChatsByCreator(c.Request.Context(), userID, limit)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, chats)
}

// AddMessage persists the player message and returns it together with the
// judge's reply (and the closing system message when the story gets solved).
func (ch *ChatHandler) AddMessage(c *gin.Context) {
  chatID, ok := parseUUIDParam(c, "chat_id")
  if !ok {
    return
  }
  var req struct {
    Content    string `json:"content"`
    SenderID   string `json:"sender_id,omitempty"`
    SenderType string `json:"sender_type,omitempty"`
    Role       string `json:"role,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }

  msg := types.Message{
    Content:    req.Content,
    SenderType: types.SenderType(req.SenderType),
    Role:       types.MessageRole(req.Role),
  }
  if req.SenderID != "" {
    senderID, err := uuid.Parse(req.SenderID)
    if err != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sender_id"})
      return
    }
    msg.SenderID = &senderID
  } else if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
    userID := rd.UserID
    msg.SenderID = &userID
  }

  messages, err := ch.chatService.AddMessageAndGetReply(c.Request.Context(), chatID, &msg)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, messages)
}

func (ch *ChatHandler) GetMessages(c *gin.Context) {
  chatID, ok := parseUUIDParam(c, "chat_id")
  if !ok {
    return
  }
  limit := parseLimitQuery(c)
  messages, err := ch.chatService.GetChatMessages(c.Request.Context(), chatID, limit)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, messages)
}

func (ch *ChatHandler) AddUser(c *gin.Context) {
  chatID, ok := parseUUIDParam(c, "chat_id")
  if !ok {
    return
  }
  userID, ok := parseUUIDParam(c, "user_id")
  if !ok {
    return
  }
  chat, err := ch.chatService.AddUserToChat(c.Request.Context(), chatID, userID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, chat)
}

func (ch *ChatHandler) RemoveUser(c *gin.Context) {
  chatID, ok := parseUUIDParam(c, "chat_id")
  if !ok {
    return
  }
  userID, ok := parseUUIDParam(c, "user_id")
  if !ok {
    return
  }
  chat, err := ch.chatService.RemoveUserFromChat(c.Request.Context(), chatID, userID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, chat)
}

func parseLimitQuery(c *gin.Context) int {
  raw := c.Query("limit")
  if raw == "" {
    return 0
  }
  limit, err := strconv.Atoi(raw)
  if err != nil || limit < 0 {
    return 0
  }
  return limit
}
