package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/haigui-org/haigui-backend/internal/services"
  "github.com/haigui-org/haigui-backend/internal/types"
)

type BotHandler struct {
  botService services.BotService
}

func NewBotHandler(botService services.BotService) *BotHandler {
  return &BotHandler{botService: botService}
}

func (bh *BotHandler) Create(c *gin.Context) {
  var req struct {
    Name        string `json:"name"`
    Description string `json:"description,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  bot := types.Bot{
    Name:        req.Name,
    Description: req.Description,
    IsActive:    true,
  }
  created, err := bh.botService.CreateBot(c.Request.Context(), &bot)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, created)
}

func (bh *BotHandler) Get(c *gin.Context) {
  botID, ok := parseUUIDParam(c, "id")
  if !ok {
    return
  }
  bot, err := bh.botService.GetBot(c.Request.Context(), botID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, bot)
}

func (bh *BotHandler) Update(c *gin.Context) {
  botID, ok := parseUUIDParam(c, "id")
  if !ok {
    return
  }
  var req struct {
    Name        *string `json:"name,omitempty"`
    Description *string `json:"description,omitempty"`
    IsActive    *bool   `json:"is_active,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  fields := map[string]interface{}{}
  if req.Name != nil {
    fields["name"] = *req.Name
  }
  if req.Description != nil {
    fields["description"] = *req.Description
  }
  if req.IsActive != nil {
    fields["is_active"] = *req.IsActive
  }
  if len(fields) == 0 {
    c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
    return
  }
  bot, err := bh.botService.UpdateBot(c.Request.Context(), botID, fields)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, bot)
}

func (bh *BotHandler) Delete(c *gin.Context) {
  botID, ok := parseUUIDParam(c, "id")
  if !ok {
    return
  }
  if err := bh.botService.DeleteBot(c.Request.Context(), botID); err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true})
}
