package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/haigui-org/haigui-backend/internal/services"
)

type PromptHandler struct {
  validator services.PromptValidatorService
}

func NewPromptHandler(validator services.PromptValidatorService) *PromptHandler {
  return &PromptHandler{validator: validator}
}

func (ph *PromptHandler) Validate(c *gin.Context) {
  var req struct {
    Prompt string `json:"prompt"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  result := ph.validator.ValidatePrompt(c.Request.Context(), req.Prompt)
  c.JSON(http.StatusOK, result)
}
