package handlers

import (
  "encoding/json"
  "net/http"

  "github.com/gin-gonic/gin"
  "gorm.io/datatypes"

  "github.com/haigui-org/haigui-backend/internal/services"
  "github.com/haigui-org/haigui-backend/internal/types"
)

type PuzzleHandler struct {
  puzzleService services.PuzzleService
}

func NewPuzzleHandler(puzzleService services.PuzzleService) *PuzzleHandler {
  return &PuzzleHandler{puzzleService: puzzleService}
}

func (ph *PuzzleHandler) Create(c *gin.Context) {
  var req struct {
    Title      string   `json:"title"`
    TangMian   string   `json:"tang_mian"`
    TangDi     string   `json:"tang_di"`
    Tags       []string `json:"tags,omitempty"`
    Difficulty int      `json:"difficulty,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }

  puzzle := types.Puzzle{
    Title:      req.Title,
    TangMian:   req.TangMian,
    TangDi:     req.TangDi,
    Difficulty: req.Difficulty,
  }
  if len(req.Tags) > 0 {
    raw, err := json.Marshal(req.Tags)
    if err != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tags"})
      return
    }
    puzzle.Tags = datatypes.JSON(raw)
  }

  created, err := ph.puzzleService.CreatePuzzle(c.Request.Context(), &puzzle)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, created)
}

func (ph *PuzzleHandler) Get(c *gin.Context) {
  puzzleID, ok := parseUUIDParam(c, "id")
  if !ok {
    return
  }
  puzzle, err := ph.puzzleService.GetPuzzle(c.Request.Context(), puzzleID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, puzzle)
}

func (ph *PuzzleHandler) Update(c *gin.Context) {
  puzzleID, ok := parseUUIDParam(c, "id")
  if !ok {
    return
  }
  var req struct {
    Title      *string  `json:"title,omitempty"`
    TangMian   *string  `json:"tang_mian,omitempty"`
    TangDi     *string  `json:"tang_di,omitempty"`
    Tags       []string `json:"tags,omitempty"`
    Difficulty *int     `json:"difficulty,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  fields := map[string]interface{}{}
  if req.Title != nil {
    fields["title"] = *req.Title
  }
  if req.TangMian != nil {
    fields["tang_mian"] = *req.TangMian
  }
  if req.TangDi != nil {
    fields["tang_di"] = *req.TangDi
  }
  if req.Tags != nil {
    raw, err := json.Marshal(req.Tags)
    if err != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tags"})
      return
    }
    fields["tags"] = datatypes.JSON(raw)
  }
  if req.Difficulty != nil {
    fields["difficulty"] = *req.Difficulty
  }
  if len(fields) == 0 {
    c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
    return
  }
  puzzle, err := ph.puzzleService.UpdatePuzzle(c.Request.Context(), puzzleID, fields)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, puzzle)
}

// AssignToChat makes the puzzle the chat's active round.
func (ph *PuzzleHandler) AssignToChat(c *gin.Context) {
  chatID, ok := parseUUIDParam(c, "chat_id")
  if !ok {
    return
  }
  puzzleID, ok := parseUUIDParam(c, "puzzle_id")
  if !ok {
    return
  }
  chat, err := ph.puzzleService.AssignToChat(c.Request.Context(), chatID, puzzleID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, chat)
}

func (ph *PuzzleHandler) GetChatHistory(c *gin.Context) {
  chatID, ok := parseUUIDParam(c, "chat_id")
  if !ok {
    return
  }
  records, err := ph.puzzleService.GetChatPuzzleHistory(c.Request.Context(), chatID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, records)
}
