package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/haigui-org/haigui-backend/internal/apperrors"
)

// respondError maps service errors onto HTTP statuses. Unknown errors echo
// their message with a 500 so the caller sees what broke.
func respondError(c *gin.Context, err error) {
  switch {
  case errors.Is(err, apperrors.ErrNotFound):
    c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
  case errors.Is(err, apperrors.ErrInvalidInput):
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
  case errors.Is(err, apperrors.ErrUnauthorized):
    c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
  default:
    c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
  }
}

// parseUUIDParam reads a path parameter as a UUID, responding 400 itself on
// bad input. The bool result tells the caller whether to continue.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
  id, err := uuid.Parse(c.Param(name))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
    return uuid.Nil, false
  }
  return id, true
}
