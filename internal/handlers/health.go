package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "gorm.io/gorm"
)

type HealthHandler struct {
  db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
  return &HealthHandler{db: db}
}

func (hh *HealthHandler) Check(c *gin.Context) {
  sqlDB, err := hh.db.DB()
  if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
    c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
    return
  }
  c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
